// Package aggregator folds events and rounds into per-player game stats.
package aggregator

import (
	"fmt"
	"sort"

	"github.com/rankpipe/rankpipe/internal/identity"
	"github.com/rankpipe/rankpipe/internal/model"
)

// Aggregate computes one PlayerStat per canonical player for the game.
// The resolver is job-scoped and passed in by the caller; its alias table
// is populated here from every sighted player reference before any
// resolution happens.
func Aggregate(rounds []*model.Round, events []model.Event, res *identity.Resolver) ([]*model.PlayerStat, error) {
	if res == nil {
		return nil, fmt.Errorf("nil resolver")
	}

	// ---- Pass 1: populate the alias table. ----
	for _, ev := range events {
		switch v := ev.(type) {
		case *model.Kill:
			res.Observe(v.Killer)
			res.Observe(v.Victim)
		case *model.Assist:
			res.Observe(v.Assister)
			res.Observe(v.Victim)
		case *model.Attack:
			res.Observe(v.Attacker)
			res.Observe(v.Victim)
		case *model.Bomb:
			res.Observe(v.Actor)
		case *model.RoundStart, *model.RoundEnd, *model.GameOver:
		}
	}

	// ---- Pass 2: fold events into accumulators keyed by canonical id. ----
	accums := make(map[string]*model.PlayerStat)
	get := func(ref model.PlayerRef) *model.PlayerStat {
		id, _ := res.Resolve(ref.RawID())
		s := accums[id]
		if s == nil {
			s = &model.PlayerStat{PlayerID: id}
			accums[id] = s
		}
		if ref.Name != "" {
			s.Name = ref.Name
		}
		if ref.Team != model.TeamUnknown {
			s.Team = ref.Team
		}
		return s
	}

	for _, ev := range events {
		switch v := ev.(type) {
		case *model.Kill:
			killer := get(v.Killer)
			killer.Kills++
			if v.Headshot {
				killer.HeadshotKills++
			}
			get(v.Victim).Deaths++
		case *model.Assist:
			get(v.Assister).Assists++
		case *model.Attack:
			if v.ComputedDamage > 0 {
				get(v.Attacker).DamageDealt += v.ComputedDamage
			}
		case *model.Bomb:
			actor := get(v.Actor)
			switch v.Action {
			case model.BombPlanted:
				actor.BombPlants++
			case model.BombDefused:
				actor.BombDefuses++
			}
		case *model.RoundStart, *model.RoundEnd, *model.GameOver:
		}
	}

	// ---- Pass 3: rounds played, from round-end participant lists. ----
	for _, round := range rounds {
		counted := make(map[string]bool)
		for _, raw := range round.Participants {
			id, _ := res.Resolve(raw)
			if counted[id] {
				continue
			}
			counted[id] = true
			s := accums[id]
			if s == nil {
				// Participant with no combat events this game. Keep the
				// best-effort label rather than dropping the entry.
				s = &model.PlayerStat{PlayerID: id, Name: id}
				accums[id] = s
			}
			s.RoundsPlayed++
		}
	}

	stats := make([]*model.PlayerStat, 0, len(accums))
	for _, s := range accums {
		stats = append(stats, s)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Kills != stats[j].Kills {
			return stats[i].Kills > stats[j].Kills
		}
		return stats[i].PlayerID < stats[j].PlayerID
	})
	return stats, nil
}
