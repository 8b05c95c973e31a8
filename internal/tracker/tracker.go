// Package tracker reconstructs round state from the event stream.
//
// The log's reported damage field is unreliable; health-remaining-after-hit
// is authoritative. The tracker replays attacks in timestamp order against
// a per-victim, per-round HP ledger to derive true damage.
package tracker

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/rankpipe/rankpipe/internal/model"
)

const startingHP = 100

// Result is the reconstructed state of one game's event stream.
type Result struct {
	Game      *model.Game // nil when the log carries no game-over line
	Rounds    []*model.Round
	Events    []model.Event
	Anomalies int
}

// Tracker groups events into rounds and computes actual damage. One
// instance per ingestion job.
type Tracker struct {
	log logrus.FieldLogger
}

func New(log logrus.FieldLogger) *Tracker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Tracker{log: log}
}

// Track assigns round indexes, builds the round list, and runs the HP
// ledger pass. Events are annotated in place.
func (t *Tracker) Track(events []model.Event) *Result {
	res := &Result{Events: events}

	// Pass 1: round boundaries. Round indexes are 1-based and contiguous;
	// events arriving before the first round-start keep round 0.
	var current *model.Round
	for _, ev := range events {
		switch v := ev.(type) {
		case *model.RoundStart:
			current = &model.Round{Index: len(res.Rounds) + 1, StartTime: v.Time()}
			res.Rounds = append(res.Rounds, current)
		case *model.RoundEnd:
			if current != nil {
				current.EndTime = v.Time()
				current.Participants = v.Participants
			}
		case *model.GameOver:
			res.Game = &model.Game{
				EndTime:         v.Time(),
				MapName:         v.MapName,
				Mode:            v.Mode,
				CTScore:         v.CTScore,
				TScore:          v.TScore,
				DurationMinutes: v.DurationMinutes,
			}
		case *model.Kill, *model.Assist, *model.Attack, *model.Bomb:
		}
		round := 0
		if current != nil {
			round = current.Index
		}
		model.SetRound(ev, round)
	}

	// Pass 2: HP ledger over the attack subsequence. Correctness depends
	// strictly on temporal order, so sort by timestamp regardless of the
	// parser's emission order (stable: log timestamps have 1s resolution).
	var attacks []*model.Attack
	for _, ev := range events {
		if a, ok := ev.(*model.Attack); ok {
			attacks = append(attacks, a)
		}
	}
	sort.SliceStable(attacks, func(i, j int) bool {
		return attacks[i].Time().Before(attacks[j].Time())
	})

	type ledgerKey struct {
		victim string
		round  int
	}
	ledger := make(map[ledgerKey]int)
	for _, a := range attacks {
		key := ledgerKey{victim: a.Victim.RawID(), round: a.RoundIndex()}
		prevHP, ok := ledger[key]
		if !ok {
			prevHP = startingHP
		}
		damage := prevHP - a.HealthRemaining
		if damage < 0 || damage > startingHP {
			// Ordering anomaly or missing prior event. Clamp and flag,
			// keep the event.
			damage = clamp(startingHP-a.HealthRemaining, 0, startingHP)
			a.Anomalous = true
			res.Anomalies++
			t.log.WithFields(logrus.Fields{
				"victim": a.Victim.RawID(),
				"round":  a.RoundIndex(),
				"health": a.HealthRemaining,
			}).Warn("anomalous damage computation, clamped")
		}
		a.ComputedDamage = damage
		ledger[key] = a.HealthRemaining
	}

	return res
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
