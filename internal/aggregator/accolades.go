package aggregator

import (
	"sort"

	"github.com/rankpipe/rankpipe/internal/model"
)

// ComputeAccolades derives the per-game superlatives from the aggregated
// stats. One accolade per category, rank position 1; players with zero
// value in a category earn nothing.
func ComputeAccolades(stats []*model.PlayerStat) []*model.Accolade {
	if len(stats) == 0 {
		return nil
	}

	type category struct {
		name  string
		value func(*model.PlayerStat) float64
	}
	categories := []category{
		{model.AccoladeMostKills, func(s *model.PlayerStat) float64 { return float64(s.Kills) }},
		{model.AccoladeTopDamage, func(s *model.PlayerStat) float64 { return float64(s.DamageDealt) }},
		{model.AccoladeMostHeadshots, func(s *model.PlayerStat) float64 { return float64(s.HeadshotKills) }},
		{model.AccoladeMostAssists, func(s *model.PlayerStat) float64 { return float64(s.Assists) }},
		{model.AccoladeBestHSPercent, func(s *model.PlayerStat) float64 {
			if s.Kills == 0 {
				return 0
			}
			return s.HSPercent()
		}},
	}

	var out []*model.Accolade
	for _, cat := range categories {
		ranked := make([]*model.PlayerStat, len(stats))
		copy(ranked, stats)
		sort.SliceStable(ranked, func(i, j int) bool {
			vi, vj := cat.value(ranked[i]), cat.value(ranked[j])
			if vi != vj {
				return vi > vj
			}
			return ranked[i].PlayerID < ranked[j].PlayerID
		})
		best := ranked[0]
		v := cat.value(best)
		if v <= 0 {
			continue
		}
		out = append(out, &model.Accolade{
			Type:         cat.name,
			PlayerID:     best.PlayerID,
			Value:        v,
			RankPosition: 1,
		})
	}
	return out
}
