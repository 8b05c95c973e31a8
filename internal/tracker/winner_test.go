package tracker

import (
	"testing"

	"github.com/rankpipe/rankpipe/internal/model"
)

func makeRounds(n int) []*model.Round {
	rounds := make([]*model.Round, n)
	for i := range rounds {
		rounds[i] = &model.Round{Index: i + 1}
	}
	return rounds
}

func countWinners(rounds []*model.Round) (ct, t int) {
	for _, r := range rounds {
		switch r.Winner {
		case model.TeamCT:
			ct++
		case model.TeamT:
			t++
		}
	}
	return ct, t
}

func TestEstimateWinnersMatchesFinalScore(t *testing.T) {
	cases := []struct {
		name   string
		rounds int
		ct, tt int
	}{
		{"lopsided", 15, 13, 2},
		{"shutout", 16, 16, 0},
		{"close", 30, 16, 14},
		{"even", 24, 12, 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rounds := makeRounds(tc.rounds)
			EstimateWinners(rounds, tc.ct, tc.tt)
			ct, tt := countWinners(rounds)
			if ct != tc.ct || tt != tc.tt {
				t.Errorf("expected CT %d / T %d, got CT %d / T %d", tc.ct, tc.tt, ct, tt)
			}
			for _, r := range rounds {
				if r.Winner != model.TeamCT && r.Winner != model.TeamT {
					t.Errorf("round %d left without a winner", r.Index)
				}
			}
		})
	}
}

func TestEstimateWinnersExactAllocation(t *testing.T) {
	rounds := makeRounds(15)
	EstimateWinners(rounds, 13, 2)

	// Reverse allocation hands the tail of the match to the dominant team
	// and pushes the losing team's rounds toward the start.
	want := []model.Team{
		model.TeamT, model.TeamCT, model.TeamT,
		model.TeamCT, model.TeamCT, model.TeamCT, model.TeamCT, model.TeamCT, model.TeamCT,
		model.TeamCT, model.TeamCT, model.TeamCT, model.TeamCT, model.TeamCT, model.TeamCT,
	}
	for i, r := range rounds {
		if r.Winner != want[i] {
			t.Errorf("round %d: expected %s, got %s", r.Index, want[i], r.Winner)
		}
	}
}

func TestEstimateWinnersDeterministic(t *testing.T) {
	a := makeRounds(30)
	b := makeRounds(30)
	EstimateWinners(a, 16, 14)
	EstimateWinners(b, 16, 14)
	for i := range a {
		if a[i].Winner != b[i].Winner {
			t.Fatalf("round %d differs between identical runs", i+1)
		}
	}
}
