package tracker

import "github.com/rankpipe/rankpipe/internal/model"

// EstimateWinners assigns a winner to every round given only the final
// team scores, by reverse allocation: walk rounds from last to first,
// handing a round to whichever team still has more wins left than rounds
// remaining, falling back to the larger remaining/rounds-remaining ratio
// (ties favor CT).
//
// This is a heuristic carried over for output parity with the stored data,
// not ground truth. Some logs carry a winner on the round-end payload; it
// is deliberately ignored so re-ingested games keep matching historical
// rows.
func EstimateWinners(rounds []*model.Round, ctScore, tScore int) {
	remainingCT, remainingT := ctScore, tScore
	n := len(rounds)
	for i := 1; i <= n; i++ {
		r := rounds[n-i]
		roundsRemaining := i
		switch {
		case remainingCT > roundsRemaining:
			r.Winner = model.TeamCT
			remainingCT--
		case remainingT > roundsRemaining:
			r.Winner = model.TeamT
			remainingT--
		default:
			ctRatio := float64(remainingCT) / float64(roundsRemaining)
			tRatio := float64(remainingT) / float64(roundsRemaining)
			if ctRatio >= tRatio {
				r.Winner = model.TeamCT
				if remainingCT > 0 {
					remainingCT--
				}
			} else {
				r.Winner = model.TeamT
				if remainingT > 0 {
					remainingT--
				}
			}
		}
	}
}
