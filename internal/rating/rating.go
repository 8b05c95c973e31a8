// Package rating converts a player's per-game performance into an updated
// skill rating. The concrete formula is a swappable strategy behind the
// Algorithm interface.
package rating

import "math"

// Performance is the per-game input to a rating update.
type Performance struct {
	Kills         int
	Deaths        int
	Assists       int
	HeadshotKills int
	DamageDealt   int
	RoundsPlayed  int
}

// Algorithm updates a player's scalar rating from one completed game.
// Implementations must be pure: monotonic in relative performance,
// bounded per game, and stable under replay.
type Algorithm interface {
	Update(prior float64, perf Performance) float64
}

// Impact is the default algorithm: a weighted kills/deaths/damage/headshot
// performance score normalized against league baselines, squashed through
// tanh so a single game moves the rating by at most MaxDeltaPerGame.
type Impact struct{}

var _ Algorithm = Impact{}

// Update returns the new rating. A game with zero rounds played leaves the
// prior untouched.
func (Impact) Update(prior float64, perf Performance) float64 {
	rounds := float64(perf.RoundsPlayed)
	if rounds == 0 {
		return prior
	}

	killRatio := (float64(perf.Kills) / rounds) / BaselineKPR

	deathRatio := (float64(perf.Deaths) / rounds) / BaselineDPR
	if deathRatio > deathRatioCeiling {
		deathRatio = deathRatioCeiling
	}

	damageRatio := (float64(perf.DamageDealt) / rounds) / BaselineADR

	hsRatio := 0.0
	if perf.Kills > 0 {
		hsRatio = (float64(perf.HeadshotKills) / float64(perf.Kills)) / BaselineHS
	}

	// With baseline ratios of 1.0 across the board the score is exactly
	// 1.0; the delta is the signed distance from there, squashed.
	score := WeightKills*killRatio +
		WeightDeaths*(deathRatioCeiling-deathRatio) +
		WeightDamage*damageRatio +
		WeightHeadshot*hsRatio

	delta := MaxDeltaPerGame * math.Tanh(score-1.0)
	return prior + delta
}
