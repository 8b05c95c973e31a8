package rating

// Baseline values represent average performance levels; metrics are
// normalized against them so an average game contributes 1.0.
const (
	BaselineKPR = 0.72 // average kills per round
	BaselineDPR = 0.68 // average deaths per round
	BaselineADR = 77.0 // average damage per round
	BaselineHS  = 0.42 // average headshot share of kills
)

// Component weights for the performance score. They sum to 1.0.
const (
	WeightKills    = 0.40
	WeightDeaths   = 0.30
	WeightDamage   = 0.22
	WeightHeadshot = 0.08
)

// Rating scale.
const (
	// BaseRating is the rating assigned before a player's first game.
	BaseRating = 1000.0

	// MaxDeltaPerGame bounds how far a single game can move a rating.
	MaxDeltaPerGame = 48.0

	// deathRatioCeiling caps the death penalty so one disastrous game
	// cannot dominate the score.
	deathRatioCeiling = 2.0
)
