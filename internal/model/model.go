package model

import (
	"fmt"
	"time"
)

// Team represents which side a player is on.
type Team int

const (
	TeamUnknown    Team = 0
	TeamSpectators Team = 1
	TeamT          Team = 2
	TeamCT         Team = 3
)

func (t Team) String() string {
	switch t {
	case TeamT:
		return "T"
	case TeamCT:
		return "CT"
	default:
		return "?"
	}
}

// ParseTeam maps the log's team tokens ("CT", "TERRORIST") to a Team.
func ParseTeam(s string) Team {
	switch s {
	case "CT":
		return TeamCT
	case "TERRORIST", "T":
		return TeamT
	case "Spectator", "SPECTATOR":
		return TeamSpectators
	default:
		return TeamUnknown
	}
}

// PlayerRef is a player as it appears on a single log line: nickname plus
// the platform identifier in its full "[U:1:N]" form when present.
type PlayerRef struct {
	Name       string
	PlatformID string
	Team       Team
}

// RawID returns the best raw identifier available for this reference.
func (p PlayerRef) RawID() string {
	if p.PlatformID != "" {
		return p.PlatformID
	}
	return p.Name
}

// Game is the persisted match record. The (EndTime, MapName) pair is the
// natural dedup signature; at most one stored game may exist per signature.
type Game struct {
	ID              int64
	EndTime         time.Time
	MapName         string
	Mode            string
	CTScore         int
	TScore          int
	DurationMinutes int
}

// Signature renders the dedup key in a stable, human-readable form.
func (g *Game) Signature() string {
	return fmt.Sprintf("%s|%s", g.EndTime.UTC().Format(time.RFC3339), g.MapName)
}

// Round is one round of a game. Winner stays TeamUnknown until the
// estimator has run. Participants holds the numeric platform ids carried
// by the round-end payload, unresolved.
type Round struct {
	Index        int
	StartTime    time.Time
	EndTime      time.Time
	Winner       Team
	Participants []string
}

// PlayerStat is the per-player per-game aggregate.
type PlayerStat struct {
	GameID        int64
	PlayerID      string // canonical id
	Name          string
	Team          Team
	Kills         int
	Deaths        int
	Assists       int
	HeadshotKills int
	DamageDealt   int
	RoundsPlayed  int
	BombPlants    int
	BombDefuses   int
	Rating        float64
}

func (s *PlayerStat) KDRatio() float64 {
	if s.Deaths == 0 {
		return float64(s.Kills)
	}
	return float64(s.Kills) / float64(s.Deaths)
}

func (s *PlayerStat) HSPercent() float64 {
	if s.Kills == 0 {
		return 0
	}
	return float64(s.HeadshotKills) / float64(s.Kills) * 100
}

func (s *PlayerStat) ADR() float64 {
	if s.RoundsPlayed == 0 {
		return 0
	}
	return float64(s.DamageDealt) / float64(s.RoundsPlayed)
}

// Accolade types derived from PlayerStat extremes.
const (
	AccoladeMostKills     = "most_kills"
	AccoladeTopDamage     = "top_damage"
	AccoladeMostHeadshots = "most_headshots"
	AccoladeMostAssists   = "most_assists"
	AccoladeBestHSPercent = "best_hs_percent"
)

// Accolade is a read-only per-game superlative.
type Accolade struct {
	GameID       int64
	Type         string
	PlayerID     string
	Value        float64
	RankPosition int
}

// RatingEntry is one row of the cross-game rating leaderboard.
type RatingEntry struct {
	PlayerID string
	Name     string
	Rating   float64
	Games    int
}
