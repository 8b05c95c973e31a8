package aggregator

import (
	"testing"
	"time"

	"github.com/rankpipe/rankpipe/internal/identity"
	"github.com/rankpipe/rankpipe/internal/model"
)

var (
	mirko = model.PlayerRef{Name: "Mirko", PlatformID: "[U:1:111]", Team: model.TeamCT}
	dex   = model.PlayerRef{Name: "dex", PlatformID: "[U:1:222]", Team: model.TeamT}
	zonik = model.PlayerRef{Name: "zonik", PlatformID: "[U:1:333]", Team: model.TeamCT}
)

func at(sec int) time.Time {
	return time.Date(2021, 11, 28, 20, 0, sec, 0, time.UTC)
}

// attack builds an attack event with its computed damage already filled
// in, the way the tracker hands events to the aggregator.
func attack(sec int, attacker, victim model.PlayerRef, damage int) *model.Attack {
	a := model.NewAttack(at(sec), attacker, victim, "ak47", damage, 100-damage)
	a.ComputedDamage = damage
	return a
}

func statByID(t *testing.T, stats []*model.PlayerStat, id string) *model.PlayerStat {
	t.Helper()
	for _, s := range stats {
		if s.PlayerID == id {
			return s
		}
	}
	t.Fatalf("no stat for player %s", id)
	return nil
}

func TestAggregateCounts(t *testing.T) {
	events := []model.Event{
		attack(1, mirko, dex, 73),
		attack(2, mirko, dex, 27),
		model.NewKill(at(2), mirko, dex, "ak47", true),
		model.NewAssist(at(2), zonik, dex),
		model.NewKill(at(3), dex, zonik, "awp", false),
		model.NewBomb(at(4), dex, model.BombPlanted),
		model.NewBomb(at(5), mirko, model.BombDefused),
	}
	rounds := []*model.Round{
		{Index: 1, Participants: []string{"111", "222", "333"}},
		{Index: 2, Participants: []string{"111", "222"}},
	}

	stats, err := Aggregate(rounds, events, identity.NewResolver(nil))
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 3 {
		t.Fatalf("expected 3 players, got %d", len(stats))
	}

	m := statByID(t, stats, "[U:1:111]")
	if m.Kills != 1 || m.Deaths != 0 || m.HeadshotKills != 1 || m.DamageDealt != 100 {
		t.Errorf("bad stats for mirko: %+v", m)
	}
	if m.BombDefuses != 1 {
		t.Errorf("expected 1 defuse for mirko, got %d", m.BombDefuses)
	}
	if m.RoundsPlayed != 2 {
		t.Errorf("expected 2 rounds played for mirko, got %d", m.RoundsPlayed)
	}

	d := statByID(t, stats, "[U:1:222]")
	if d.Kills != 1 || d.Deaths != 1 || d.BombPlants != 1 {
		t.Errorf("bad stats for dex: %+v", d)
	}

	z := statByID(t, stats, "[U:1:333]")
	if z.Assists != 1 || z.Deaths != 1 || z.RoundsPlayed != 1 {
		t.Errorf("bad stats for zonik: %+v", z)
	}
}

func TestHeadshotKillsNeverExceedKills(t *testing.T) {
	events := []model.Event{
		model.NewKill(at(1), mirko, dex, "ak47", true),
		model.NewKill(at(2), mirko, zonik, "ak47", true),
		model.NewKill(at(3), mirko, dex, "ak47", false),
	}
	stats, err := Aggregate(nil, events, identity.NewResolver(nil))
	if err != nil {
		t.Fatal(err)
	}
	m := statByID(t, stats, "[U:1:111]")
	if m.HeadshotKills > m.Kills {
		t.Errorf("headshot kills %d exceed kills %d", m.HeadshotKills, m.Kills)
	}
	if m.Kills != 3 || m.HeadshotKills != 2 {
		t.Errorf("expected 3 kills / 2 headshots, got %d / %d", m.Kills, m.HeadshotKills)
	}
}

func TestZeroComputedDamageNotCredited(t *testing.T) {
	a := model.NewAttack(at(1), mirko, dex, "ak47", 25, 100)
	a.ComputedDamage = 0
	stats, err := Aggregate(nil, []model.Event{a, model.NewKill(at(2), mirko, dex, "ak47", false)}, identity.NewResolver(nil))
	if err != nil {
		t.Fatal(err)
	}
	m := statByID(t, stats, "[U:1:111]")
	if m.DamageDealt != 0 {
		t.Errorf("expected no damage credited, got %d", m.DamageDealt)
	}
}

func TestEventlessParticipantStillCountsRounds(t *testing.T) {
	rounds := []*model.Round{
		{Index: 1, Participants: []string{"999"}},
		{Index: 2, Participants: []string{"999", "999"}}, // duplicate entry
	}
	stats, err := Aggregate(rounds, nil, identity.NewResolver(nil))
	if err != nil {
		t.Fatal(err)
	}
	s := statByID(t, stats, "999")
	if s.RoundsPlayed != 2 {
		t.Errorf("expected 2 rounds played, got %d", s.RoundsPlayed)
	}
}

func TestAggregateSortsByKillsThenID(t *testing.T) {
	events := []model.Event{
		model.NewKill(at(1), dex, zonik, "awp", false),
		model.NewKill(at(2), dex, zonik, "awp", false),
		model.NewKill(at(3), mirko, dex, "ak47", false),
		model.NewKill(at(4), zonik, dex, "m4a1", false),
	}
	stats, err := Aggregate(nil, events, identity.NewResolver(nil))
	if err != nil {
		t.Fatal(err)
	}
	if stats[0].PlayerID != "[U:1:222]" {
		t.Errorf("expected dex first with 2 kills, got %s", stats[0].PlayerID)
	}
	// One kill each; lower id breaks the tie.
	if stats[1].PlayerID != "[U:1:111]" || stats[2].PlayerID != "[U:1:333]" {
		t.Errorf("bad tie-break order: %s, %s", stats[1].PlayerID, stats[2].PlayerID)
	}
}

func TestComputeAccolades(t *testing.T) {
	stats := []*model.PlayerStat{
		{PlayerID: "[U:1:111]", Kills: 20, HeadshotKills: 5, DamageDealt: 2100, Assists: 2},
		{PlayerID: "[U:1:222]", Kills: 10, HeadshotKills: 8, DamageDealt: 2300, Assists: 6},
		{PlayerID: "[U:1:333]", Kills: 0, HeadshotKills: 0, DamageDealt: 0, Assists: 0},
	}
	accolades := ComputeAccolades(stats)

	byType := make(map[string]*model.Accolade)
	for _, a := range accolades {
		byType[a.Type] = a
	}
	if a := byType[model.AccoladeMostKills]; a == nil || a.PlayerID != "[U:1:111]" || a.Value != 20 {
		t.Errorf("bad most_kills accolade: %+v", a)
	}
	if a := byType[model.AccoladeTopDamage]; a == nil || a.PlayerID != "[U:1:222]" {
		t.Errorf("bad top_damage accolade: %+v", a)
	}
	if a := byType[model.AccoladeMostHeadshots]; a == nil || a.PlayerID != "[U:1:222]" {
		t.Errorf("bad most_headshots accolade: %+v", a)
	}
	if a := byType[model.AccoladeBestHSPercent]; a == nil || a.PlayerID != "[U:1:222]" {
		t.Errorf("bad best_hs_percent accolade: %+v", a)
	}
}

func TestAccoladeTiesFavorLowerID(t *testing.T) {
	stats := []*model.PlayerStat{
		{PlayerID: "[U:1:222]", Kills: 10},
		{PlayerID: "[U:1:111]", Kills: 10},
	}
	accolades := ComputeAccolades(stats)
	for _, a := range accolades {
		if a.Type == model.AccoladeMostKills && a.PlayerID != "[U:1:111]" {
			t.Errorf("expected tie to favor lower id, got %s", a.PlayerID)
		}
	}
}

func TestNoAccoladesForZeroValues(t *testing.T) {
	stats := []*model.PlayerStat{
		{PlayerID: "[U:1:111]", Kills: 3},
		{PlayerID: "[U:1:222]"},
	}
	accolades := ComputeAccolades(stats)
	if len(accolades) != 1 || accolades[0].Type != model.AccoladeMostKills {
		t.Errorf("expected only the most_kills accolade, got %+v", accolades)
	}
}
