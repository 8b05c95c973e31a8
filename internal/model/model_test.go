package model

import (
	"testing"
	"time"
)

func TestGameSignature(t *testing.T) {
	g := &Game{
		EndTime: time.Date(2021, 11, 28, 22, 10, 0, 0, time.FixedZone("CET", 3600)),
		MapName: "de_dust2",
	}
	// Signature normalizes to UTC so the same game from differently-zoned
	// logs collides.
	if got, want := g.Signature(), "2021-11-28T21:10:00Z|de_dust2"; got != want {
		t.Errorf("expected signature %q, got %q", want, got)
	}
}

func TestParseTeam(t *testing.T) {
	cases := map[string]Team{
		"CT":        TeamCT,
		"TERRORIST": TeamT,
		"T":         TeamT,
		"Spectator": TeamSpectators,
		"":          TeamUnknown,
		"banana":    TeamUnknown,
	}
	for in, want := range cases {
		if got := ParseTeam(in); got != want {
			t.Errorf("ParseTeam(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRawIDPrefersPlatformID(t *testing.T) {
	ref := PlayerRef{Name: "Mirko", PlatformID: "[U:1:111]"}
	if ref.RawID() != "[U:1:111]" {
		t.Errorf("expected platform id, got %q", ref.RawID())
	}
	if (PlayerRef{Name: "Mirko"}).RawID() != "Mirko" {
		t.Error("expected nickname fallback when no platform id")
	}
}

func TestFlattenAttack(t *testing.T) {
	a := NewAttack(time.Now(), PlayerRef{PlatformID: "[U:1:1]"}, PlayerRef{PlatformID: "[U:1:2]"}, "ak47", 25, 60)
	a.ComputedDamage = 40
	a.Anomalous = true
	SetRound(a, 3)

	se := Flatten(a)
	if se.Kind != KindAttack || se.Round != 3 || se.Actor != "[U:1:1]" || se.Target != "[U:1:2]" {
		t.Errorf("bad flattened attack: %+v", se)
	}
	if se.Damage != 40 || se.HealthRemaining != 60 || !se.Anomalous {
		t.Errorf("computed fields lost in flatten: %+v", se)
	}
}

func TestPlayerStatDerivedFields(t *testing.T) {
	s := &PlayerStat{Kills: 10, Deaths: 4, HeadshotKills: 5, DamageDealt: 1540, RoundsPlayed: 20}
	if s.KDRatio() != 2.5 {
		t.Errorf("expected K/D 2.5, got %v", s.KDRatio())
	}
	if s.HSPercent() != 50 {
		t.Errorf("expected HS%% 50, got %v", s.HSPercent())
	}
	if s.ADR() != 77 {
		t.Errorf("expected ADR 77, got %v", s.ADR())
	}

	zero := &PlayerStat{}
	if zero.KDRatio() != 0 || zero.HSPercent() != 0 || zero.ADR() != 0 {
		t.Error("zero-value stat must not divide by zero")
	}
}
