package tracker

import (
	"testing"
	"time"

	"github.com/rankpipe/rankpipe/internal/model"
)

var (
	attacker = model.PlayerRef{Name: "Mirko", PlatformID: "[U:1:111]", Team: model.TeamCT}
	victim   = model.PlayerRef{Name: "dex", PlatformID: "[U:1:222]", Team: model.TeamT}
	other    = model.PlayerRef{Name: "zonik", PlatformID: "[U:1:333]", Team: model.TeamT}
)

func at(sec int) time.Time {
	return time.Date(2021, 11, 28, 20, 0, sec, 0, time.UTC)
}

func TestDamageFromHealthLedger(t *testing.T) {
	events := []model.Event{
		model.NewRoundStart(at(0)),
		model.NewAttack(at(1), attacker, victim, "ak47", 27, 80),
		model.NewAttack(at(2), attacker, victim, "ak47", 27, 50),
		model.NewAttack(at(3), attacker, victim, "ak47", 27, 0),
		model.NewRoundEnd(at(10), nil),
	}
	res := New(nil).Track(events)

	want := []int{20, 30, 50}
	total := 0
	i := 0
	for _, ev := range res.Events {
		a, ok := ev.(*model.Attack)
		if !ok {
			continue
		}
		if a.ComputedDamage != want[i] {
			t.Errorf("attack %d: expected computed damage %d, got %d", i, want[i], a.ComputedDamage)
		}
		if a.Anomalous {
			t.Errorf("attack %d unexpectedly flagged anomalous", i)
		}
		total += a.ComputedDamage
		i++
	}
	if total != 100 {
		t.Errorf("expected total damage 100, got %d", total)
	}
	if res.Anomalies != 0 {
		t.Errorf("expected 0 anomalies, got %d", res.Anomalies)
	}
}

func TestLedgerResetsPerRound(t *testing.T) {
	events := []model.Event{
		model.NewRoundStart(at(0)),
		model.NewAttack(at(1), attacker, victim, "ak47", 0, 40),
		model.NewRoundEnd(at(5), nil),
		model.NewRoundStart(at(10)),
		model.NewAttack(at(11), attacker, victim, "ak47", 0, 70),
		model.NewRoundEnd(at(15), nil),
	}
	res := New(nil).Track(events)

	var got []int
	for _, ev := range res.Events {
		if a, ok := ev.(*model.Attack); ok {
			got = append(got, a.ComputedDamage)
		}
	}
	// Both rounds start from full HP; the second round's hit must not be
	// read against the 40 HP left over from the first round.
	if got[0] != 60 || got[1] != 30 {
		t.Errorf("expected damage [60 30], got %v", got)
	}
}

func TestAnomalousHealthIncreaseClampedAndFlagged(t *testing.T) {
	events := []model.Event{
		model.NewRoundStart(at(0)),
		model.NewAttack(at(1), attacker, victim, "ak47", 0, 30),
		model.NewAttack(at(2), attacker, victim, "ak47", 0, 90),
	}
	res := New(nil).Track(events)

	second := res.Events[2].(*model.Attack)
	if !second.Anomalous {
		t.Fatal("expected second attack flagged anomalous")
	}
	if second.ComputedDamage != 10 {
		t.Errorf("expected clamped fallback damage 10, got %d", second.ComputedDamage)
	}
	if res.Anomalies != 1 {
		t.Errorf("expected 1 anomaly counted, got %d", res.Anomalies)
	}
}

func TestAttacksOrderedByTimestampNotEmissionOrder(t *testing.T) {
	// Same lines, emitted out of order; the ledger must still replay them
	// chronologically.
	events := []model.Event{
		model.NewRoundStart(at(0)),
		model.NewAttack(at(3), attacker, victim, "ak47", 0, 0),
		model.NewAttack(at(1), attacker, victim, "ak47", 0, 80),
		model.NewAttack(at(2), attacker, victim, "ak47", 0, 50),
	}
	res := New(nil).Track(events)
	if res.Anomalies != 0 {
		t.Fatalf("expected 0 anomalies, got %d", res.Anomalies)
	}
	var total int
	for _, ev := range res.Events {
		if a, ok := ev.(*model.Attack); ok {
			total += a.ComputedDamage
		}
	}
	if total != 100 {
		t.Errorf("expected total damage 100, got %d", total)
	}
}

func TestLedgerIsPerVictim(t *testing.T) {
	events := []model.Event{
		model.NewRoundStart(at(0)),
		model.NewAttack(at(1), attacker, victim, "ak47", 0, 50),
		model.NewAttack(at(2), attacker, other, "ak47", 0, 80),
	}
	res := New(nil).Track(events)

	first := res.Events[1].(*model.Attack)
	second := res.Events[2].(*model.Attack)
	if first.ComputedDamage != 50 {
		t.Errorf("expected 50 damage to first victim, got %d", first.ComputedDamage)
	}
	if second.ComputedDamage != 20 {
		t.Errorf("expected 20 damage to second victim, got %d", second.ComputedDamage)
	}
}

func TestRoundAssignment(t *testing.T) {
	events := []model.Event{
		model.NewKill(at(0), attacker, victim, "ak47", false), // before any round
		model.NewRoundStart(at(1)),
		model.NewKill(at(2), attacker, victim, "ak47", true),
		model.NewRoundEnd(at(5), []string{"111", "222"}),
		model.NewRoundStart(at(10)),
		model.NewKill(at(11), victim, attacker, "awp", false),
		model.NewRoundEnd(at(15), []string{"111", "222"}),
		model.NewGameOver(at(20), "competitive", "de_nuke", 1, 1, 5),
	}
	res := New(nil).Track(events)

	if len(res.Rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(res.Rounds))
	}
	if res.Events[0].RoundIndex() != 0 {
		t.Errorf("pre-round event should keep round 0, got %d", res.Events[0].RoundIndex())
	}
	if res.Events[2].RoundIndex() != 1 || res.Events[5].RoundIndex() != 2 {
		t.Errorf("bad round assignment: %d, %d", res.Events[2].RoundIndex(), res.Events[5].RoundIndex())
	}
	if len(res.Rounds[0].Participants) != 2 {
		t.Errorf("expected participants recorded on round 1, got %v", res.Rounds[0].Participants)
	}
	if res.Game == nil {
		t.Fatal("expected game summary from game-over event")
	}
	if res.Game.MapName != "de_nuke" || res.Game.CTScore != 1 || res.Game.TScore != 1 {
		t.Errorf("bad game summary: %+v", res.Game)
	}
}

func TestNoGameOverLeavesGameNil(t *testing.T) {
	events := []model.Event{
		model.NewRoundStart(at(0)),
		model.NewRoundEnd(at(5), nil),
	}
	res := New(nil).Track(events)
	if res.Game != nil {
		t.Errorf("expected nil game without game-over line, got %+v", res.Game)
	}
}
