package model

import "time"

// EventKind identifies an event variant for persistence and dispatch.
type EventKind string

const (
	KindKill       EventKind = "KILL"
	KindAssist     EventKind = "ASSIST"
	KindAttack     EventKind = "ATTACK"
	KindBomb       EventKind = "BOMB"
	KindRoundStart EventKind = "ROUND_START"
	KindRoundEnd   EventKind = "ROUND_END"
	KindGameOver   EventKind = "GAME_OVER"
)

// Event is the closed set of things the parser can emit. The marker method
// keeps the set closed to this package; consumers dispatch with a type
// switch over the concrete pointer types.
type Event interface {
	Kind() EventKind
	Time() time.Time
	RoundIndex() int
	event()
}

// base carries the fields every variant shares. Round is 0 at parse time
// and assigned by the tracker.
type base struct {
	At    time.Time
	Round int
}

func (b *base) Time() time.Time { return b.At }
func (b *base) RoundIndex() int { return b.Round }
func (b *base) event()          {}

// Kill is one player eliminating another.
type Kill struct {
	base
	Killer   PlayerRef
	Victim   PlayerRef
	Weapon   string
	Headshot bool
}

func (*Kill) Kind() EventKind { return KindKill }

// Assist credits a third player on a kill.
type Assist struct {
	base
	Assister PlayerRef
	Victim   PlayerRef
}

func (*Assist) Kind() EventKind { return KindAssist }

// Attack is a single hit. ReportedDamage is what the log line claims;
// HealthRemaining is authoritative. ComputedDamage and Anomalous are
// filled in by the tracker's HP ledger pass.
type Attack struct {
	base
	Attacker        PlayerRef
	Victim          PlayerRef
	Weapon          string
	ReportedDamage  int
	HealthRemaining int
	ComputedDamage  int
	Anomalous       bool
}

func (*Attack) Kind() EventKind { return KindAttack }

// Bomb actions recognized on bomb events.
const (
	BombPlanted = "planted"
	BombDefused = "defused"
)

// Bomb is a plant or defuse.
type Bomb struct {
	base
	Actor  PlayerRef
	Action string
}

func (*Bomb) Kind() EventKind { return KindBomb }

// RoundStart marks the beginning of a round.
type RoundStart struct {
	base
}

func (*RoundStart) Kind() EventKind { return KindRoundStart }

// RoundEnd marks the end of a round. Participants carries the numeric
// platform ids present in the payload, as raw tokens.
type RoundEnd struct {
	base
	Participants []string
}

func (*RoundEnd) Kind() EventKind { return KindRoundEnd }

// GameOver carries the final match summary line.
type GameOver struct {
	base
	Mode            string
	MapName         string
	CTScore         int
	TScore          int
	DurationMinutes int
}

func (*GameOver) Kind() EventKind { return KindGameOver }

// NewKill and friends exist so other packages can construct variants with
// the shared timestamp in one call.

func NewKill(at time.Time, killer, victim PlayerRef, weapon string, headshot bool) *Kill {
	return &Kill{base: base{At: at}, Killer: killer, Victim: victim, Weapon: weapon, Headshot: headshot}
}

func NewAssist(at time.Time, assister, victim PlayerRef) *Assist {
	return &Assist{base: base{At: at}, Assister: assister, Victim: victim}
}

func NewAttack(at time.Time, attacker, victim PlayerRef, weapon string, reported, health int) *Attack {
	return &Attack{base: base{At: at}, Attacker: attacker, Victim: victim, Weapon: weapon, ReportedDamage: reported, HealthRemaining: health}
}

func NewBomb(at time.Time, actor PlayerRef, action string) *Bomb {
	return &Bomb{base: base{At: at}, Actor: actor, Action: action}
}

func NewRoundStart(at time.Time) *RoundStart {
	return &RoundStart{base: base{At: at}}
}

func NewRoundEnd(at time.Time, participants []string) *RoundEnd {
	return &RoundEnd{base: base{At: at}, Participants: participants}
}

func NewGameOver(at time.Time, mode, mapName string, ctScore, tScore, duration int) *GameOver {
	return &GameOver{base: base{At: at}, Mode: mode, MapName: mapName, CTScore: ctScore, TScore: tScore, DurationMinutes: duration}
}

// SetRound assigns the round index on any variant.
func SetRound(e Event, round int) {
	switch v := e.(type) {
	case *Kill:
		v.Round = round
	case *Assist:
		v.Round = round
	case *Attack:
		v.Round = round
	case *Bomb:
		v.Round = round
	case *RoundStart:
		v.Round = round
	case *RoundEnd:
		v.Round = round
	case *GameOver:
		v.Round = round
	}
}

// StoredEvent is the flattened persisted form of any variant.
type StoredEvent struct {
	GameID          int64
	Round           int
	Kind            EventKind
	At              time.Time
	Actor           string
	Target          string
	Weapon          string
	HealthRemaining int
	Damage          int
	Headshot        bool
	Anomalous       bool
}

// Flatten converts an event variant into its persisted form.
func Flatten(e Event) StoredEvent {
	se := StoredEvent{Round: e.RoundIndex(), Kind: e.Kind(), At: e.Time()}
	switch v := e.(type) {
	case *Kill:
		se.Actor = v.Killer.RawID()
		se.Target = v.Victim.RawID()
		se.Weapon = v.Weapon
		se.Headshot = v.Headshot
	case *Assist:
		se.Actor = v.Assister.RawID()
		se.Target = v.Victim.RawID()
	case *Attack:
		se.Actor = v.Attacker.RawID()
		se.Target = v.Victim.RawID()
		se.Weapon = v.Weapon
		se.HealthRemaining = v.HealthRemaining
		se.Damage = v.ComputedDamage
		se.Anomalous = v.Anomalous
	case *Bomb:
		se.Actor = v.Actor.RawID()
		se.Weapon = v.Action
	case *RoundStart, *RoundEnd, *GameOver:
	}
	return se
}
