// Package parser turns raw server-log lines into typed events.
//
// Two line shapes are recognized: classic HL-style text lines with a
// "MM/DD/YYYY - HH:MM:SS:" prefix, and JSON object lines used for events
// whose payload is structured (round end participant lists, game summary).
// Anything else is skipped and counted, never fatal.
package parser

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rankpipe/rankpipe/internal/model"
)

const timeLayout = "01/02/2006 - 15:04:05"

// Stats counts what one parse pass saw.
type Stats struct {
	Lines   int
	Events  int
	Skipped int
}

// linePatterns contains the compiled regex patterns for text lines.
type linePatterns struct {
	Kill       *regexp.Regexp
	Assist     *regexp.Regexp
	Attack     *regexp.Regexp
	BombPlant  *regexp.Regexp
	BombDefuse *regexp.Regexp
	RoundStart *regexp.Regexp
	RoundEnd   *regexp.Regexp
	GameOver   *regexp.Regexp
}

// player token: "Name<slot><[U:1:N]><TEAM>"
const playerToken = `"(.+?)<\d+><([^>]*)><([A-Z]*)>"`

// ts prefix: 11/28/2021 - 20:41:33:
const tsPrefix = `^(\d{2}/\d{2}/\d{4} - \d{2}:\d{2}:\d{2}):\s+`

func newLinePatterns() *linePatterns {
	return &linePatterns{
		// "killer<2><[U:1:111]><CT>" killed "victim<3><[U:1:222]><TERRORIST>" with "ak47" (headshot)
		Kill: regexp.MustCompile(tsPrefix + playerToken + ` killed ` + playerToken + ` with "([^"]+)"( \(headshot\))?$`),

		// "helper<4><[U:1:333]><CT>" assisted killing "victim<3><[U:1:222]><TERRORIST>"
		Assist: regexp.MustCompile(tsPrefix + playerToken + ` assisted killing ` + playerToken + `$`),

		// "attacker<2><[U:1:111]><CT>" attacked "victim<3><[U:1:222]><TERRORIST>" with "glock" (damage "20") (damage_armor "0") (health "80") (armor "95")
		Attack: regexp.MustCompile(tsPrefix + playerToken + ` attacked ` + playerToken +
			` with "([^"]+)" \(damage "(\d+)"\)(?: \(damage_armor "\d+"\))? \(health "(\d+)"\)`),

		BombPlant:  regexp.MustCompile(tsPrefix + playerToken + ` triggered "Planted_The_Bomb"`),
		BombDefuse: regexp.MustCompile(tsPrefix + playerToken + ` triggered "Defused_The_Bomb"`),

		RoundStart: regexp.MustCompile(tsPrefix + `World triggered "Round_Start"`),
		RoundEnd:   regexp.MustCompile(tsPrefix + `World triggered "Round_End"`),

		// Game Over: competitive de_dust2 score 13:2 after 29 min
		GameOver: regexp.MustCompile(tsPrefix + `Game Over: (\S+) (\S+) score (\d+):(\d+) after (\d+) min`),
	}
}

// jsonLine is the structured-line shape. Only "round_end" and "game_over"
// are emitted this way by the servers we ingest from.
type jsonLine struct {
	Event   string   `json:"event"`
	Time    string   `json:"time"`
	Players []uint64 `json:"players"`
	Map     string   `json:"map"`
	Mode    string   `json:"mode"`
	CTScore int      `json:"ct_score"`
	TScore  int      `json:"t_score"`
	Minutes int      `json:"minutes"`
	Winner  string   `json:"winner"` // present in some logs; ignored, see tracker
}

// Parser is a single-pass line parser. One instance per ingestion job.
type Parser struct {
	patterns *linePatterns
	stats    Stats
	log      logrus.FieldLogger
}

func New(log logrus.FieldLogger) *Parser {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Parser{patterns: newLinePatterns(), log: log}
}

// Stats returns counters for the pass so far.
func (p *Parser) Stats() Stats { return p.stats }

// ParseLines maps each recognized line to exactly one event, in input
// order. Malformed lines are skipped and counted.
func (p *Parser) ParseLines(lines []string) []model.Event {
	events := make([]model.Event, 0, len(lines))
	for _, line := range lines {
		p.stats.Lines++
		ev, ok := p.parseLine(strings.TrimRight(line, "\r\n"))
		if !ok {
			p.stats.Skipped++
			continue
		}
		if ev != nil {
			p.stats.Events++
			events = append(events, ev)
		}
	}
	return events
}

// parseLine returns (nil, true) for blank lines, which are ignored
// without counting toward the skipped total.
func (p *Parser) parseLine(line string) (model.Event, bool) {
	if strings.TrimSpace(line) == "" {
		return nil, true
	}
	if strings.HasPrefix(strings.TrimSpace(line), "{") {
		return p.parseJSONLine(line)
	}
	return p.parseTextLine(line)
}

func (p *Parser) parseJSONLine(line string) (model.Event, bool) {
	var jl jsonLine
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &jl); err != nil {
		p.log.WithField("line", truncate(line)).Debug("unparseable json line")
		return nil, false
	}
	at, err := time.Parse(time.RFC3339, jl.Time)
	if err != nil {
		p.log.WithField("line", truncate(line)).Debug("json line with bad timestamp")
		return nil, false
	}
	switch jl.Event {
	case "round_end":
		participants := make([]string, 0, len(jl.Players))
		for _, id := range jl.Players {
			participants = append(participants, strconv.FormatUint(id, 10))
		}
		return model.NewRoundEnd(at, participants), true
	case "game_over":
		return model.NewGameOver(at, jl.Mode, jl.Map, jl.CTScore, jl.TScore, jl.Minutes), true
	default:
		p.log.WithField("event", jl.Event).Debug("unrecognized json event")
		return nil, false
	}
}

func (p *Parser) parseTextLine(line string) (model.Event, bool) {
	pt := p.patterns

	if m := pt.Kill.FindStringSubmatch(line); m != nil {
		at, ok := p.parseTime(m[1])
		if !ok {
			return nil, false
		}
		killer := playerRef(m[2], m[3], m[4])
		victim := playerRef(m[5], m[6], m[7])
		headshot := m[9] != ""
		return model.NewKill(at, killer, victim, m[8], headshot), true
	}

	if m := pt.Assist.FindStringSubmatch(line); m != nil {
		at, ok := p.parseTime(m[1])
		if !ok {
			return nil, false
		}
		return model.NewAssist(at, playerRef(m[2], m[3], m[4]), playerRef(m[5], m[6], m[7])), true
	}

	if m := pt.Attack.FindStringSubmatch(line); m != nil {
		at, ok := p.parseTime(m[1])
		if !ok {
			return nil, false
		}
		reported, _ := strconv.Atoi(m[9])
		health, _ := strconv.Atoi(m[10])
		return model.NewAttack(at, playerRef(m[2], m[3], m[4]), playerRef(m[5], m[6], m[7]), m[8], reported, health), true
	}

	if m := pt.BombPlant.FindStringSubmatch(line); m != nil {
		at, ok := p.parseTime(m[1])
		if !ok {
			return nil, false
		}
		return model.NewBomb(at, playerRef(m[2], m[3], m[4]), model.BombPlanted), true
	}

	if m := pt.BombDefuse.FindStringSubmatch(line); m != nil {
		at, ok := p.parseTime(m[1])
		if !ok {
			return nil, false
		}
		return model.NewBomb(at, playerRef(m[2], m[3], m[4]), model.BombDefused), true
	}

	if m := pt.RoundStart.FindStringSubmatch(line); m != nil {
		at, ok := p.parseTime(m[1])
		if !ok {
			return nil, false
		}
		return model.NewRoundStart(at), true
	}

	if m := pt.RoundEnd.FindStringSubmatch(line); m != nil {
		at, ok := p.parseTime(m[1])
		if !ok {
			return nil, false
		}
		return model.NewRoundEnd(at, nil), true
	}

	if m := pt.GameOver.FindStringSubmatch(line); m != nil {
		at, ok := p.parseTime(m[1])
		if !ok {
			return nil, false
		}
		ct, _ := strconv.Atoi(m[4])
		t, _ := strconv.Atoi(m[5])
		minutes, _ := strconv.Atoi(m[6])
		return model.NewGameOver(at, m[2], m[3], ct, t, minutes), true
	}

	p.log.WithField("line", truncate(line)).Debug("unrecognized line")
	return nil, false
}

func (p *Parser) parseTime(s string) (time.Time, bool) {
	at, err := time.Parse(timeLayout, s)
	if err != nil {
		p.log.WithField("ts", s).Debug("bad timestamp")
		return time.Time{}, false
	}
	return at, true
}

func playerRef(name, platformID, team string) model.PlayerRef {
	return model.PlayerRef{
		Name:       name,
		PlatformID: platformID,
		Team:       model.ParseTeam(team),
	}
}

func truncate(line string) string {
	const max = 120
	if len(line) > max {
		return line[:max] + "…"
	}
	return line
}
