// Package report renders CLI tables for stored games and stats.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/rankpipe/rankpipe/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintGameSummary prints a one-line header for the game.
func PrintGameSummary(w io.Writer, g *model.Game) {
	fmt.Fprintf(w, "\nMap: %s  |  Mode: %s  |  Score: CT %d : T %d  |  %d min  |  Ended: %s\n\n",
		g.MapName, g.Mode, g.CTScore, g.TScore, g.DurationMinutes,
		g.EndTime.Format("2006-01-02 15:04"))
}

// PrintPlayerTable writes the per-player stats table.
func PrintPlayerTable(w io.Writer, stats []*model.PlayerStat) {
	table := newTable(w)
	table.Header("NAME", "TEAM", "K", "D", "A", "HS", "K/D", "HS%", "DMG", "ADR", "RP", "RATING")
	for _, s := range stats {
		table.Append(
			s.Name,
			s.Team.String(),
			strconv.Itoa(s.Kills),
			strconv.Itoa(s.Deaths),
			strconv.Itoa(s.Assists),
			strconv.Itoa(s.HeadshotKills),
			fmt.Sprintf("%.2f", s.KDRatio()),
			fmt.Sprintf("%.0f%%", s.HSPercent()),
			strconv.Itoa(s.DamageDealt),
			fmt.Sprintf("%.1f", s.ADR()),
			strconv.Itoa(s.RoundsPlayed),
			fmt.Sprintf("%.0f", s.Rating),
		)
	}
	table.Render()
}

// PrintAccoladeTable writes the game's accolades.
func PrintAccoladeTable(w io.Writer, accolades []*model.Accolade, stats []*model.PlayerStat) {
	if len(accolades) == 0 {
		return
	}
	names := make(map[string]string, len(stats))
	for _, s := range stats {
		names[s.PlayerID] = s.Name
	}

	table := newTable(w)
	table.Header("ACCOLADE", "PLAYER", "VALUE")
	for _, a := range accolades {
		name := names[a.PlayerID]
		if name == "" {
			name = a.PlayerID
		}
		table.Append(a.Type, name, fmt.Sprintf("%.1f", a.Value))
	}
	table.Render()
}

// PrintGameList writes the stored-games listing.
func PrintGameList(w io.Writer, games []*model.Game) {
	table := newTable(w)
	table.Header("ID", "MAP", "MODE", "SCORE", "MIN", "ENDED")
	for _, g := range games {
		table.Append(
			strconv.FormatInt(g.ID, 10),
			g.MapName,
			g.Mode,
			fmt.Sprintf("%d-%d", g.CTScore, g.TScore),
			strconv.Itoa(g.DurationMinutes),
			g.EndTime.Format("2006-01-02 15:04"),
		)
	}
	table.Render()
}

// PrintLeaderboard writes the cross-game rating leaderboard.
func PrintLeaderboard(w io.Writer, entries []*model.RatingEntry) {
	table := newTable(w)
	table.Header("#", "PLAYER", "RATING", "GAMES")
	for i, e := range entries {
		name := e.Name
		if name == "" {
			name = e.PlayerID
		}
		table.Append(
			strconv.Itoa(i+1),
			name,
			fmt.Sprintf("%.0f", e.Rating),
			strconv.Itoa(e.Games),
		)
	}
	table.Render()
}
