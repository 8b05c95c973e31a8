package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rankpipe/rankpipe/internal/model"
)

// GameBundle is everything derived from one ingested game, written as a
// single unit of work.
type GameBundle struct {
	Game      *model.Game
	Rounds    []*model.Round
	Events    []model.StoredEvent
	Stats     []*model.PlayerStat
	Accolades []*model.Accolade
}

// FindGameBySignature returns the stored game with the given signature, or
// nil when none exists (including when the table is not yet provisioned).
func (db *DB) FindGameBySignature(ctx context.Context, endTS time.Time, mapName string) (*model.Game, error) {
	var g model.Game
	var ts string
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, end_ts, map_name, mode, ct_score, t_score, duration_minutes
		FROM games WHERE end_ts = ? AND map_name = ?`,
		formatTS(endTS), mapName).
		Scan(&g.ID, &ts, &g.MapName, &g.Mode, &g.CTScore, &g.TScore, &g.DurationMinutes)
	if err == sql.ErrNoRows || isMissingTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game: %w", err)
	}
	g.EndTime = parseTS(ts)
	return &g, nil
}

// SaveGameBundle writes the game and all its derived records in one
// transaction. A signature collision rolls everything back and returns
// ErrDuplicateGame: no partial writes, no duplicate rows.
func (db *DB) SaveGameBundle(ctx context.Context, b *GameBundle) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO games(end_ts, map_name, mode, ct_score, t_score, duration_minutes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		formatTS(b.Game.EndTime), b.Game.MapName, b.Game.Mode,
		b.Game.CTScore, b.Game.TScore, b.Game.DurationMinutes)
	if isUniqueViolation(err) {
		return 0, ErrDuplicateGame
	}
	if err != nil {
		return 0, fmt.Errorf("insert game: %w", err)
	}
	gameID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("game id: %w", err)
	}

	if err := insertRounds(ctx, tx, gameID, b.Rounds); err != nil {
		return 0, err
	}
	if err := insertEvents(ctx, tx, gameID, b.Events); err != nil {
		return 0, err
	}
	if err := insertPlayerStats(ctx, tx, gameID, b.Stats); err != nil {
		return 0, err
	}
	if err := insertAccolades(ctx, tx, gameID, b.Accolades); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateGame
		}
		return 0, fmt.Errorf("commit: %w", err)
	}
	return gameID, nil
}

func insertRounds(ctx context.Context, tx *sql.Tx, gameID int64, rounds []*model.Round) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rounds(game_id, round_number, start_ts, end_ts, winner)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rounds {
		endTS := ""
		if !r.EndTime.IsZero() {
			endTS = formatTS(r.EndTime)
		}
		if _, err := stmt.ExecContext(ctx, gameID, r.Index, formatTS(r.StartTime), endTS, r.Winner.String()); err != nil {
			return fmt.Errorf("insert round %d: %w", r.Index, err)
		}
	}
	return nil
}

func insertEvents(ctx context.Context, tx *sql.Tx, gameID int64, events []model.StoredEvent) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events(game_id, round_number, kind, ts, actor, target, weapon,
		                   health_remaining, damage, headshot, anomalous)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, gameID, e.Round, string(e.Kind), formatTS(e.At),
			e.Actor, e.Target, e.Weapon, e.HealthRemaining, e.Damage,
			boolInt(e.Headshot), boolInt(e.Anomalous)); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return nil
}

func insertPlayerStats(ctx context.Context, tx *sql.Tx, gameID int64, stats []*model.PlayerStat) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO player_stats(game_id, player_id, name, team,
		                         kills, deaths, assists, headshot_kills,
		                         damage_dealt, rounds_played, bomb_plants, bomb_defuses, rating)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, s := range stats {
		if _, err := stmt.ExecContext(ctx, gameID, s.PlayerID, s.Name, s.Team.String(),
			s.Kills, s.Deaths, s.Assists, s.HeadshotKills,
			s.DamageDealt, s.RoundsPlayed, s.BombPlants, s.BombDefuses, s.Rating); err != nil {
			return fmt.Errorf("insert player_stats for %s: %w", s.PlayerID, err)
		}
	}
	return nil
}

func insertAccolades(ctx context.Context, tx *sql.Tx, gameID int64, accolades []*model.Accolade) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO accolades(game_id, type, player_id, value, rank_position)
		VALUES (?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, a := range accolades {
		if _, err := stmt.ExecContext(ctx, gameID, a.Type, a.PlayerID, a.Value, a.RankPosition); err != nil {
			return fmt.Errorf("insert accolade %s: %w", a.Type, err)
		}
	}
	return nil
}

// ListGames returns all stored games, newest first.
func (db *DB) ListGames(ctx context.Context) ([]*model.Game, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, end_ts, map_name, mode, ct_score, t_score, duration_minutes
		FROM games ORDER BY end_ts DESC`)
	if isMissingTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var out []*model.Game
	for rows.Next() {
		var g model.Game
		var ts string
		if err := rows.Scan(&g.ID, &ts, &g.MapName, &g.Mode, &g.CTScore, &g.TScore, &g.DurationMinutes); err != nil {
			return nil, err
		}
		g.EndTime = parseTS(ts)
		out = append(out, &g)
	}
	return out, rows.Err()
}

// GetPlayerStats returns all player stats for a game, ordered by kills.
func (db *DB) GetPlayerStats(ctx context.Context, gameID int64) ([]*model.PlayerStat, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT player_id, name, team, kills, deaths, assists, headshot_kills,
		       damage_dealt, rounds_played, bomb_plants, bomb_defuses, rating
		FROM player_stats WHERE game_id = ? ORDER BY kills DESC, player_id`, gameID)
	if isMissingTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get player stats: %w", err)
	}
	defer rows.Close()

	var out []*model.PlayerStat
	for rows.Next() {
		var s model.PlayerStat
		var team string
		if err := rows.Scan(&s.PlayerID, &s.Name, &team, &s.Kills, &s.Deaths, &s.Assists,
			&s.HeadshotKills, &s.DamageDealt, &s.RoundsPlayed,
			&s.BombPlants, &s.BombDefuses, &s.Rating); err != nil {
			return nil, err
		}
		s.GameID = gameID
		s.Team = model.ParseTeam(team)
		out = append(out, &s)
	}
	return out, rows.Err()
}

// GetAccolades returns the accolades for a game.
func (db *DB) GetAccolades(ctx context.Context, gameID int64) ([]*model.Accolade, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT type, player_id, value, rank_position
		FROM accolades WHERE game_id = ? ORDER BY type`, gameID)
	if isMissingTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get accolades: %w", err)
	}
	defer rows.Close()

	var out []*model.Accolade
	for rows.Next() {
		var a model.Accolade
		if err := rows.Scan(&a.Type, &a.PlayerID, &a.Value, &a.RankPosition); err != nil {
			return nil, err
		}
		a.GameID = gameID
		out = append(out, &a)
	}
	return out, rows.Err()
}

// FindEventsByGame returns the persisted events of a game in stored order.
func (db *DB) FindEventsByGame(ctx context.Context, gameID int64) ([]model.StoredEvent, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT round_number, kind, ts, actor, target, weapon,
		       health_remaining, damage, headshot, anomalous
		FROM events WHERE game_id = ? ORDER BY id`, gameID)
	if isMissingTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	defer rows.Close()

	var out []model.StoredEvent
	for rows.Next() {
		var e model.StoredEvent
		var kind, ts string
		var headshot, anomalous int
		if err := rows.Scan(&e.Round, &kind, &ts, &e.Actor, &e.Target, &e.Weapon,
			&e.HealthRemaining, &e.Damage, &headshot, &anomalous); err != nil {
			return nil, err
		}
		e.GameID = gameID
		e.Kind = model.EventKind(kind)
		e.At = parseTS(ts)
		e.Headshot = headshot != 0
		e.Anomalous = anomalous != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// LatestRating returns the most recently persisted rating for a player,
// by game end timestamp. ok is false when the player has no stored games.
func (db *DB) LatestRating(ctx context.Context, playerID string) (rating float64, ok bool, err error) {
	err = db.conn.QueryRowContext(ctx, `
		SELECT ps.rating
		FROM player_stats ps JOIN games g ON g.id = ps.game_id
		WHERE ps.player_id = ?
		ORDER BY g.end_ts DESC LIMIT 1`, playerID).Scan(&rating)
	if err == sql.ErrNoRows || isMissingTable(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("latest rating: %w", err)
	}
	return rating, true, nil
}

// TopRatings returns the cross-game leaderboard: each player's latest
// rating with their game count, highest rating first.
func (db *DB) TopRatings(ctx context.Context, limit int) ([]*model.RatingEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT ps.player_id,
		       MAX(CASE WHEN g.end_ts = latest.max_ts THEN ps.name END),
		       MAX(CASE WHEN g.end_ts = latest.max_ts THEN ps.rating END),
		       COUNT(*)
		FROM player_stats ps
		JOIN games g ON g.id = ps.game_id
		JOIN (
			SELECT ps2.player_id AS pid, MAX(g2.end_ts) AS max_ts
			FROM player_stats ps2 JOIN games g2 ON g2.id = ps2.game_id
			GROUP BY ps2.player_id
		) latest ON latest.pid = ps.player_id
		GROUP BY ps.player_id
		ORDER BY 3 DESC
		LIMIT ?`, limit)
	if isMissingTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("top ratings: %w", err)
	}
	defer rows.Close()

	var out []*model.RatingEntry
	for rows.Next() {
		var e model.RatingEntry
		var name sql.NullString
		var rating sql.NullFloat64
		if err := rows.Scan(&e.PlayerID, &name, &rating, &e.Games); err != nil {
			return nil, err
		}
		e.Name = name.String
		e.Rating = rating.Float64
		out = append(out, &e)
	}
	return out, rows.Err()
}

// GetGame returns one game by id, or nil when absent.
func (db *DB) GetGame(ctx context.Context, id int64) (*model.Game, error) {
	var g model.Game
	var ts string
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, end_ts, map_name, mode, ct_score, t_score, duration_minutes
		FROM games WHERE id = ?`, id).
		Scan(&g.ID, &ts, &g.MapName, &g.Mode, &g.CTScore, &g.TScore, &g.DurationMinutes)
	if err == sql.ErrNoRows || isMissingTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	g.EndTime = parseTS(ts)
	return &g, nil
}
