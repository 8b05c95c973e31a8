// Package storage is the persistence collaborator: a SQLite-backed store
// for games, rounds, events, player stats and accolades.
//
// The games table carries a UNIQUE constraint on (end_ts, map_name), the
// game signature, which is the final arbiter for concurrent duplicate
// ingestion. Read paths treat a missing table as "no data", not an error.
package storage

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// ErrDuplicateGame reports that a game with the same signature is already
// stored. Callers must treat it as "already ingested", not a failure.
var ErrDuplicateGame = errors.New("game with this signature already stored")

// tsLayout is how timestamps are stored; lexicographic order matches
// chronological order.
const tsLayout = "2006-01-02T15:04:05Z07:00"

// DB wraps a sql.DB for the match store.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and
// applies the schema.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection: keeps :memory: databases coherent and serializes
	// writers racing on the signature constraint.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func formatTS(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func parseTS(s string) time.Time {
	t, _ := time.Parse(tsLayout, s)
	return t
}

// isMissingTable reports the "relation not yet provisioned" condition.
func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
