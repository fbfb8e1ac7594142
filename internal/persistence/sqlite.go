package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"domination-engine/internal/models"
)

const leaderboardSchema = `
CREATE TABLE IF NOT EXISTS leaderboard (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	player        TEXT    NOT NULL,
	score         INTEGER NOT NULL,
	mode          TEXT    NOT NULL,
	date          TEXT    NOT NULL,
	elapsed_time  REAL    NOT NULL,
	tiles_held    INTEGER NOT NULL,
	difficulty    INTEGER NOT NULL,
	bots_defeated INTEGER NOT NULL,
	wave          INTEGER NOT NULL,
	victory       INTEGER NOT NULL,
	timestamp     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_leaderboard_timestamp ON leaderboard(timestamp);
`

// SQLiteStore keeps the leaderboard in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the database at dsn and applies
// the schema. ":memory:" is accepted for tests.
func OpenSQLiteStore(dsn string) (*SQLiteStore, error) {
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(leaderboardSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save inserts one row. Timestamps are stored as Unix milliseconds.
func (s *SQLiteStore) Save(ctx context.Context, e models.LeaderboardEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leaderboard (player, score, mode, date, elapsed_time, tiles_held, difficulty, bots_defeated, wave, victory, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Player, e.Score, e.Mode, e.Date, e.ElapsedTime, e.TilesHeld, e.Difficulty, e.BotsDefeated, e.Wave, e.Victory, e.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert leaderboard entry: %w", err)
	}
	return nil
}

// List returns every entry in insertion order. Ranking happens in Rank.
func (s *SQLiteStore) List(ctx context.Context) ([]models.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player, score, mode, date, elapsed_time, tiles_held, difficulty, bots_defeated, wave, victory, timestamp
		 FROM leaderboard ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []models.LeaderboardEntry
	for rows.Next() {
		var (
			e  models.LeaderboardEntry
			ts int64
		)
		if err := rows.Scan(&e.Player, &e.Score, &e.Mode, &e.Date, &e.ElapsedTime, &e.TilesHeld,
			&e.Difficulty, &e.BotsDefeated, &e.Wave, &e.Victory, &ts); err != nil {
			return nil, err
		}
		e.Timestamp = time.UnixMilli(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
