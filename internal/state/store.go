// Package state owns the embedded SQLite database: run counters,
// simulation checkpoints, and the tables other packages log into.
package state

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS run_counters (
	mode_key   TEXT PRIMARY KEY,
	next_run   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sim_checkpoints (
	run_id         TEXT PRIMARY KEY,
	scenario_index INTEGER NOT NULL,
	total          INTEGER NOT NULL,
	updated_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS turn_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	turn_id       TEXT NOT NULL,
	mode          TEXT NOT NULL,
	user_text     TEXT NOT NULL,
	reply         TEXT NOT NULL,
	perception_ok INTEGER NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS assumptions_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	turn_id     TEXT NOT NULL,
	assumption  TEXT NOT NULL,
	probability REAL NOT NULL,
	evidence    TEXT,
	created_at  TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct
// Store manages the embedded database.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region next-run
// NextRun increments and returns the run counter for a mode key,
// starting at 1. Read-modify-write inside one transaction.
func (s *Store) NextRun(modeKey string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRow(`SELECT next_run FROM run_counters WHERE mode_key = ?`, modeKey).Scan(&current)
	switch {
	case err == sql.ErrNoRows:
		current = 0
	case err != nil:
		return 0, fmt.Errorf("read counter: %w", err)
	}

	next := current + 1
	_, err = tx.Exec(
		`INSERT INTO run_counters (mode_key, next_run) VALUES (?, ?)
		 ON CONFLICT(mode_key) DO UPDATE SET next_run = excluded.next_run`,
		modeKey, next,
	)
	if err != nil {
		return 0, fmt.Errorf("write counter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

// #endregion next-run

// #region checkpoints

// SaveCheckpoint records that scenarios [0, scenarioIndex) of a run are
// complete.
func (s *Store) SaveCheckpoint(runID string, scenarioIndex, total int) error {
	_, err := s.db.Exec(
		`INSERT INTO sim_checkpoints (run_id, scenario_index, total, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET
		   scenario_index = excluded.scenario_index,
		   total          = excluded.total,
		   updated_at     = excluded.updated_at`,
		runID, scenarioIndex, total, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint returns the checkpoint for a run, and whether one
// exists.
func (s *Store) LoadCheckpoint(runID string) (Checkpoint, bool, error) {
	var cp Checkpoint
	var updated string
	err := s.db.QueryRow(
		`SELECT run_id, scenario_index, total, updated_at FROM sim_checkpoints WHERE run_id = ?`,
		runID,
	).Scan(&cp.RunID, &cp.ScenarioIndex, &cp.Total, &updated)
	if err == sql.ErrNoRows {
		return Checkpoint{}, false, nil
	}
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("load checkpoint: %w", err)
	}
	cp.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return cp, true, nil
}

// ListCheckpoints returns all in-progress runs.
func (s *Store) ListCheckpoints() ([]Checkpoint, error) {
	rows, err := s.db.Query(
		`SELECT run_id, scenario_index, total, updated_at FROM sim_checkpoints ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var cps []Checkpoint
	for rows.Next() {
		var cp Checkpoint
		var updated string
		if err := rows.Scan(&cp.RunID, &cp.ScenarioIndex, &cp.Total, &updated); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		cp.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		cps = append(cps, cp)
	}
	return cps, rows.Err()
}

// Counters returns the current run counter per mode key.
func (s *Store) Counters() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT mode_key, next_run FROM run_counters`)
	if err != nil {
		return nil, fmt.Errorf("list counters: %w", err)
	}
	defer rows.Close()

	counters := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		counters[key] = n
	}
	return counters, rows.Err()
}

// ClearCheckpoint removes a finished run's checkpoint.
func (s *Store) ClearCheckpoint(runID string) error {
	if _, err := s.db.Exec(`DELETE FROM sim_checkpoints WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("clear checkpoint: %w", err)
	}
	return nil
}

// #endregion checkpoints
