// Package logging persists per-turn provenance rows so a session can
// be inspected after the fact.
package logging

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/danielpatrickdp/mental-model-chat/internal/orchestrator"
)

// #region turn-log

// TurnLog writes completed turns into the turn_log table. The table is
// created by the state store's migrations.
type TurnLog struct {
	db *sql.DB
}

// NewTurnLog wraps an open database.
func NewTurnLog(db *sql.DB) *TurnLog {
	return &TurnLog{db: db}
}

// RecordTurn implements orchestrator.Recorder.
func (l *TurnLog) RecordTurn(rec orchestrator.TurnRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := l.db.Exec(
		`INSERT INTO turn_log (session_id, turn_id, mode, user_text, reply, perception_ok, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.TurnID, string(rec.Mode), rec.UserText, rec.Reply,
		boolToInt(rec.PerceptionOK), rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log turn: %w", err)
	}
	return nil
}

// #endregion turn-log

// #region recent

// Recent returns the most recent turns, newest first.
func (l *TurnLog) Recent(limit int) ([]orchestrator.TurnRecord, error) {
	rows, err := l.db.Query(
		`SELECT session_id, turn_id, mode, user_text, reply, perception_ok, created_at
		 FROM turn_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var recs []orchestrator.TurnRecord
	for rows.Next() {
		var rec orchestrator.TurnRecord
		var mode, created string
		var ok int
		if err := rows.Scan(&rec.SessionID, &rec.TurnID, &mode, &rec.UserText, &rec.Reply, &ok, &created); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.Mode = orchestrator.Mode(mode)
		rec.PerceptionOK = ok != 0
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// #endregion recent

// #region helpers
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
