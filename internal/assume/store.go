// Package assume persists the background assumptions inferences.
package assume

// #region imports
import (
	"database/sql"
	"fmt"
	"time"

	"github.com/danielpatrickdp/mental-model-chat/internal/orchestrator"
)

// #endregion imports

// #region store

// Store appends assumption sets to the assumptions_log table. The
// table is created by the state store's migrations.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append writes every item of a set as its own row, keyed by
// (session id, turn id).
func (s *Store) Append(sessionID string, set orchestrator.AssumptionSet) error {
	at := set.InferredAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, item := range set.Items {
		_, err := tx.Exec(
			`INSERT INTO assumptions_log (session_id, turn_id, assumption, probability, evidence, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			sessionID, set.TurnID, item.Assumption, item.Probability,
			nullIfEmpty(item.Evidence), at.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert assumption: %w", err)
		}
	}
	return tx.Commit()
}

// ForTurn returns the assumptions recorded for one turn, oldest first.
func (s *Store) ForTurn(turnID string) ([]orchestrator.Assumption, error) {
	rows, err := s.db.Query(
		`SELECT assumption, probability, evidence FROM assumptions_log
		 WHERE turn_id = ? ORDER BY id ASC`, turnID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assumptions: %w", err)
	}
	defer rows.Close()

	var items []orchestrator.Assumption
	for rows.Next() {
		var a orchestrator.Assumption
		var evidence sql.NullString
		if err := rows.Scan(&a.Assumption, &a.Probability, &evidence); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if evidence.Valid {
			a.Evidence = evidence.String
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// #endregion store

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
