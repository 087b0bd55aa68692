package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"canvas/internal/domain"
)

// Stack names used in history_entries.
const (
	StackUndo = "undo"
	StackRedo = "redo"
)

// HistoryStore persists a document's undo and redo stacks. Each stack is
// stored most recent first and pruned to a fixed depth.
type HistoryStore struct {
	db    *DB
	limit int
}

// NewHistoryStore returns a store keeping at most limit entries per stack;
// limit <= 0 keeps everything.
func NewHistoryStore(db *DB, limit int) *HistoryStore {
	return &HistoryStore{db: db, limit: limit}
}

// Save replaces both stacks of docID. Stacks are given most recent first.
func (s *HistoryStore) Save(docID string, undo, redo []*domain.Template) error {
	tx, err := s.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM history_entries WHERE document_id = ?`, docID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	now := time.Now()
	for stack, entries := range map[string][]*domain.Template{StackUndo: undo, StackRedo: redo} {
		for pos, t := range entries {
			data, err := json.Marshal(t)
			if err != nil {
				return fmt.Errorf("encode %s[%d]: %w", stack, pos, err)
			}
			_, err = tx.Exec(
				`INSERT INTO history_entries (document_id, stack, position, snapshot_json, created_at)
				 VALUES (?, ?, ?, ?, ?)`,
				docID, stack, pos, string(data), now,
			)
			if err != nil {
				return fmt.Errorf("insert %s[%d]: %w", stack, pos, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history: %w", err)
	}
	return s.pruneIfNeeded(docID)
}

// Load returns both stacks of docID, most recent first.
func (s *HistoryStore) Load(docID string) (undo, redo []*domain.Template, err error) {
	rows, err := s.db.Conn().Query(
		`SELECT stack, position, snapshot_json FROM history_entries
		 WHERE document_id = ? ORDER BY stack, position ASC`, docID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stack, raw string
		var pos int
		if err := rows.Scan(&stack, &pos, &raw); err != nil {
			return nil, nil, fmt.Errorf("scan history entry: %w", err)
		}
		t, err := domain.DecodeTemplate([]byte(raw))
		if err != nil {
			return nil, nil, fmt.Errorf("decode %s[%d]: %w", stack, pos, err)
		}
		switch stack {
		case StackUndo:
			undo = append(undo, t)
		case StackRedo:
			redo = append(redo, t)
		}
	}
	return undo, redo, rows.Err()
}

// Count returns the number of stored entries per stack.
func (s *HistoryStore) Count(docID string) (undo, redo int, err error) {
	err = s.db.Conn().QueryRow(
		`SELECT
			COALESCE(SUM(CASE WHEN stack = 'undo' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN stack = 'redo' THEN 1 ELSE 0 END), 0)
		 FROM history_entries WHERE document_id = ?`, docID,
	).Scan(&undo, &redo)
	if err != nil {
		return 0, 0, fmt.Errorf("count history: %w", err)
	}
	return undo, redo, nil
}

// Clear removes all history of docID.
func (s *HistoryStore) Clear(docID string) error {
	_, err := s.db.Conn().Exec(`DELETE FROM history_entries WHERE document_id = ?`, docID)
	return err
}

// pruneIfNeeded drops the oldest entries beyond the configured depth.
func (s *HistoryStore) pruneIfNeeded(docID string) error {
	if s.limit <= 0 {
		return nil
	}
	_, err := s.db.Conn().Exec(
		`DELETE FROM history_entries WHERE document_id = ? AND position >= ?`, docID, s.limit,
	)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}
