package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"canvas/internal/domain"
)

// Document is a named, persisted template.
type Document struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	SourcePath string           `json:"sourcePath,omitempty"`
	Template   *domain.Template `json:"template"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// DocumentSummary is a document row without its template.
type DocumentSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SourcePath string    `json:"sourcePath,omitempty"`
	Blocks     int       `json:"blocks"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// DocumentStore persists documents in SQLite.
type DocumentStore struct {
	db *DB
}

func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Save inserts or replaces a document. CreatedAt is kept on update.
func (s *DocumentStore) Save(doc *Document) error {
	if doc.Template == nil {
		return domain.NewError(domain.ErrCodeInvalidTemplate, "document %s has no template", doc.ID)
	}
	data, err := json.Marshal(doc.Template)
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err = s.db.Conn().Exec(
		`INSERT INTO documents (id, name, source_path, template_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			source_path = excluded.source_path,
			template_json = excluded.template_json,
			updated_at = excluded.updated_at`,
		doc.ID, doc.Name, doc.SourcePath, string(data), doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Get loads a document; a missing id yields a NOT_FOUND error.
func (s *DocumentStore) Get(id string) (*Document, error) {
	doc := &Document{}
	var raw string
	err := s.db.Conn().QueryRow(
		`SELECT id, name, source_path, template_json, created_at, updated_at FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Name, &doc.SourcePath, &raw, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewError(domain.ErrCodeNotFound, "document %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	t, err := domain.DecodeTemplate([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	doc.Template = t
	return doc, nil
}

// List returns every document, most recently updated first.
func (s *DocumentStore) List() ([]DocumentSummary, error) {
	rows, err := s.db.Conn().Query(
		`SELECT id, name, source_path, json_array_length(template_json, '$.blocks'), updated_at
		 FROM documents ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentSummary
	for rows.Next() {
		var d DocumentSummary
		var blocks sql.NullInt64
		if err := rows.Scan(&d.ID, &d.Name, &d.SourcePath, &blocks, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.Blocks = int(blocks.Int64)
		out = append(out, d)
	}
	return out, rows.Err()
}

// Delete removes a document and its history. Deleting a missing id is not an error.
func (s *DocumentStore) Delete(id string) error {
	tx, err := s.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM history_entries WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return tx.Commit()
}
