// Package history persists completed generations in PostgreSQL.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	apperrors "content-creator/internal/common/errors"
	"content-creator/internal/models"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

const schema = `
CREATE TABLE IF NOT EXISTS generation_history (
    id           UUID PRIMARY KEY,
    title        TEXT NOT NULL,
    description  TEXT NOT NULL,
    tone         TEXT NOT NULL,
    language     TEXT NOT NULL,
    content_type TEXT NOT NULL,
    fallback     BOOLEAN NOT NULL DEFAULT FALSE,
    content      JSONB NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_generation_history_created_at ON generation_history (created_at DESC);`

const insertQuery = `
INSERT INTO generation_history (id, title, description, tone, language, content_type, fallback, content, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const listQuery = `
SELECT id, title, description, tone, language, content_type, fallback, content, created_at
FROM generation_history
ORDER BY created_at DESC
LIMIT $1`

// Store reads and writes generation_history.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the table and its index when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure history schema: %w", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, rec models.HistoryRecord) error {
	content, err := json.Marshal(rec.Content)
	if err != nil {
		return apperrors.NewHistoryWriteFailedError(err)
	}

	_, err = s.db.ExecContext(ctx, insertQuery,
		rec.ID, rec.Title, rec.Description, rec.Tone, rec.Language, rec.ContentType,
		rec.Fallback, content, rec.CreatedAt,
	)
	if err != nil {
		return apperrors.NewHistoryWriteFailedError(err)
	}
	return nil
}

// List returns up to limit records, newest first. limit is clamped by NormalizeLimit.
func (s *Store) List(ctx context.Context, limit int) ([]models.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, listQuery, NormalizeLimit(limit))
	if err != nil {
		return nil, apperrors.NewHistoryReadFailedError(err)
	}
	defer rows.Close()

	records := []models.HistoryRecord{}
	for rows.Next() {
		var (
			rec     models.HistoryRecord
			content []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.Tone, &rec.Language,
			&rec.ContentType, &rec.Fallback, &content, &rec.CreatedAt); err != nil {
			return nil, apperrors.NewHistoryReadFailedError(err)
		}
		if err := json.Unmarshal(content, &rec.Content); err != nil {
			return nil, apperrors.NewHistoryReadFailedError(fmt.Errorf("record %s: %w", rec.ID, err))
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewHistoryReadFailedError(err)
	}
	return records, nil
}

// NormalizeLimit maps non-positive values to DefaultLimit and caps at MaxLimit.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}
