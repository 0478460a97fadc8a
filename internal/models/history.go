// internal/models/history.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// HistoryRecord is one persisted generation.
type HistoryRecord struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Tone        string          `json:"tone"`
	Language    string          `json:"language"`
	ContentType string          `json:"content_type"`
	Fallback    bool            `json:"fallback"`
	Content     RenderedContent `json:"content"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewHistoryRecord builds a record for a completed generation.
func NewHistoryRecord(req GenerationRequest, content RenderedContent, fallback bool) HistoryRecord {
	return HistoryRecord{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Tone:        req.Tone,
		Language:    req.Language,
		ContentType: req.ContentType,
		Fallback:    fallback,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}
}

const EventTypeContentGenerated = "content.generated"

// ContentGeneratedEvent is published after each successful generation.
type ContentGeneratedEvent struct {
	Type        string    `json:"type"`
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	ContentType string    `json:"content_type"`
	Fallback    bool      `json:"fallback"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventFromRecord derives the published event from a history record.
func EventFromRecord(rec HistoryRecord) ContentGeneratedEvent {
	return ContentGeneratedEvent{
		Type:        EventTypeContentGenerated,
		ID:          rec.ID,
		Title:       rec.Title,
		ContentType: rec.ContentType,
		Fallback:    rec.Fallback,
		CreatedAt:   rec.CreatedAt,
	}
}
