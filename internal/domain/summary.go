package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Summary holds the generated analysis of one chat generation
type Summary struct {
	ID            uuid.UUID `json:"id"`
	ChatID        uuid.UUID `json:"chat"`
	ParticipantID uuid.UUID `json:"user"`
	Generation    int       `json:"-"`
	Text          string    `json:"summary"`
	AudioRef      string    `json:"summary_audio"`
	CreatedAt     time.Time `json:"created_at"`
}

// SummaryRepository reads persisted summaries
type SummaryRepository interface {
	GetByChat(ctx context.Context, chatID uuid.UUID, generation int) (*Summary, error)
}
