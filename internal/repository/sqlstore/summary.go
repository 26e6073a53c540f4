package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/google/uuid"
)

// SummaryRepository implements domain.SummaryRepository
type SummaryRepository struct {
	db *DB
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

func (r *SummaryRepository) GetByChat(ctx context.Context, chatID uuid.UUID, generation int) (*domain.Summary, error) {
	query := `
		SELECT id, chat_id, participant_id, generation, summary, summary_audio, created_at
		FROM summaries
		WHERE chat_id = ? AND generation = ?
	`
	var s domain.Summary
	err := r.db.SQL.QueryRowContext(ctx, query, chatID, generation).Scan(
		&s.ID, &s.ChatID, &s.ParticipantID, &s.Generation, &s.Text, &s.AudioRef, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	return &s, nil
}
