package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/google/uuid"
)

// ParticipantRepository implements domain.ParticipantRepository
type ParticipantRepository struct {
	db *DB
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Create(ctx context.Context, p *domain.Participant) error {
	query := `
		INSERT INTO participants (id, full_name, age, gender, phone_number, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.SQL.ExecContext(ctx, query,
		p.ID, p.FullName, p.Age, p.Gender, p.PhoneNumber, p.PasswordHash, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Participant, error) {
	return r.getOne(ctx, `WHERE id = ?`, id)
}

func (r *ParticipantRepository) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.Participant, error) {
	return r.getOne(ctx, `WHERE phone_number = ?`, phoneNumber)
}

func (r *ParticipantRepository) PhoneNumberExists(ctx context.Context, phoneNumber string) (bool, error) {
	var n int
	err := r.db.SQL.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participants WHERE phone_number = ?`, phoneNumber).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check phone number: %w", err)
	}
	return n > 0, nil
}

func (r *ParticipantRepository) getOne(ctx context.Context, where string, arg any) (*domain.Participant, error) {
	query := `
		SELECT id, full_name, age, gender, phone_number, password_hash, created_at, updated_at
		FROM participants
	` + where

	var p domain.Participant
	err := r.db.SQL.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.FullName, &p.Age, &p.Gender, &p.PhoneNumber, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return &p, nil
}
