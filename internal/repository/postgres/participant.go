package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ParticipantRepository implements domain.ParticipantRepository
type ParticipantRepository struct {
	db *DB
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Create inserts a new participant
func (r *ParticipantRepository) Create(ctx context.Context, p *domain.Participant) error {
	query := `
		INSERT INTO participants (id, full_name, age, gender, phone_number, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		p.ID,
		p.FullName,
		p.Age,
		p.Gender,
		p.PhoneNumber,
		p.PasswordHash,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

// GetByID retrieves a participant by ID
func (r *ParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Participant, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByPhoneNumber retrieves a participant by phone number
func (r *ParticipantRepository) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.Participant, error) {
	return r.getOne(ctx, `WHERE phone_number = $1`, phoneNumber)
}

// PhoneNumberExists checks whether the phone number is already registered
func (r *ParticipantRepository) PhoneNumberExists(ctx context.Context, phoneNumber string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM participants WHERE phone_number = $1)`,
		phoneNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check phone number: %w", err)
	}
	return exists, nil
}

func (r *ParticipantRepository) getOne(ctx context.Context, where string, arg any) (*domain.Participant, error) {
	query := `
		SELECT id, full_name, age, gender, phone_number, password_hash, created_at, updated_at
		FROM participants
	` + where

	var p domain.Participant
	err := r.db.Pool.QueryRow(ctx, query, arg).Scan(
		&p.ID,
		&p.FullName,
		&p.Age,
		&p.Gender,
		&p.PhoneNumber,
		&p.PasswordHash,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return &p, nil
}
