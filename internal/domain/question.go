package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Question is a pre-authored catalog entry. The session engine only reads it.
type Question struct {
	ID        uuid.UUID `json:"id"`
	Age       int       `json:"age"`
	Text      string    `json:"question"`
	AudioRef  string    `json:"question_audio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuestionCreate represents catalog import data
type QuestionCreate struct {
	Age      int    `json:"age" yaml:"age" validate:"omitempty,min=1,max=120"`
	Text     string `json:"question" yaml:"question" validate:"required"`
	AudioRef string `json:"question_audio,omitempty" yaml:"audio,omitempty"`
}

// QuestionRepository defines the interface for the question catalog
type QuestionRepository interface {
	Create(ctx context.Context, question *Question) error
	GetByID(ctx context.Context, id uuid.UUID) (*Question, error)
	List(ctx context.Context) ([]Question, error)
}
