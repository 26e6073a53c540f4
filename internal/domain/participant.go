package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Gender values accepted for participants
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// Participant represents a registered user taking interview sessions
type Participant struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	Age          int       `json:"age"`
	Gender       string    `json:"gender"`
	PhoneNumber  string    `json:"phone_number"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ParticipantCreate represents registration data
type ParticipantCreate struct {
	FullName    string `json:"full_name" validate:"required,max=100"`
	Age         int    `json:"age" validate:"omitempty,min=1,max=120"`
	Gender      string `json:"gender" validate:"required,oneof=M F"`
	PhoneNumber string `json:"phone_number" validate:"required,max=14"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

// ParticipantLogin represents login credentials
type ParticipantLogin struct {
	PhoneNumber string `json:"phone_number" validate:"required,max=14"`
	Password    string `json:"password" validate:"required"`
}

// TokenPair represents JWT token pair
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ParticipantRepository defines the interface for participant storage
type ParticipantRepository interface {
	Create(ctx context.Context, participant *Participant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Participant, error)
	GetByPhoneNumber(ctx context.Context, phoneNumber string) (*Participant, error)
	PhoneNumberExists(ctx context.Context, phoneNumber string) (bool, error)
}
