package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/talent-chat/internal/config"
	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/Rrens/talent-chat/internal/security"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPhoneNumberTaken   = errors.New("phone number already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid refresh token")
)

// AuthService handles authentication operations
type AuthService struct {
	participantRepo domain.ParticipantRepository
	jwtManager      *security.JWTManager
	cfg             config.SessionConfig
}

// NewAuthService creates a new auth service
func NewAuthService(
	participantRepo domain.ParticipantRepository,
	jwtManager *security.JWTManager,
	cfg config.SessionConfig,
) *AuthService {
	return &AuthService{
		participantRepo: participantRepo,
		jwtManager:      jwtManager,
		cfg:             cfg,
	}
}

// Register creates a new participant account
func (s *AuthService) Register(ctx context.Context, input domain.ParticipantCreate) (*domain.Participant, error) {
	exists, err := s.participantRepo.PhoneNumberExists(ctx, input.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check phone number: %w", err)
	}
	if exists {
		return nil, ErrPhoneNumberTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	age := input.Age
	if age == 0 {
		age = s.cfg.DefaultAge
	}

	now := time.Now()
	participant := &domain.Participant{
		ID:           uuid.New(),
		FullName:     input.FullName,
		Age:          age,
		Gender:       input.Gender,
		PhoneNumber:  input.PhoneNumber,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.participantRepo.Create(ctx, participant); err != nil {
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}

	return participant, nil
}

// Login authenticates a participant and returns tokens
func (s *AuthService) Login(ctx context.Context, input domain.ParticipantLogin) (*domain.TokenPair, error) {
	participant, err := s.participantRepo.GetByPhoneNumber(ctx, input.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	if participant == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(participant.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(participant)
}

// Refresh refreshes the access token using a refresh token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	participantID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	if participant == nil {
		return nil, ErrInvalidToken
	}

	return s.issue(participant)
}

// GetParticipant retrieves a participant by ID
func (s *AuthService) GetParticipant(ctx context.Context, participantID uuid.UUID) (*domain.Participant, error) {
	return s.participantRepo.GetByID(ctx, participantID)
}

func (s *AuthService) issue(participant *domain.Participant) (*domain.TokenPair, error) {
	accessToken, refreshToken, expiresIn, err := s.jwtManager.GenerateTokenPair(participant.ID, participant.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}
