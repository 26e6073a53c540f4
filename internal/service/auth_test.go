package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/Rrens/talent-chat/internal/repository/memory"
	"github.com/Rrens/talent-chat/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(repo domain.ParticipantRepository) *AuthService {
	jwtManager := security.NewJWTManager("test-secret", 15*time.Minute, time.Hour)
	return NewAuthService(repo, jwtManager, testSessionConfig)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc := newTestAuthService(memory.New().Participants())
	ctx := context.Background()

	participant, err := svc.Register(ctx, domain.ParticipantCreate{
		FullName:    "Budi",
		Gender:      domain.GenderMale,
		PhoneNumber: "081234567890",
		Password:    "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, testSessionConfig.DefaultAge, participant.Age)
	assert.NotEqual(t, "password123", participant.PasswordHash)

	_, err = svc.Register(ctx, domain.ParticipantCreate{
		FullName:    "Budi again",
		Gender:      domain.GenderMale,
		PhoneNumber: "081234567890",
		Password:    "password456",
	})
	assert.ErrorIs(t, err, ErrPhoneNumberTaken)

	tokens, err := svc.Login(ctx, domain.ParticipantLogin{PhoneNumber: "081234567890", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, int64(900), tokens.ExpiresIn)

	_, err = svc.Login(ctx, domain.ParticipantLogin{PhoneNumber: "081234567890", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.ParticipantLogin{PhoneNumber: "089999999999", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	refreshed, err := svc.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.Refresh(ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	got, err := svc.GetParticipant(ctx, participant.ID)
	require.NoError(t, err)
	assert.Equal(t, "Budi", got.FullName)
}

func TestAuthService_RegisterKeepsGivenAge(t *testing.T) {
	svc := newTestAuthService(memory.New().Participants())

	participant, err := svc.Register(context.Background(), domain.ParticipantCreate{
		FullName:    "Sari",
		Age:         9,
		Gender:      domain.GenderFemale,
		PhoneNumber: "0811",
		Password:    "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, 9, participant.Age)
}

func TestAuthService_RegisterRepositoryError(t *testing.T) {
	repo := new(MockParticipantRepository)
	repo.On("PhoneNumberExists", mock.Anything, "0811").Return(false, errors.New("db down"))

	svc := newTestAuthService(repo)
	_, err := svc.Register(context.Background(), domain.ParticipantCreate{PhoneNumber: "0811", Password: "password123"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check phone number")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
