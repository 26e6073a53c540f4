package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rrens/talent-chat/internal/api/handler"
	"github.com/Rrens/talent-chat/internal/config"
	"github.com/Rrens/talent-chat/internal/repository/memory"
	"github.com/Rrens/talent-chat/internal/security"
	"github.com/Rrens/talent-chat/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"status": "ok"}, body["data"])
}

func TestReadyCheck(t *testing.T) {
	healthy := pingerFunc(func(ctx context.Context) error { return nil })
	broken := pingerFunc(func(ctx context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name string
		deps map[string]handler.Pinger
		want int
	}{
		{"all ready", map[string]handler.Pinger{"database": healthy, "redis": healthy}, http.StatusOK},
		{"redis down", map[string]handler.Pinger{"database": healthy, "redis": broken}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ReadyCheck(tt.deps)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func newAuthHandler() *handler.AuthHandler {
	jwtManager := security.NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)
	authService := service.NewAuthService(memory.New().Participants(), jwtManager, config.SessionConfig{QuestionLimit: 5, DefaultAge: 6})
	return handler.NewAuthHandler(authService)
}

func makeJSONRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	h := newAuthHandler()
	rec := httptest.NewRecorder()

	h.Register(rec, makeJSONRequest(http.MethodPost, "/api/v1/auth/register", map[string]any{
		"full_name":    "Dewi",
		"gender":       "X",
		"phone_number": "0812000000011111",
		"password":     "short",
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	fields, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, fields, "Gender")
	assert.Contains(t, fields, "PhoneNumber")
	assert.Contains(t, fields, "Password")
}

func TestAuthHandler_LoginAndRefresh(t *testing.T) {
	h := newAuthHandler()

	rec := httptest.NewRecorder()
	h.Register(rec, makeJSONRequest(http.MethodPost, "/api/v1/auth/register", map[string]any{
		"full_name":    "Dewi",
		"age":          7,
		"gender":       "F",
		"phone_number": "081200000001",
		"password":     "password123",
	}))
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	participant := body["data"].(map[string]any)
	assert.Equal(t, float64(7), participant["age"])
	assert.NotContains(t, participant, "password_hash")

	rec = httptest.NewRecorder()
	h.Login(rec, makeJSONRequest(http.MethodPost, "/api/v1/auth/login", map[string]any{
		"phone_number": "081200000001",
		"password":     "wrong-password",
	}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.Login(rec, makeJSONRequest(http.MethodPost, "/api/v1/auth/login", map[string]any{
		"phone_number": "081200000001",
		"password":     "password123",
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	tokens := decode(t, rec)["data"].(map[string]any)

	rec = httptest.NewRecorder()
	h.Refresh(rec, makeJSONRequest(http.MethodPost, "/api/v1/auth/refresh", map[string]any{
		"refresh_token": tokens["refresh_token"],
	}))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Refresh(rec, makeJSONRequest(http.MethodPost, "/api/v1/auth/refresh", map[string]any{
		"refresh_token": tokens["access_token"],
	}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// BenchmarkJWTGeneration benchmarks token generation
func BenchmarkJWTGeneration(b *testing.B) {
	manager := security.NewJWTManager("benchmark-secret-key-32-chars!!", 15*time.Minute, 7*24*time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = manager.GenerateAccessToken(
			[16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
			"081200000001",
		)
	}
}
