package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Rrens/talent-chat/internal/config"
	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/Rrens/talent-chat/internal/llm"
	"github.com/Rrens/talent-chat/internal/repository"
	"github.com/Rrens/talent-chat/internal/repository/memory"
	"github.com/Rrens/talent-chat/internal/speech"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls [][]domain.AnswerPair
}

func (p *fakeProvider) Name() string              { return "fake" }
func (p *fakeProvider) AvailableModels() []string { return []string{"fake-1"} }
func (p *fakeProvider) DefaultModel() string      { return "fake-1" }
func (p *fakeProvider) IsConfigured() bool        { return true }

func (p *fakeProvider) Analyze(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req.Pairs)
	return &llm.Response{Text: "Brave and curious. A future astronaut.", Model: "fake-1"}, nil
}

type fakeSynthesizer struct{}

func (fakeSynthesizer) Name() string { return "fake" }

func (fakeSynthesizer) Synthesize(ctx context.Context, text string) (*speech.Audio, error) {
	return speech.MP3([]byte("ID3" + text)), nil
}

type fakeMedia struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func (m *fakeMedia) Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	return key, nil
}

func (m *fakeMedia) Delete(ctx context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, ref)
	return nil
}

func (m *fakeMedia) URL(ref string) string { return "/media/" + ref }
func (m *fakeMedia) Close() error          { return nil }

type testServer struct {
	handler  http.Handler
	provider *fakeProvider
	media    *fakeMedia
}

func newTestServer(t *testing.T, catalogSize int) *testServer {
	t.Helper()

	store := memory.New()
	for i := 0; i < catalogSize; i++ {
		require.NoError(t, store.Questions().Create(context.Background(), &domain.Question{
			ID:        uuid.New(),
			Age:       6,
			Text:      "What do you want to be?",
			CreatedAt: time.Now(),
		}))
	}

	cfg := &config.Config{
		Server:   config.ServerConfig{MiddlewareTimeout: 10 * time.Second},
		Auth:     config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour},
		Session:  config.SessionConfig{QuestionLimit: 5, DefaultAge: 6},
		Security: config.SecurityConfig{MaxUploadBytes: 1 << 20},
	}

	provider := &fakeProvider{}
	llmRouter := llm.NewRouter("fake")
	llmRouter.RegisterProvider(provider)

	media := &fakeMedia{blobs: make(map[string][]byte)}

	h := NewRouter(cfg, Dependencies{
		Stores:      repository.NewMemoryBackend(store),
		Media:       media,
		Synthesizer: fakeSynthesizer{},
		LLM:         llmRouter,
	})
	return &testServer{handler: h, provider: provider, media: media}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func (s *testServer) do(t *testing.T, req *http.Request, token string) (int, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func (s *testServer) postJSON(t *testing.T, path string, body any, token string) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return s.do(t, req, token)
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()

	status, _ := s.postJSON(t, "/api/v1/auth/register", map[string]any{
		"full_name":    "Dewi",
		"gender":       "F",
		"phone_number": "081200000001",
		"password":     "password123",
	}, "")
	require.Equal(t, http.StatusCreated, status)

	status, env := s.postJSON(t, "/api/v1/auth/login", map[string]any{
		"phone_number": "081200000001",
		"password":     "password123",
	}, "")
	require.Equal(t, http.StatusOK, status)

	var tokens domain.TokenPair
	require.NoError(t, json.Unmarshal(env.Data, &tokens))
	return tokens.AccessToken
}

type questionResult struct {
	Question domain.Question `json:"result"`
	ChatID   uuid.UUID       `json:"chat"`
	End      bool            `json:"end"`
}

func TestRouter_InterviewFlow(t *testing.T) {
	s := newTestServer(t, 6)
	token := s.login(t)

	status, env := s.postJSON(t, "/api/v1/chats", nil, token)
	require.Equal(t, http.StatusCreated, status)
	var started questionResult
	require.NoError(t, json.Unmarshal(env.Data, &started))

	chatPath := "/api/v1/chats/" + started.ChatID.String()
	asked := []uuid.UUID{started.Question.ID}

	status, _ = s.postJSON(t, chatPath+"/questions/"+started.Question.ID.String()+"/answers", map[string]string{"answer": "an astronaut"}, token)
	require.Equal(t, http.StatusOK, status)

	for i := 0; i < 4; i++ {
		status, env = s.postJSON(t, chatPath+"/next", nil, token)
		require.Equal(t, http.StatusOK, status)

		var next questionResult
		require.NoError(t, json.Unmarshal(env.Data, &next))
		assert.Equal(t, i == 3, next.End)
		asked = append(asked, next.Question.ID)

		status, _ = s.postJSON(t, chatPath+"/questions/"+next.Question.ID.String()+"/answers", map[string]string{"answer": "yes"}, token)
		require.Equal(t, http.StatusOK, status)
	}

	status, env = s.postJSON(t, chatPath+"/next", nil, token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(env.Error), "validation_failed")

	status, env = s.postJSON(t, "/api/v1/summaries", nil, token)
	require.Equal(t, http.StatusOK, status)

	var summary struct {
		Text     string `json:"summary"`
		AudioRef string `json:"summary_audio"`
		AudioURL string `json:"summary_audio_url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, "Brave and curious. A future astronaut.", summary.Text)
	assert.Equal(t, "/media/"+summary.AudioRef, summary.AudioURL)
	assert.Contains(t, s.media.blobs, summary.AudioRef)

	require.Len(t, s.provider.calls, 1)
	pairs := s.provider.calls[0]
	require.Len(t, pairs, 5)
	for i, pair := range pairs {
		assert.Equal(t, asked[i], pair.QuestionID)
	}

	status, _ = s.postJSON(t, chatPath+"/close", nil, token)
	assert.Equal(t, http.StatusNoContent, status)

	status, env = s.postJSON(t, chatPath+"/next", nil, token)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(env.Error), "not_found")
}

func TestRouter_MultipartAnswer(t *testing.T) {
	s := newTestServer(t, 6)
	token := s.login(t)

	_, env := s.postJSON(t, "/api/v1/chats", nil, token)
	var started questionResult
	require.NoError(t, json.Unmarshal(env.Data, &started))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("answer", "a painter"))
	part, err := mw.CreateFormFile("answer_audio", "answer.webm")
	require.NoError(t, err)
	_, err = part.Write([]byte("webm-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	path := "/api/v1/chats/" + started.ChatID.String() + "/questions/" + started.Question.ID.String() + "/answers"
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	status, env := s.do(t, req, token)
	require.Equal(t, http.StatusOK, status)

	var answer domain.Answer
	require.NoError(t, json.Unmarshal(env.Data, &answer))
	assert.Equal(t, "a painter", answer.Text)
	assert.True(t, strings.HasPrefix(answer.AudioRef, "answers/audio/"))
	assert.Equal(t, []byte("webm-bytes"), s.media.blobs[answer.AudioRef])
}

func TestRouter_Errors(t *testing.T) {
	s := newTestServer(t, 1)
	token := s.login(t)

	status, _ := s.postJSON(t, "/api/v1/chats", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := s.postJSON(t, "/api/v1/summaries", nil, token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(env.Error), "Chat does not exist")

	status, env = s.postJSON(t, "/api/v1/chats", nil, token)
	require.Equal(t, http.StatusCreated, status)
	var started questionResult
	require.NoError(t, json.Unmarshal(env.Data, &started))

	status, env = s.postJSON(t, "/api/v1/chats/"+started.ChatID.String()+"/next", nil, token)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(env.Error), "pool_exhausted")

	status, _ = s.postJSON(t, "/api/v1/chats/not-a-uuid/next", nil, token)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.postJSON(t, "/api/v1/chats/"+uuid.NewString()+"/next", nil, token)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.postJSON(t, "/api/v1/auth/register", map[string]any{
		"full_name":    "Dewi",
		"gender":       "F",
		"phone_number": "081200000001",
		"password":     "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, status)
}
