package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/Rrens/talent-chat/internal/llm"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, llm.SystemPrompt, req.Messages[0].Content)
		assert.Contains(t, req.Messages[1].Content, "I like painting")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"gpt-4o-mini-2024-07-18","choices":[{"finish_reason":"stop","message":{"role":"assistant","content":"An artistic child."}}],"usage":{"total_tokens":42}}`))
	}))
	defer server.Close()

	p := NewProvider("sk-test", "", WithBaseURL(server.URL))

	resp, err := p.Analyze(context.Background(), llm.Request{
		Pairs: []domain.AnswerPair{{QuestionID: uuid.New(), QuestionText: "Hobby?", Answer: "I like painting"}},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "An artistic child.", resp.Text)
	assert.Equal(t, 42, resp.TokensUsed)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", resp.Model)
}

func TestProvider_AnalyzeStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	p := NewProvider("sk-test", "gpt-4o", WithBaseURL(server.URL))

	_, err := p.Analyze(context.Background(), llm.Request{}, "")

	var statusErr *llm.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, "openai", statusErr.Provider)
	assert.ErrorContains(t, err, "rate limited")
}

func TestProvider_AnalyzeNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	p := NewCompatible(Endpoint{Name: "proxy", BaseURL: server.URL, DefaultModel: "m"}, "key", "")

	_, err := p.Analyze(context.Background(), llm.Request{}, "")
	assert.ErrorContains(t, err, "proxy returned no choices")
	assert.Equal(t, "m", p.DefaultModel())
	assert.True(t, p.IsConfigured())
}
