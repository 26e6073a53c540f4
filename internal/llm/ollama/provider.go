// Package ollama runs the analysis on a local Ollama server through its chat
// endpoint.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Rrens/talent-chat/internal/llm"
)

// Provider implements llm.Provider for Ollama
type Provider struct {
	host   string
	model  string
	client *http.Client
}

// NewProvider creates a new Ollama provider
func NewProvider(host, model string) *Provider {
	if model == "" {
		model = "llama3"
	}
	return &Provider{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: &http.Client{Timeout: 300 * time.Second},
	}
}

func (p *Provider) Name() string         { return "ollama" }
func (p *Provider) DefaultModel() string { return p.model }

// IsConfigured reports whether a host is set. Ollama needs no credentials.
func (p *Provider) IsConfigured() bool { return p.host != "" }

func (p *Provider) AvailableModels() []string {
	return []string{"llama3", "llama3.1", "llama3.2", "mistral", "qwen2.5", "gemma2"}
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model           string      `json:"model"`
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
}

// Analyze runs the analysis prompt through /api/chat without streaming
func (p *Provider) Analyze(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	if model == "" {
		model = p.model
	}

	in := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: llm.SystemPrompt},
			{Role: "user", Content: llm.BuildPrompt(req)},
		},
		Options: map[string]any{
			"temperature": 0.7,
			"num_predict": 1024,
		},
	}

	start := time.Now()
	var out chatResponse
	if err := llm.PostJSON(ctx, p.client, p.Name(), p.host+"/api/chat", nil, in, &out); err != nil {
		return nil, err
	}
	if !out.Done {
		return nil, fmt.Errorf("ollama returned an unfinished reply for %s", model)
	}

	return &llm.Response{
		Text:       out.Message.Content,
		Model:      model,
		TokensUsed: out.PromptEvalCount + out.EvalCount,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
