// Package openai talks to OpenAI and to services exposing the same chat
// completions API.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Rrens/talent-chat/internal/llm"
	"github.com/rs/zerolog/log"
)

// Endpoint describes an OpenAI-compatible chat completions service
type Endpoint struct {
	Name         string
	BaseURL      string
	DefaultModel string
	Models       []string
}

// OpenAI is the hosted OpenAI API
var OpenAI = Endpoint{
	Name:         "openai",
	BaseURL:      "https://api.openai.com/v1",
	DefaultModel: "gpt-4o-mini",
	Models:       []string{"gpt-4o", "gpt-4o-mini", "gpt-4.1", "gpt-4.1-mini"},
}

// Provider implements llm.Provider over a chat completions endpoint
type Provider struct {
	endpoint Endpoint
	apiKey   string
	model    string
	client   *http.Client
}

// Option customizes a Provider
type Option func(*Provider)

// WithBaseURL points the provider at another host, e.g. a proxy
func WithBaseURL(url string) Option {
	return func(p *Provider) { p.endpoint.BaseURL = url }
}

// WithHTTPClient replaces the default client
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// NewProvider creates an OpenAI provider
func NewProvider(apiKey, model string, opts ...Option) *Provider {
	return NewCompatible(OpenAI, apiKey, model, opts...)
}

// NewCompatible creates a provider for any OpenAI-compatible endpoint
func NewCompatible(endpoint Endpoint, apiKey, model string, opts ...Option) *Provider {
	if model == "" {
		model = endpoint.DefaultModel
	}
	p := &Provider{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string              { return p.endpoint.Name }
func (p *Provider) AvailableModels() []string { return p.endpoint.Models }
func (p *Provider) DefaultModel() string      { return p.model }
func (p *Provider) IsConfigured() bool        { return p.apiKey != "" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		FinishReason string      `json:"finish_reason"`
		Message      chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Analyze sends the answers to /chat/completions
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
		Temperature: 0.7,
		MaxTokens:   1024,
	}
	header := http.Header{"Authorization": {"Bearer " + p.apiKey}}

	start := time.Now()
	var out chatResponse
	if err := llm.PostJSON(ctx, p.client, p.endpoint.Name, p.endpoint.BaseURL+"/chat/completions", header, in, &out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", p.endpoint.Name)
	}

	choice := out.Choices[0]
	if choice.FinishReason == "length" {
		log.Warn().Str("provider", p.endpoint.Name).Str("model", model).Msg("Analysis truncated at max tokens")
	}
	if out.Model != "" {
		model = out.Model
	}

	return &llm.Response{
		Text:       choice.Message.Content,
		Model:      model,
		TokensUsed: out.Usage.TotalTokens,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
