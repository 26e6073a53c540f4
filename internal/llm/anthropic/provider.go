package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Rrens/talent-chat/internal/llm"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1"
	apiVersion     = "2023-06-01"
)

// Provider implements llm.Provider for the Anthropic messages API
type Provider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewProvider creates a new Anthropic provider. An empty baseURL uses the
// hosted API.
func NewProvider(apiKey, model, baseURL string) *Provider {
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *Provider) Name() string         { return "anthropic" }
func (p *Provider) DefaultModel() string { return p.model }
func (p *Provider) IsConfigured() bool   { return p.apiKey != "" }

func (p *Provider) AvailableModels() []string {
	return []string{
		"claude-3-5-haiku-latest",
		"claude-3-5-sonnet-latest",
		"claude-3-7-sonnet-latest",
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// text joins the text blocks of the reply
func (r *messagesResponse) text() string {
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

func (p *Provider) Analyze(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	if model == "" {
		model = p.model
	}

	in := messagesRequest{
		Model:     model,
		MaxTokens: 1024,
		System:    llm.SystemPrompt,
		Messages:  []message{{Role: "user", Content: llm.BuildPrompt(req)}},
	}
	header := http.Header{
		"X-Api-Key":         {p.apiKey},
		"Anthropic-Version": {apiVersion},
	}

	start := time.Now()
	var out messagesResponse
	if err := llm.PostJSON(ctx, p.client, p.Name(), p.baseURL+"/messages", header, in, &out); err != nil {
		return nil, err
	}

	text := out.text()
	if text == "" {
		return nil, fmt.Errorf("anthropic returned no text (stop reason %q)", out.StopReason)
	}

	return &llm.Response{
		Text:       text,
		Model:      model,
		TokensUsed: out.Usage.InputTokens + out.Usage.OutputTokens,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
