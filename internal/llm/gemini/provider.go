package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/talent-chat/internal/config"
	"github.com/Rrens/talent-chat/internal/llm"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.5-flash"

type Provider struct {
	apiKey string
	model  string
	opts   []option.ClientOption
}

// NewProvider creates a Gemini provider. Extra client options are appended
// after the API key.
func NewProvider(cfg config.GeminiConfig, opts ...option.ClientOption) *Provider {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Provider{apiKey: cfg.APIKey, model: model, opts: opts}
}

func (p *Provider) Name() string         { return "gemini" }
func (p *Provider) DefaultModel() string { return p.model }
func (p *Provider) IsConfigured() bool   { return p.apiKey != "" }

func (p *Provider) AvailableModels() []string {
	return []string{defaultModel, "gemini-2.5-pro", "gemini-2.0-flash"}
}

func (p *Provider) Analyze(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	if !p.IsConfigured() {
		return nil, errors.New("gemini provider is not configured (missing API key)")
	}
	if model == "" {
		model = p.model
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(p.apiKey)}, p.opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	gm := client.GenerativeModel(model)
	gm.SystemInstruction = genai.NewUserContent(genai.Text(llm.SystemPrompt))
	gm.SetTemperature(0.7)
	gm.SetMaxOutputTokens(1024)

	start := time.Now()
	resp, err := gm.GenerateContent(ctx, genai.Text(llm.BuildPrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	text, err := candidateText(resp)
	if err != nil {
		return nil, err
	}

	var tokens int
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &llm.Response{
		Text:       text,
		Model:      model,
		TokensUsed: tokens,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// candidateText joins the text parts of the first candidate
func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty response from gemini")
	}

	cand := resp.Candidates[0]
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text (finish reason %s)", cand.FinishReason)
	}
	return b.String(), nil
}
