package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Rrens/talent-chat/internal/speech"
)

// maxInput is the longest text the speech endpoint accepts
const maxInput = 4096

// Synthesizer implements speech.Synthesizer over the OpenAI audio API
type Synthesizer struct {
	apiKey  string
	model   string
	voice   string
	client  *http.Client
	baseURL string
}

// NewSynthesizer creates a new OpenAI synthesizer
func NewSynthesizer(apiKey, model, voice string) *Synthesizer {
	if model == "" {
		model = "tts-1"
	}
	if voice == "" {
		voice = "alloy"
	}
	return &Synthesizer{
		apiKey:  apiKey,
		model:   model,
		voice:   voice,
		client:  &http.Client{Timeout: 120 * time.Second},
		baseURL: "https://api.openai.com/v1",
	}
}

func (s *Synthesizer) Name() string {
	return "openai"
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize posts the text to /audio/speech and returns the MP3 body
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*speech.Audio, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("openai speech is not configured (missing API key)")
	}
	if r := []rune(text); len(r) > maxInput {
		text = string(r[:maxInput])
	}

	body, err := json.Marshal(speechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai speech returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio from OpenAI")
	}

	return speech.MP3(data), nil
}
