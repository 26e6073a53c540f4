package google

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/Rrens/talent-chat/internal/config"
	"github.com/Rrens/talent-chat/internal/speech"
	"google.golang.org/api/option"
	"google.golang.org/api/texttospeech/v1"
)

// Synthesizer implements speech.Synthesizer over Cloud Text-to-Speech
type Synthesizer struct {
	svc      *texttospeech.Service
	language string
	voice    string
}

// NewSynthesizer creates a Cloud Text-to-Speech client. An API key takes
// precedence over a credentials file; with neither, default credentials apply.
func NewSynthesizer(ctx context.Context, cfg config.SpeechConfig, opts ...option.ClientOption) (*Synthesizer, error) {
	switch {
	case cfg.Google.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.Google.APIKey))
	case cfg.Google.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.Google.CredentialsFile))
	}

	svc, err := texttospeech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}

	language := cfg.Language
	if language == "" {
		language = "en-US"
	}
	return &Synthesizer{svc: svc, language: language, voice: cfg.Voice}, nil
}

func (s *Synthesizer) Name() string {
	return "google"
}

func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*speech.Audio, error) {
	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: s.language,
			Name:         s.voice,
		},
		AudioConfig: &texttospeech.AudioConfig{AudioEncoding: "MP3"},
	}

	resp, err := s.svc.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("text-to-speech request failed: %w", err)
	}

	data, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio content: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio from text-to-speech")
	}

	return speech.MP3(data), nil
}
