package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Analyzer turns a chat's answers into a character and profession summary
// using the router's default provider, or a configured fallback.
type Analyzer struct {
	router   *Router
	model    string
	language string
}

// NewAnalyzer creates an analyzer. An empty model uses the provider default.
func NewAnalyzer(router *Router, model, language string) *Analyzer {
	return &Analyzer{router: router, model: model, language: language}
}

// Analyze returns the summary text for the given answers
func (a *Analyzer) Analyze(ctx context.Context, pairs []domain.AnswerPair) (string, error) {
	provider, err := a.router.Resolve()
	if err != nil {
		return "", err
	}

	resp, err := provider.Analyze(ctx, Request{Pairs: pairs, Language: a.language}, a.model)
	if err != nil {
		return "", fmt.Errorf("%s analysis failed: %w", provider.Name(), err)
	}

	text := CleanResponse(resp.Text)
	if text == "" {
		return "", errors.New("empty analysis from " + provider.Name())
	}

	log.Debug().
		Str("provider", provider.Name()).
		Str("model", resp.Model).
		Int("tokens", resp.TokensUsed).
		Int64("latency_ms", resp.LatencyMs).
		Int("answers", len(pairs)).
		Msg("Answers analyzed")

	return text, nil
}
