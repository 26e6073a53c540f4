package llm

import (
	"context"

	"github.com/Rrens/talent-chat/internal/domain"
)

// Request contains the answers of one chat to be analyzed
type Request struct {
	Pairs    []domain.AnswerPair
	Language string
}

// Response contains LLM analysis result
type Response struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Analyze describes the participant's character and fitting professions
	Analyze(ctx context.Context, req Request, model string) (*Response, error)
}
