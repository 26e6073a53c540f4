// Package deepseek registers DeepSeek, which serves the OpenAI chat
// completions API.
package deepseek

import (
	"github.com/Rrens/talent-chat/internal/llm/openai"
)

// Endpoint is the hosted DeepSeek API
var Endpoint = openai.Endpoint{
	Name:         "deepseek",
	BaseURL:      "https://api.deepseek.com/v1",
	DefaultModel: "deepseek-chat",
	Models:       []string{"deepseek-chat", "deepseek-reasoner"},
}

// NewProvider creates a DeepSeek provider
func NewProvider(apiKey, model string, opts ...openai.Option) *openai.Provider {
	return openai.NewCompatible(Endpoint, apiKey, model, opts...)
}
