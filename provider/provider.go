package provider

import (
	"context"
	"errors"

	"github.com/mohammad-safakhou/scout/config"
	"github.com/mohammad-safakhou/scout/models"
	openai_provider "github.com/mohammad-safakhou/scout/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI    Client = "openai"
	Anthropic Client = "anthropic"
)

// Provider is the interface the research pipeline requires from a
// generative model.
type Provider interface {
	// ExpandTopic returns search keywords related to the topic. The caller
	// owns the fallback behaviour; ExpandTopic reports failures as errors.
	ExpandTopic(ctx context.Context, topic string) ([]string, error)
	// SummarizeArticle returns a short synopsis plus extracted keywords for
	// one article.
	SummarizeArticle(ctx context.Context, title, content string) (models.Summarization, error)
}

// NewProvider creates a new LLM client based on the provided configuration
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch Client(cfg.Provider) {
	case OpenAI:
		if cfg.APIKey == "" {
			return nil, errors.New("llm.api_key not set")
		}
		return openai_provider.NewClient(cfg.APIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens, cfg.Timeout), nil
	case Anthropic:
		return nil, errors.New("anthropic client not implemented yet")
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
