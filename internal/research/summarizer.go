package research

import (
	"context"
	"log"

	"github.com/mohammad-safakhou/scout/models"
	"github.com/mohammad-safakhou/scout/provider"
)

// FallbackSummary is persisted in place of a synopsis when the model call
// for an article fails.
const FallbackSummary = "Failed to generate a summary for this article."

// Summarizer produces the per-article synopsis for the final result set.
type Summarizer struct {
	provider provider.Provider
}

// NewSummarizer creates a summarizer backed by the given provider.
func NewSummarizer(p provider.Provider) *Summarizer {
	return &Summarizer{provider: p}
}

// Summarize returns the article dressed with a model synopsis and keywords.
// A model failure degrades that single article to the fallback text with no
// keywords; the job carries on.
func (s *Summarizer) Summarize(ctx context.Context, a ScoredArticle) models.ArticleSummary {
	out := models.ArticleSummary{
		Source: a.Source,
		Title:  a.Title,
		URL:    a.URL,
	}

	result, err := s.provider.SummarizeArticle(ctx, a.Title, a.Content)
	if err != nil {
		log.Printf("[SUMMARIZE] %q: %v", a.Title, err)
		out.Summary = FallbackSummary
		out.Keywords = []string{}
		return out
	}

	out.Summary = result.Summary
	out.Keywords = result.Keywords
	if len(out.Keywords) > 5 {
		out.Keywords = out.Keywords[:5]
	}
	return out
}
