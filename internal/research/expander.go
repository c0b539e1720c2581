package research

import (
	"context"
	"log"
	"strings"

	"github.com/mohammad-safakhou/scout/provider"
)

// Expander turns a topic into the keyword set driving the source fan-out.
type Expander struct {
	provider    provider.Provider
	maxKeywords int
}

// NewExpander creates an expander capped at maxKeywords model keywords.
func NewExpander(p provider.Provider, maxKeywords int) *Expander {
	return &Expander{provider: p, maxKeywords: maxKeywords}
}

// Expand returns the topic followed by up to maxKeywords model-generated
// keywords, deduplicated case-insensitively. The topic itself is always the
// first element; on any model failure the topic alone is returned.
func (e *Expander) Expand(ctx context.Context, topic string) []string {
	keywords := []string{topic}

	generated, err := e.provider.ExpandTopic(ctx, topic)
	if err != nil {
		log.Printf("[EXPAND] falling back to topic only: %v", err)
		return keywords
	}

	seen := map[string]bool{strings.ToLower(topic): true}
	for _, kw := range generated {
		if len(keywords) > e.maxKeywords {
			break
		}
		key := strings.ToLower(strings.TrimSpace(kw))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keywords = append(keywords, strings.TrimSpace(kw))
	}
	return keywords
}
