package research

import (
	"context"
)

// Source identities carried on every fetched article.
const (
	SourceWikipedia  = "Wikipedia"
	SourceNewsAPI    = "NewsAPI"
	SourceHackerNews = "HackerNews"
)

// RawArticle is one unranked item fetched from a source adapter.
type RawArticle struct {
	Source  string
	Title   string
	URL     string
	Content string
}

// ScoredArticle pairs an article with its relevance score.
type ScoredArticle struct {
	RawArticle
	Score int
}

// Source fetches candidate articles for a single keyword. Implementations
// never return an error; a failed or disabled source yields an empty slice.
type Source interface {
	Name() string
	Fetch(ctx context.Context, keyword string) []RawArticle
}
