package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mohammad-safakhou/scout/config"
	"github.com/mohammad-safakhou/scout/internal/research"
)

// Wikipedia searches the MediaWiki API for encyclopedia articles.
type Wikipedia struct {
	endpoint   string
	maxResults int
	httpClient *http.Client
	sanitizer  *bluemonday.Policy
}

// NewWikipedia creates an adapter for the MediaWiki search API.
func NewWikipedia(cfg config.WikipediaConfig, timeout time.Duration) *Wikipedia {
	return &Wikipedia{
		endpoint:   cfg.Endpoint,
		maxResults: cfg.MaxResults,
		httpClient: &http.Client{Timeout: timeout},
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

func (w *Wikipedia) Name() string { return research.SourceWikipedia }

type wikipediaSearchResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			PageID  int    `json:"pageid"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

// Fetch runs one search query. Search snippets arrive as HTML fragments and
// are stripped to plain text before scoring.
func (w *Wikipedia) Fetch(ctx context.Context, keyword string) []research.RawArticle {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", keyword)
	params.Set("srlimit", strconv.Itoa(w.maxResults))
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, "GET", w.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		log.Printf("[WIKIPEDIA] build request for %q: %v", keyword, err)
		return nil
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		log.Printf("[WIKIPEDIA] search %q: %v", keyword, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[WIKIPEDIA] search %q: status %d", keyword, resp.StatusCode)
		return nil
	}

	var parsed wikipediaSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("[WIKIPEDIA] decode %q: %v", keyword, err)
		return nil
	}

	articles := make([]research.RawArticle, 0, len(parsed.Query.Search))
	for _, item := range parsed.Query.Search {
		articles = append(articles, research.RawArticle{
			Source:  research.SourceWikipedia,
			Title:   item.Title,
			URL:     fmt.Sprintf("https://en.wikipedia.org/?curid=%d", item.PageID),
			Content: w.sanitizer.Sanitize(item.Snippet),
		})
	}
	return articles
}
