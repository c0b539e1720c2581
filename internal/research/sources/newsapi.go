package sources

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mohammad-safakhou/scout/config"
	"github.com/mohammad-safakhou/scout/internal/research"
)

// NewsAPI searches newsapi.org's everything endpoint. Without an API key the
// adapter stays registered but yields nothing.
type NewsAPI struct {
	apiKey     string
	endpoint   string
	maxResults int
	httpClient *http.Client
}

// NewNewsAPI creates an adapter for the NewsAPI everything endpoint.
func NewNewsAPI(cfg config.NewsAPIConfig, timeout time.Duration) *NewsAPI {
	return &NewsAPI{
		apiKey:     cfg.APIKey,
		endpoint:   cfg.Endpoint,
		maxResults: cfg.MaxResults,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (n *NewsAPI) Name() string { return research.SourceNewsAPI }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		Content     string `json:"content"`
	} `json:"articles"`
}

// Fetch searches recent news for the keyword, sorted by relevancy.
func (n *NewsAPI) Fetch(ctx context.Context, keyword string) []research.RawArticle {
	if n.apiKey == "" {
		return nil
	}

	params := url.Values{}
	params.Set("q", keyword)
	params.Set("pageSize", strconv.Itoa(n.maxResults))
	params.Set("sortBy", "relevancy")

	req, err := http.NewRequestWithContext(ctx, "GET", n.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		log.Printf("[NEWSAPI] build request for %q: %v", keyword, err)
		return nil
	}
	req.Header.Set("X-Api-Key", n.apiKey)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		log.Printf("[NEWSAPI] search %q: %v", keyword, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[NEWSAPI] search %q: status %d", keyword, resp.StatusCode)
		return nil
	}

	var parsed newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("[NEWSAPI] decode %q: %v", keyword, err)
		return nil
	}
	if parsed.Status != "ok" {
		log.Printf("[NEWSAPI] search %q: status %q", keyword, parsed.Status)
		return nil
	}

	articles := make([]research.RawArticle, 0, len(parsed.Articles))
	for _, item := range parsed.Articles {
		if item.URL == "" {
			continue
		}
		content := item.Content
		if content == "" {
			content = item.Description
		}
		if content == "" {
			content = "No content available."
		}
		articles = append(articles, research.RawArticle{
			Source:  research.SourceNewsAPI,
			Title:   item.Title,
			URL:     item.URL,
			Content: content,
		})
	}
	return articles
}
