package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mohammad-safakhou/scout/config"
	"github.com/mohammad-safakhou/scout/internal/research"
)

// HackerNews filters the current top stories by title match. The Firebase
// API has no search endpoint, so the adapter pulls the top story ids and
// fetches each item.
type HackerNews struct {
	endpoint   string
	maxStories int
	httpClient *http.Client
}

// NewHackerNews creates an adapter for the Hacker News Firebase API.
func NewHackerNews(cfg config.HackerNewsConfig, timeout time.Duration) *HackerNews {
	return &HackerNews{
		endpoint:   cfg.Endpoint,
		maxStories: cfg.MaxStories,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (h *HackerNews) Name() string { return research.SourceHackerNews }

type hackerNewsItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
}

// Fetch returns top stories whose title contains the keyword,
// case-insensitively. Stories without an external URL are skipped.
func (h *HackerNews) Fetch(ctx context.Context, keyword string) []research.RawArticle {
	var ids []int
	if err := h.getJSON(ctx, h.endpoint+"/topstories.json", &ids); err != nil {
		log.Printf("[HACKERNEWS] top stories: %v", err)
		return nil
	}
	if len(ids) > h.maxStories {
		ids = ids[:h.maxStories]
	}

	items := make([]*hackerNewsItem, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			var item hackerNewsItem
			if err := h.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", h.endpoint, id), &item); err != nil {
				log.Printf("[HACKERNEWS] item %d: %v", id, err)
				return
			}
			items[i] = &item
		}(i, id)
	}
	wg.Wait()

	keywordLower := strings.ToLower(keyword)
	var articles []research.RawArticle
	for _, item := range items {
		if item == nil || item.URL == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(item.Title), keywordLower) {
			continue
		}
		content := item.Text
		if content == "" {
			content = item.Title
		}
		articles = append(articles, research.RawArticle{
			Source:  research.SourceHackerNews,
			Title:   item.Title,
			URL:     item.URL,
			Content: content,
		})
	}
	return articles
}

func (h *HackerNews) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
