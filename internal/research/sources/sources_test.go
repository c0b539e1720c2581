package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mohammad-safakhou/scout/config"
	"github.com/mohammad-safakhou/scout/internal/research"
)

func TestWikipediaFetchParsesAndSanitizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("srsearch"); got != "go compilers" {
			t.Errorf("srsearch = %q", got)
		}
		if got := r.URL.Query().Get("srlimit"); got != "10" {
			t.Errorf("srlimit = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"query": map[string]interface{}{
				"search": []map[string]interface{}{
					{"title": "Go (programming language)", "pageid": 1234, "snippet": `a <span class="searchmatch">compiled</span> language`},
				},
			},
		})
	}))
	defer srv.Close()

	w := NewWikipedia(config.WikipediaConfig{Endpoint: srv.URL, MaxResults: 10}, time.Second)
	got := w.Fetch(context.Background(), "go compilers")
	if len(got) != 1 {
		t.Fatalf("expected 1 article, got %d", len(got))
	}
	if got[0].Source != research.SourceWikipedia {
		t.Fatalf("source = %q", got[0].Source)
	}
	if got[0].URL != "https://en.wikipedia.org/?curid=1234" {
		t.Fatalf("url = %q", got[0].URL)
	}
	if strings.Contains(got[0].Content, "<") {
		t.Fatalf("snippet not sanitized: %q", got[0].Content)
	}
}

func TestWikipediaFetchEmptyOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := NewWikipedia(config.WikipediaConfig{Endpoint: srv.URL, MaxResults: 10}, time.Second)
	if got := w.Fetch(context.Background(), "anything"); len(got) != 0 {
		t.Fatalf("expected no articles, got %d", len(got))
	}
}

func TestNewsAPIFetchDisabledWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request made despite missing api key")
	}))
	defer srv.Close()

	n := NewNewsAPI(config.NewsAPIConfig{Endpoint: srv.URL, MaxResults: 20}, time.Second)
	if got := n.Fetch(context.Background(), "anything"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestNewsAPIFetchParses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Api-Key"); got != "secret" {
			t.Errorf("api key header = %q", got)
		}
		if got := r.URL.Query().Get("sortBy"); got != "relevancy" {
			t.Errorf("sortBy = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok",
			"articles": []map[string]interface{}{
				{"title": "with content", "url": "https://example.com/1", "content": "body"},
				{"title": "description only", "url": "https://example.com/2", "description": "desc"},
				{"title": "bare", "url": "https://example.com/3"},
				{"title": "no url"},
			},
		})
	}))
	defer srv.Close()

	n := NewNewsAPI(config.NewsAPIConfig{APIKey: "secret", Endpoint: srv.URL, MaxResults: 20}, time.Second)
	got := n.Fetch(context.Background(), "anything")
	if len(got) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(got))
	}
	if got[0].Content != "body" || got[1].Content != "desc" || got[2].Content != "No content available." {
		t.Fatalf("content fallbacks wrong: %+v", got)
	}
}

func TestNewsAPIFetchEmptyOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := NewNewsAPI(config.NewsAPIConfig{APIKey: "secret", Endpoint: srv.URL, MaxResults: 20}, time.Second)
	if got := n.Fetch(context.Background(), "anything"); len(got) != 0 {
		t.Fatalf("expected no articles, got %d", len(got))
	}
}

func TestHackerNewsFetchFiltersByTitle(t *testing.T) {
	items := map[string]map[string]interface{}{
		"1": {"title": "Show HN: Go profiler", "url": "https://example.com/prof"},
		"2": {"title": "Rust rewrite", "url": "https://example.com/rust"},
		"3": {"title": "go routines explained"},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/topstories.json" {
			_, _ = fmt.Fprint(w, "[1,2,3]")
			return
		}
		for id, item := range items {
			if r.URL.Path == "/item/"+id+".json" {
				_ = json.NewEncoder(w).Encode(item)
				return
			}
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	h := NewHackerNews(config.HackerNewsConfig{Endpoint: srv.URL, MaxStories: 30}, time.Second)
	got := h.Fetch(context.Background(), "go")
	if len(got) != 1 {
		t.Fatalf("expected 1 matching story with a url, got %d: %+v", len(got), got)
	}
	if got[0].Title != "Show HN: Go profiler" {
		t.Fatalf("unexpected story: %+v", got[0])
	}
	if got[0].Source != research.SourceHackerNews {
		t.Fatalf("source = %q", got[0].Source)
	}
}

func TestHackerNewsFetchEmptyOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	h := NewHackerNews(config.HackerNewsConfig{Endpoint: srv.URL, MaxStories: 30}, time.Second)
	if got := h.Fetch(context.Background(), "anything"); len(got) != 0 {
		t.Fatalf("expected no stories, got %d", len(got))
	}
}
