package openai_provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Errorf("expected json_object response format, got %+v", req.ResponseFormat)
		}
		_, _ = fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, content)
	}))
}

func testClient(url string) *client {
	c := NewClient("key", "gpt-4o-mini", 0.5, 1024, time.Second)
	c.httpClient = &http.Client{Timeout: time.Second}
	c.apiURL = url
	return c
}

func TestExpandTopicParsesKeywords(t *testing.T) {
	srv := chatServer(t, `{"keywords":["a"," b ",""]}`)
	defer srv.Close()

	got, err := testClient(srv.URL).ExpandTopic(context.Background(), "topic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected keywords: %v", got)
	}
}

func TestExpandTopicRejectsMalformedShape(t *testing.T) {
	srv := chatServer(t, `{"not_keywords":true}`)
	defer srv.Close()

	if _, err := testClient(srv.URL).ExpandTopic(context.Background(), "topic"); err == nil {
		t.Fatal("expected error for missing keywords key")
	}
}

func TestSummarizeArticleParses(t *testing.T) {
	srv := chatServer(t, `{"summary":"Three sentences.","keywords":["a","b"]}`)
	defer srv.Close()

	got, err := testClient(srv.URL).SummarizeArticle(context.Background(), "t", "c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Summary != "Three sentences." || len(got.Keywords) != 2 {
		t.Fatalf("unexpected summarization: %+v", got)
	}
}

func TestSummarizeArticleRejectsMissingSummary(t *testing.T) {
	srv := chatServer(t, `{"keywords":["a"]}`)
	defer srv.Close()

	if _, err := testClient(srv.URL).SummarizeArticle(context.Background(), "t", "c"); err == nil {
		t.Fatal("expected error for missing summary")
	}
}
