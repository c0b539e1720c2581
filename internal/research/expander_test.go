package research

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/mohammad-safakhou/scout/models"
)

type fakeProvider struct {
	keywords    []string
	expandErr   error
	summaries   map[string]models.Summarization
	summarizeFn func(title string) (models.Summarization, error)
}

func (f *fakeProvider) ExpandTopic(ctx context.Context, topic string) ([]string, error) {
	if f.expandErr != nil {
		return nil, f.expandErr
	}
	return f.keywords, nil
}

func (f *fakeProvider) SummarizeArticle(ctx context.Context, title, content string) (models.Summarization, error) {
	if f.summarizeFn != nil {
		return f.summarizeFn(title)
	}
	if s, ok := f.summaries[title]; ok {
		return s, nil
	}
	return models.Summarization{Summary: "summary of " + title, Keywords: []string{"k"}}, nil
}

func TestExpandTopicIsAlwaysFirst(t *testing.T) {
	e := NewExpander(&fakeProvider{keywords: []string{"rust", "memory safety"}}, 6)

	got := e.Expand(context.Background(), "go generics")
	want := []string{"go generics", "rust", "memory safety"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestExpandFallsBackOnProviderError(t *testing.T) {
	e := NewExpander(&fakeProvider{expandErr: errors.New("boom")}, 6)

	got := e.Expand(context.Background(), "quantum computing")
	if len(got) != 1 || got[0] != "quantum computing" {
		t.Fatalf("expected single-element fallback, got %v", got)
	}
}

func TestExpandCapsModelKeywords(t *testing.T) {
	e := NewExpander(&fakeProvider{keywords: []string{"a", "b", "c", "d", "e", "f", "g", "h"}}, 6)

	got := e.Expand(context.Background(), "topic")
	if len(got) != 7 {
		t.Fatalf("expected topic plus 6 keywords, got %d: %v", len(got), got)
	}
	if got[0] != "topic" {
		t.Fatalf("expected topic first, got %q", got[0])
	}
}

func TestExpandDropsDuplicatesAndBlanks(t *testing.T) {
	e := NewExpander(&fakeProvider{keywords: []string{"Kafka", "kafka", "  ", "streams"}}, 6)

	got := e.Expand(context.Background(), "kafka")
	want := []string{"kafka", "streams"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
