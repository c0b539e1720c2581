package openai_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mohammad-safakhou/scout/models"
)

const (
	openaiAPIURL = "https://api.openai.com/v1/chat/completions"

	expandSystemPrompt = `You are a helpful research assistant. Your task is to expand a given user topic into a list of 5-7 diverse, search-engine-friendly keywords and phrases. Include synonyms, related technical terms, and different angles for the topic. Respond ONLY with a JSON object containing a single key "keywords" which is an array of strings.`

	summarizeSystemPrompt = `You are a highly skilled research analyst. Your task is to provide a concise, 3-sentence summary of the provided article content and extract the 5 most relevant keywords. Respond ONLY with a JSON object with two keys: "summary" (a string) and "keywords" (an array of strings).`
)

// client implements the provider interface using OpenAI's API
type client struct {
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	apiURL      string
	httpClient  *http.Client
}

// Message represents a message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// request represents a request to the OpenAI API
type request struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// response represents a response from the OpenAI API
type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates a new OpenAI client
func NewClient(apiKey, model string, temperature float64, maxTokens int, timeout time.Duration) *client {
	return &client{
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		apiURL:      openaiAPIURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// ExpandTopic asks the model for related search keywords. The topic itself is
// not included in the returned slice.
func (c *client) ExpandTopic(ctx context.Context, topic string) ([]string, error) {
	messages := []Message{
		{Role: "system", Content: expandSystemPrompt},
		{Role: "user", Content: topic},
	}

	responseStr, err := c.sendRequest(ctx, messages)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(responseStr), &parsed); err != nil {
		return nil, fmt.Errorf("invalid expansion shape: %w", err)
	}
	if parsed.Keywords == nil {
		return nil, fmt.Errorf("invalid expansion shape: missing keywords")
	}

	var keywords []string
	for _, kw := range parsed.Keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords, nil
}

// SummarizeArticle asks the model for a short synopsis and keyword list for
// one article, validated against the expected schema.
func (c *client) SummarizeArticle(ctx context.Context, title, content string) (models.Summarization, error) {
	userPrompt := fmt.Sprintf("Here is the article:\n\nTITLE: %q\n\nCONTENT: %q", title, content)
	messages := []Message{
		{Role: "system", Content: summarizeSystemPrompt},
		{Role: "user", Content: userPrompt},
	}

	responseStr, err := c.sendRequest(ctx, messages)
	if err != nil {
		return models.Summarization{}, err
	}

	var parsed struct {
		Summary  *string  `json:"summary"`
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(responseStr), &parsed); err != nil {
		return models.Summarization{}, fmt.Errorf("invalid summarization shape: %w", err)
	}
	if parsed.Summary == nil || strings.TrimSpace(*parsed.Summary) == "" {
		return models.Summarization{}, fmt.Errorf("invalid summarization shape: missing summary")
	}
	if parsed.Keywords == nil {
		return models.Summarization{}, fmt.Errorf("invalid summarization shape: missing keywords")
	}
	return models.Summarization{Summary: *parsed.Summary, Keywords: parsed.Keywords}, nil
}

// sendRequest sends a request to the OpenAI API
func (c *client) sendRequest(ctx context.Context, messages []Message) (string, error) {
	requestBody := request{
		Model:          c.model,
		Messages:       messages,
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status: %d", resp.StatusCode)
	}

	var openaiResp response
	if err := json.NewDecoder(resp.Body).Decode(&openaiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(openaiResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return openaiResp.Choices[0].Message.Content, nil
}
