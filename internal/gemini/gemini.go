package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/siernews/internal/logger"
	"github.com/deusflow/siernews/internal/metrics"
	"github.com/deusflow/siernews/internal/ratelimit"
)

const (
	DefaultModel = "gemini-1.5-flash"

	// FallbackText is posted when no summary could be produced.
	FallbackText = "（要約を取得できませんでした）"

	maxOutputTokens = 300
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if modelName == "" {
		modelName = DefaultModel
	}
	model := client.GenerativeModel(modelName)
	model.SetMaxOutputTokens(maxOutputTokens)

	return &Client{client: client, model: model}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Generate returns the text of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

// Summarizer turns an article into a short Japanese summary. It never fails:
// errors, empty answers, and an exhausted request budget all yield
// FallbackText.
type Summarizer struct {
	gen     Generator
	budget  *ratelimit.Budget
	metrics *metrics.Metrics
}

// NewSummarizer wraps gen. A nil budget means unlimited requests.
func NewSummarizer(gen Generator, budget *ratelimit.Budget, m *metrics.Metrics) *Summarizer {
	if m == nil {
		m = metrics.Global
	}
	return &Summarizer{gen: gen, budget: budget, metrics: m}
}

func (s *Summarizer) Summarize(ctx context.Context, title, description string) string {
	if s.budget != nil && !s.budget.Allow() {
		logger.Warn("summarizer request budget exhausted", "title", title)
		s.metrics.IncrementSummariesFailed()
		return FallbackText
	}

	text, err := s.gen.Generate(ctx, buildPrompt(title, description))
	if err != nil {
		logger.Error("summarizer call failed", "title", title, "error", err)
		s.metrics.IncrementSummariesFailed()
		return FallbackText
	}

	text = strings.TrimSpace(text)
	if text == "" {
		logger.Warn("summarizer returned empty text", "title", title)
		s.metrics.IncrementSummariesFailed()
		return FallbackText
	}

	s.metrics.IncrementSummariesOK()
	return text
}

func buildPrompt(title, description string) string {
	return "以下のニュース記事を日本語で2〜3文に要約してください。" +
		"要約のみを出力し、前置きや補足は不要です。\n\n" +
		"タイトル: " + title + "\n" +
		"概要: " + description
}
