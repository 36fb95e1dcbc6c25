package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/deusflow/siernews/internal/news"
)

const defaultTimeout = 30 * time.Second

// Poster sends articles to a Slack incoming webhook.
type Poster struct {
	webhookURL string
	client     *resty.Client
}

func NewPoster(webhookURL string) *Poster {
	return &Poster{
		webhookURL: webhookURL,
		client:     resty.New().SetTimeout(defaultTimeout),
	}
}

type textObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type accessory struct {
	Type     string `json:"type"`
	ImageURL string `json:"image_url"`
	AltText  string `json:"alt_text"`
}

type block struct {
	Type      string      `json:"type"`
	Text      *textObject `json:"text,omitempty"`
	Accessory *accessory  `json:"accessory,omitempty"`
}

type payload struct {
	Text   string  `json:"text"`
	Blocks []block `json:"blocks,omitempty"`
}

// messageText is the mrkdwn body: bold title, summary, then the link.
func messageText(a news.Article, summary string) string {
	return fmt.Sprintf("*【%s】*\n%s\n<%s>", a.Title, summary, a.URL)
}

// buildPayload adds a section block with the article image as accessory when
// the article has one; otherwise the message is plain text.
func buildPayload(a news.Article, summary string) payload {
	p := payload{Text: messageText(a, summary)}
	if !a.HasImage() {
		return p
	}

	p.Blocks = []block{{
		Type: "section",
		Text: &textObject{Type: "mrkdwn", Text: p.Text},
		Accessory: &accessory{
			Type:     "image",
			ImageURL: a.ImageURL,
			AltText:  a.Title,
		},
	}}
	return p
}

// Post delivers one article with its summary.
func (p *Poster) Post(ctx context.Context, a news.Article, summary string) error {
	if p.webhookURL == "" {
		return errors.New("slack webhook url is empty")
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(buildPayload(a, summary)).
		Post(p.webhookURL)
	if err != nil {
		return fmt.Errorf("error HTTP request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("slack webhook error: status %d", resp.StatusCode())
	}
	return nil
}
