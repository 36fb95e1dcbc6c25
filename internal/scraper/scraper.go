package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/siernews/internal/httpclient"
)

// ErrNoImage is returned when a page declares no preview image.
var ErrNoImage = errors.New("no preview image")

// imageSelectors are tried in order; the first non-empty content wins.
var imageSelectors = []string{
	`meta[property="og:image"]`,
	`meta[property="og:image:url"]`,
	`meta[name="twitter:image"]`,
}

// FetchImage downloads pageURL and returns its preview image as an absolute URL.
func FetchImage(ctx context.Context, client httpclient.Getter, pageURL string) (string, error) {
	body, err := client.Get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("error loading page: %w", err)
	}

	img, err := ExtractImage(body)
	if err != nil {
		return "", err
	}
	return resolveURL(img, pageURL), nil
}

// ExtractImage returns the og:image (or twitter:image) declared in an HTML page.
func ExtractImage(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %w", err)
	}

	for _, sel := range imageSelectors {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok && strings.TrimSpace(val) != "" {
				return strings.TrimSpace(val), nil
			}
		}
	}
	return "", ErrNoImage
}

// resolveURL resolves a possibly relative URL against a base URL.
func resolveURL(raw, base string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}
	return baseURL.ResolveReference(parsed).String()
}
