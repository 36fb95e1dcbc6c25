// Package httpclient wraps resty with the fetch policy shared by feed and page
// downloads: fixed User-Agent, response timeout, redirect hop cap, and
// non-2xx responses reported as errors.
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultUserAgent    = "Mozilla/5.0 (compatible; SIerSlackBot/1.0)"
	DefaultTimeout      = 15 * time.Second
	DefaultMaxRedirects = 5

	maxBodyBytes = 4 << 20 // 4 MiB
)

// Getter downloads a resource and returns its body.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Options configures a Client. Zero fields take the defaults above.
type Options struct {
	Timeout      time.Duration
	MaxRedirects int
	UserAgent    string
}

// Client is a Getter backed by resty.
type Client struct {
	rc *resty.Client
}

// New builds a Client from opts.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = DefaultUserAgent
	}

	maxRedirects := opts.MaxRedirects
	rc := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetResponseBodyLimit(maxBodyBytes).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(_ *http.Request, via []*http.Request) error {
			// len(via) is the number of requests already made, i.e. the hop
			// about to be followed.
			if len(via) > maxRedirects {
				return fmt.Errorf("redirect limit (%d) exceeded", maxRedirects)
			}
			return nil
		}))

	return &Client{rc: rc}
}

// Get issues a GET and returns the body of a 2xx response.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.rc.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}

	body := resp.Body()
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("get %s: status %d body: %s", url, resp.StatusCode(), snippet(body))
	}
	return body, nil
}

// snippet returns a short, trimmed prefix of body for error messages.
func snippet(body []byte) string {
	const maxLen = 256
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "<empty>"
	}
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
