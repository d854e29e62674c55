// Package lookup provides a client for the external book lookup service
// (an Open Library style search API).
package lookup

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://openlibrary.org"

// Client provides access to the book lookup service.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithBaseURL points the client at a different lookup endpoint.
// Used by tests and self-hosted mirrors.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithTimeout bounds a single lookup call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient creates a new lookup client.
// Rate limited to one request per second with a small burst; the public
// service asks clients to stay well under 100 requests per minute.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 3),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
