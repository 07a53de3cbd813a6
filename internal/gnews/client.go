package gnews

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://news.google.com"

	// Google serves the signed attributes only to browser-looking clients.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36"
)

// Client performs the three-step link resolution against news.google.com:
// token extraction, signed-parameter scraping and the batchexecute call.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient wires an HTTP client; a nil client gets a 15s-timeout default.
// All requests share one rate limiter so concurrent decodes cannot hammer
// news.google.com regardless of batch size.
func NewClient(client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: defaultBaseURL,
		http:    client,
		limiter: rate.NewLimiter(rate.Limit(10), 5),
		logger:  logger,
	}
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
