package screenshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"newslens/internal/ports"
	"newslens/internal/retry"
)

// Client captures page images through an external rendering API and stores
// them on disk, one file per article.
type Client struct {
	endpoint  string
	apiKey    string
	outputDir string
	http      *http.Client
	retry     retry.Config
	logger    *slog.Logger
}

var _ ports.ScreenshotClient = (*Client)(nil)

// NewClient creates a reusable HTTP client; rendered files land in outputDir.
func NewClient(endpoint, apiKey, outputDir string, logger *slog.Logger) *Client {
	return &Client{
		endpoint:  endpoint,
		apiKey:    apiKey,
		outputDir: outputDir,
		http:      &http.Client{Timeout: 30 * time.Second},
		retry:     retry.Config{Attempts: 3, InitialDelay: time.Second, MaxDelay: 5 * time.Second},
		logger:    logger,
	}
}

// Capture renders pageURL and writes the image to <outputDir>/<articleID>.png.
// Transient API failures are retried before giving up; the decode pipeline
// itself never retries, so this is the only place a request runs twice.
func (c *Client) Capture(ctx context.Context, pageURL, articleID string, opts ports.CaptureOptions) (string, error) {
	if c.endpoint == "" {
		return "", fmt.Errorf("screenshot client misconfigured: no endpoint")
	}
	if articleID == "" {
		return "", fmt.Errorf("article id is required")
	}

	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 800
	}

	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	var image []byte
	err := retry.Do(ctx, c.retry, func(ctx context.Context) error {
		var reqErr error
		image, reqErr = c.render(ctx, pageURL, opts)
		return reqErr
	})
	if err != nil {
		return "", fmt.Errorf("render %s: %w", pageURL, err)
	}

	path := filepath.Join(c.outputDir, articleID+".png")
	if err := os.WriteFile(path, image, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}

	c.debug("screenshot stored", "path", path, "bytes", len(image))
	return path, nil
}

func (c *Client) render(ctx context.Context, pageURL string, opts ports.CaptureOptions) ([]byte, error) {
	body, err := json.Marshal(map[string]any{
		"url":      pageURL,
		"width":    opts.Width,
		"height":   opts.Height,
		"fullPage": opts.FullPage,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("render api %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("render api returned an empty image")
	}

	return image, nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
