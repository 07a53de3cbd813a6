package ports

import (
	"context"
	"time"

	"newslens/internal/domain"
)

// FeedSource pulls search hits from the Google News RSS surface.
type FeedSource interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Article, error)
}

// LinkDecoder resolves one obfuscated feed link into its canonical URL.
type LinkDecoder interface {
	DecodeLink(ctx context.Context, feedLink string) (string, error)
}

// CaptureOptions tune a single screenshot request.
type CaptureOptions struct {
	Width    int
	Height   int
	FullPage bool
}

// ScreenshotClient captures a page image for an article and returns the
// path of the stored file.
type ScreenshotClient interface {
	Capture(ctx context.Context, pageURL, articleID string, opts CaptureOptions) (string, error)
}

// SearchArchive persists completed search runs for later inspection.
type SearchArchive interface {
	SaveSearch(ctx context.Context, result domain.SearchResult) error
	SeenArticleIDs(ctx context.Context, ids []string) (map[string]bool, error)
}

// Scheduler controls when recurring searches execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
