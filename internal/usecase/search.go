package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"newslens/internal/dedupe"
	"newslens/internal/domain"
	"newslens/internal/ports"
)

const (
	defaultSearchLimit = 20

	// maxFetchLimit caps the over-fetch so a huge --limit cannot turn one
	// search into hundreds of feed entries.
	maxFetchLimit = 100
)

// SearchRequest carries the parameters of one search invocation.
type SearchRequest struct {
	Query       string
	Limit       int
	Concurrency int
	Screenshots bool
	Save        bool
}

// SearchDeps wires the driven adapters into the search workflow.
type SearchDeps struct {
	Source      ports.FeedSource
	Batch       *BatchDecoder
	Screenshots ports.ScreenshotClient
	Archive     ports.SearchArchive
	ShotOptions ports.CaptureOptions
	Logger      *slog.Logger
}

// Search implements the fetch-decode-annotate workflow behind both the
// one-shot CLI command and watch mode.
type Search struct {
	source      ports.FeedSource
	batch       *BatchDecoder
	screenshots ports.ScreenshotClient
	archive     ports.SearchArchive
	shotOptions ports.CaptureOptions
	logger      *slog.Logger
}

// NewSearch constructs the orchestration component.
func NewSearch(deps SearchDeps) *Search {
	return &Search{
		source:      deps.Source,
		batch:       deps.Batch,
		screenshots: deps.Screenshots,
		archive:     deps.Archive,
		shotOptions: deps.ShotOptions,
		logger:      deps.Logger,
	}
}

// Run executes one search: fetch feed entries, resolve their links in
// batches, deduplicate, and annotate. Partial decode failures produce a
// non-error result; only the feed fetch itself is fatal.
func (s *Search) Run(ctx context.Context, req SearchRequest) (domain.SearchResult, error) {
	started := time.Now()

	if s.source == nil {
		return domain.SearchResult{}, errors.New("no feed source configured")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	// Fetch more than requested so deduplication losses do not leave the
	// caller short.
	articles, err := s.source.Search(ctx, req.Query, overFetchLimit(limit))
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("fetch feed: %w", err)
	}
	s.debug("feed fetched", "query", req.Query, "articles", len(articles))

	stats := domain.BatchStats{Total: len(articles)}
	if s.batch != nil {
		stats = s.batch.DecodeBatch(ctx, articles, req.Concurrency)
	}

	articles = dedupe.Filter(articles)
	if len(articles) > limit {
		articles = articles[:limit]
	}

	if req.Screenshots {
		s.captureScreenshots(ctx, articles)
	}

	result := domain.SearchResult{
		ID:        uuid.NewString(),
		Query:     req.Query,
		Articles:  articles,
		Stats:     stats,
		StartedAt: started,
		Elapsed:   time.Since(started),
	}

	if req.Save && s.archive != nil {
		if err := s.archive.SaveSearch(ctx, result); err != nil {
			s.warn("archive save failed", "search", result.ID, "error", err)
		}
	}

	return result, nil
}

func (s *Search) captureScreenshots(ctx context.Context, articles []domain.Article) {
	if s.screenshots == nil {
		return
	}

	for i := range articles {
		path, err := s.screenshots.Capture(ctx, articles[i].BestURL(), articles[i].ID, s.shotOptions)
		if err != nil {
			s.warn("screenshot failed", "article", articles[i].ID, "error", err)
			continue
		}
		articles[i].ScreenshotPath = path
	}
}

func (s *Search) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Search) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func overFetchLimit(limit int) int {
	fetch := limit * 2
	if fetch > maxFetchLimit {
		fetch = maxFetchLimit
	}
	return fetch
}
