package usecase

import (
	"context"
	"log/slog"
	"time"

	"newslens/internal/domain"
	"newslens/internal/ports"
)

// WatchDeps wires the cron driver with the search workflow.
type WatchDeps struct {
	Driver  ports.Scheduler
	Search  *Search
	Archive ports.SearchArchive
	Request SearchRequest
	Report  func(result domain.SearchResult, fresh []domain.Article)
	Logger  *slog.Logger
}

// Watch re-runs one search on a schedule. When an archive is configured,
// every run is persisted and the report callback receives only articles
// that earlier runs have not seen.
type Watch struct {
	driver  ports.Scheduler
	search  *Search
	archive ports.SearchArchive
	request SearchRequest
	report  func(result domain.SearchResult, fresh []domain.Article)
	logger  *slog.Logger
}

// NewWatch returns a helper to start/stop the recurring search.
func NewWatch(deps WatchDeps) *Watch {
	return &Watch{
		driver:  deps.Driver,
		search:  deps.Search,
		archive: deps.Archive,
		request: deps.Request,
		report:  deps.Report,
		logger:  deps.Logger,
	}
}

// Start runs the search once right away, then registers it with the driver.
// A failing run is logged and retried at the next scheduled trigger.
func (w *Watch) Start(ctx context.Context) error {
	if w.driver == nil || w.search == nil {
		return nil
	}

	w.runOnce(ctx, time.Now())

	job := func(trigger time.Time) {
		w.runOnce(ctx, trigger)
	}

	return w.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (w *Watch) Stop(ctx context.Context) error {
	if w.driver == nil {
		return nil
	}

	return w.driver.Stop(ctx)
}

func (w *Watch) runOnce(ctx context.Context, trigger time.Time) {
	// Archiving happens here, after the seen-check, so the current run
	// cannot mark its own articles as already seen.
	req := w.request
	req.Save = false

	result, err := w.search.Run(ctx, req)
	if err != nil {
		w.warn("watch run failed", "query", w.request.Query, "error", err)
		return
	}

	fresh, err := w.freshArticles(ctx, result.Articles)
	if err != nil {
		w.warn("seen lookup failed", "error", err)
		fresh = result.Articles
	}

	if w.archive != nil {
		if err := w.archive.SaveSearch(ctx, result); err != nil {
			w.warn("archive save failed", "search", result.ID, "error", err)
		}
	}

	w.debug("watch run finished",
		"trigger", trigger.Format(time.RFC3339),
		"articles", len(result.Articles),
		"fresh", len(fresh))

	if w.report != nil {
		w.report(result, fresh)
	}
}

func (w *Watch) freshArticles(ctx context.Context, articles []domain.Article) ([]domain.Article, error) {
	if w.archive == nil || len(articles) == 0 {
		return articles, nil
	}

	ids := make([]string, len(articles))
	for i, article := range articles {
		ids[i] = article.ID
	}

	seen, err := w.archive.SeenArticleIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	fresh := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		if !seen[article.ID] {
			fresh = append(fresh, article)
		}
	}
	return fresh, nil
}

func (w *Watch) debug(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Debug(msg, args...)
	}
}

func (w *Watch) warn(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Warn(msg, args...)
	}
}
