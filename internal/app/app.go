package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"newslens/internal/config"
	"newslens/internal/domain"
	"newslens/internal/gnews"
	"newslens/internal/infrastructure/feed"
	"newslens/internal/infrastructure/scheduler"
	"newslens/internal/infrastructure/screenshot"
	"newslens/internal/infrastructure/storage"
	"newslens/internal/logging"
	"newslens/internal/ports"
	"newslens/internal/publisher"
	"newslens/internal/usecase"
)

// Application wires configuration to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	decoder  *gnews.Client
	resolver *publisher.Resolver
	search   *usecase.Search
	archive  ports.SearchArchive
	db       *sql.DB
}

// New builds a runnable application instance. The archive connection is
// dialed here when a DSN is configured, so ctx bounds the startup ping.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(os.Stderr, cfg.Logging.Level)
	}

	dict := publisher.DefaultDictionary()
	if cfg.Publisher.Dictionary != "" {
		loaded, err := publisher.LoadDictionaryFile(cfg.Publisher.Dictionary)
		if err != nil {
			return nil, fmt.Errorf("load publisher dictionary: %w", err)
		}
		dict = loaded
	}
	resolver := publisher.NewResolver(dict, baseLogger.With("component", "publisher"))

	httpClient := &http.Client{Timeout: cfg.Decode.Timeout()}
	decoder := gnews.NewClient(httpClient, baseLogger.With("component", "gnews"))

	source := feed.NewGoogleNews(nil, cfg.Feed.Language, cfg.Feed.Country,
		baseLogger.With("component", "feed"))

	batch := usecase.NewBatchDecoder(decoder, resolver, baseLogger.With("component", "batch"))

	var shots ports.ScreenshotClient
	if cfg.Screenshot.Endpoint != "" {
		shots = screenshot.NewClient(cfg.Screenshot.Endpoint, cfg.Screenshot.APIKey,
			cfg.Screenshot.OutputDir, baseLogger.With("component", "screenshot"))
	}

	application := &Application{
		cfg:      cfg,
		logger:   baseLogger,
		decoder:  decoder,
		resolver: resolver,
	}

	if cfg.Archive.DSN != "" {
		db, err := storage.Open(ctx, cfg.Archive.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect archive: %w", err)
		}
		repo := storage.NewPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("prepare archive schema: %w", err)
		}
		application.db = db
		application.archive = repo
	}

	application.search = usecase.NewSearch(usecase.SearchDeps{
		Source:      source,
		Batch:       batch,
		Screenshots: shots,
		Archive:     application.archive,
		ShotOptions: ports.CaptureOptions{
			Width:    cfg.Screenshot.Width,
			Height:   cfg.Screenshot.Height,
			FullPage: cfg.Screenshot.FullPage,
		},
		Logger: baseLogger.With("component", "search"),
	})

	return application, nil
}

// RunSearch executes one search with config-level defaults applied.
func (a *Application) RunSearch(ctx context.Context, req usecase.SearchRequest) (domain.SearchResult, error) {
	if req.Concurrency <= 0 {
		req.Concurrency = a.cfg.Decode.Concurrency
	}
	if req.Save && a.archive == nil {
		a.logger.Warn("save requested but archiving is not configured")
	}
	return a.search.Run(ctx, req)
}

// DecodeLink resolves a single feed link and annotates its domain.
func (a *Application) DecodeLink(ctx context.Context, feedLink string) (domain.Article, error) {
	article := domain.Article{FeedLink: feedLink}

	resolved, err := a.decoder.DecodeLink(ctx, feedLink)
	if err != nil {
		return article, err
	}

	article.ResolvedURL = resolved
	article.Domain = a.resolver.Resolve(article)
	return article, nil
}

// RunWatch re-runs the search on a cron schedule until ctx is cancelled.
// An empty cronSpec falls back to the configured expression.
func (a *Application) RunWatch(ctx context.Context, cronSpec string, req usecase.SearchRequest, report func(domain.SearchResult, []domain.Article)) error {
	if cronSpec == "" {
		cronSpec = a.cfg.Watch.CronExpression
	}
	if req.Concurrency <= 0 {
		req.Concurrency = a.cfg.Decode.Concurrency
	}

	driver := scheduler.NewCronScheduler(cronSpec, a.cfg.Watch.Location(),
		a.logger.With("component", "scheduler"))
	watch := usecase.NewWatch(usecase.WatchDeps{
		Driver:  driver,
		Search:  a.search,
		Archive: a.archive,
		Request: req,
		Report:  report,
		Logger:  a.logger.With("component", "watch"),
	})

	if err := watch.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return watch.Stop(stopCtx)
}

// Close releases the archive connection when one was opened.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
