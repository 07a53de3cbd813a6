package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"newslens/internal/domain"
	"newslens/internal/ports"
)

//go:embed schema.sql
var schemaSQL string

// PostgresRepository archives completed search runs into Postgres.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.SearchArchive = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the archive tables when they do not exist yet.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// SaveSearch stores the search row and one row per article in a single
// transaction; article rows keep their batch position so the original
// ordering survives round trips.
func (r *PostgresRepository) SaveSearch(ctx context.Context, result domain.SearchResult) error {
	if r.db == nil {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := r.builder.
		Insert("searches").
		Columns("id", "query", "total", "successful", "failed", "elapsed_ms", "started_at").
		Values(result.ID, result.Query, result.Stats.Total, result.Stats.Successful, result.Stats.Failed, result.Elapsed.Milliseconds(), result.StartedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build search insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert search: %w", err)
	}

	if len(result.Articles) > 0 {
		insert := r.builder.
			Insert("search_articles").
			Columns("search_id", "position", "article_id", "title", "feed_link",
				"guid", "resolved_url", "domain", "source_name", "published_at",
				"resolution_error", "screenshot_path")
		for i, article := range result.Articles {
			insert = insert.Values(result.ID, i, article.ID, article.Title, article.FeedLink,
				article.GUID, article.ResolvedURL, article.Domain, article.SourceName,
				article.PublishedAt, article.ResolutionError, article.ScreenshotPath)
		}

		query, args, err = insert.ToSql()
		if err != nil {
			return fmt.Errorf("build article insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert articles: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit search: %w", err)
	}
	return nil
}

// SeenArticleIDs returns which of the given article IDs already appear in
// the archive. Recurring searches use it to report only fresh articles.
func (r *PostgresRepository) SeenArticleIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	if r.db == nil || len(ids) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := r.builder.
		Select("DISTINCT article_id").
		From("search_articles").
		Where(sq.Expr("article_id = ANY(?)", pq.StringArray(ids))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build seen query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query seen: %w", err)
	}

	seen := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan id: %w", err)
		}
		seen[id] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return seen, nil
}
