package usecase

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"newslens/internal/domain"
	"newslens/internal/gnews"
	"newslens/internal/ports"
	"newslens/internal/publisher"
)

const (
	// groupPause spaces decode groups apart so the batchexecute endpoint
	// sees a paced request stream instead of one burst per batch.
	groupPause = 200 * time.Millisecond

	smallBatchThreshold   = 10
	smallBatchConcurrency = 3
	largeBatchConcurrency = 5
)

// BatchDecoder resolves feed links for a slice of articles in bounded
// concurrent groups.
type BatchDecoder struct {
	decoder  ports.LinkDecoder
	resolver *publisher.Resolver
	pause    time.Duration
	logger   *slog.Logger
}

// NewBatchDecoder constructs the batch resolution component.
func NewBatchDecoder(decoder ports.LinkDecoder, resolver *publisher.Resolver, logger *slog.Logger) *BatchDecoder {
	return &BatchDecoder{
		decoder:  decoder,
		resolver: resolver,
		pause:    groupPause,
		logger:   logger,
	}
}

// DecodeBatch resolves every article in place and reports aggregate stats.
// Articles are processed in contiguous groups of at most concurrency
// goroutines; a non-positive concurrency picks a default from the batch
// size. Individual failures never abort the batch: the failing article
// keeps its feed link, records the stage-tagged error, and still receives
// a publisher domain guess.
func (b *BatchDecoder) DecodeBatch(ctx context.Context, articles []domain.Article, concurrency int) domain.BatchStats {
	started := time.Now()
	stats := domain.BatchStats{Total: len(articles)}

	if len(articles) == 0 {
		stats.Elapsed = time.Since(started)
		return stats
	}

	if b.decoder == nil {
		for i := range articles {
			articles[i].ResolutionError = "no link decoder configured"
			articles[i].Domain = b.domainFor(articles[i])
		}
		stats.Failed = len(articles)
		stats.Elapsed = time.Since(started)
		return stats
	}

	if concurrency <= 0 {
		concurrency = defaultConcurrency(len(articles))
	}

	var successful, failed atomic.Int64
	for start := 0; start < len(articles); start += concurrency {
		if start > 0 {
			select {
			case <-time.After(b.pause):
			case <-ctx.Done():
			}
		}

		if err := ctx.Err(); err != nil {
			for i := start; i < len(articles); i++ {
				articles[i].ResolutionError = err.Error()
				articles[i].Domain = b.domainFor(articles[i])
				failed.Add(1)
			}
			break
		}

		end := start + concurrency
		if end > len(articles) {
			end = len(articles)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(article *domain.Article) {
				defer wg.Done()
				b.decodeOne(ctx, article, &successful, &failed)
			}(&articles[i])
		}
		wg.Wait()
	}

	stats.Successful = int(successful.Load())
	stats.Failed = int(failed.Load())
	stats.Elapsed = time.Since(started)
	return stats
}

func (b *BatchDecoder) decodeOne(ctx context.Context, article *domain.Article, successful, failed *atomic.Int64) {
	resolved, err := b.decoder.DecodeLink(ctx, article.FeedLink)
	if err != nil {
		failed.Add(1)
		article.ResolutionError = err.Error()
		article.Domain = b.domainFor(*article)
		b.debug("decode failed",
			"article", article.ID,
			"stage", string(gnews.FailureStage(err)),
			"error", err)
		return
	}

	successful.Add(1)
	article.ResolvedURL = resolved
	article.Domain = b.domainFor(*article)
	b.debug("decode succeeded", "article", article.ID, "domain", article.Domain)
}

func (b *BatchDecoder) domainFor(article domain.Article) string {
	if b.resolver == nil {
		return article.Domain
	}
	return b.resolver.Resolve(article)
}

func (b *BatchDecoder) debug(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Debug(msg, args...)
	}
}

func defaultConcurrency(total int) int {
	if total <= smallBatchThreshold {
		return smallBatchConcurrency
	}
	return largeBatchConcurrency
}
