package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"newslens/internal/domain"
	"newslens/internal/gnews"
	"newslens/internal/ports"
	"newslens/internal/publisher"
)

type fakeFeed struct {
	mu      sync.Mutex
	batches [][]domain.Article
	calls   int
	queries []string
	limits  []int
	err     error
}

func (f *fakeFeed) Search(_ context.Context, query string, limit int) ([]domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, query)
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}

	var batch []domain.Article
	if len(f.batches) > 0 {
		idx := f.calls
		if idx >= len(f.batches) {
			idx = len(f.batches) - 1
		}
		batch = f.batches[idx]
	}
	f.calls++

	// Callers mutate the returned slice in place; keep the fixture intact.
	out := make([]domain.Article, len(batch))
	copy(out, batch)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeShots struct {
	mu      sync.Mutex
	ids     []string
	urls    []string
	failFor map[string]bool
}

func (f *fakeShots) Capture(_ context.Context, pageURL, articleID string, _ ports.CaptureOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ids = append(f.ids, articleID)
	f.urls = append(f.urls, pageURL)
	if f.failFor[articleID] {
		return "", errors.New("renderer unavailable")
	}
	return filepath.Join("shots", articleID+".png"), nil
}

type fakeArchive struct {
	mu      sync.Mutex
	saved   []domain.SearchResult
	saveErr error
	seenErr error
}

func (f *fakeArchive) SaveSearch(_ context.Context, result domain.SearchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, result)
	return nil
}

func (f *fakeArchive) SeenArticleIDs(_ context.Context, ids []string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seenErr != nil {
		return nil, f.seenErr
	}

	requested := make(map[string]bool, len(ids))
	for _, id := range ids {
		requested[id] = true
	}

	seen := map[string]bool{}
	for _, result := range f.saved {
		for _, article := range result.Articles {
			if requested[article.ID] {
				seen[article.ID] = true
			}
		}
	}
	return seen, nil
}

func newSearchBatch(decoder *fakeDecoder) *BatchDecoder {
	bd := NewBatchDecoder(decoder, publisher.NewResolver(publisher.DefaultDictionary(), nil), nil)
	bd.pause = 0
	return bd
}

func TestSearchRunHappyPath(t *testing.T) {
	t.Parallel()

	articles := batchArticles(6)
	// A repeated feed link collapses during deduplication.
	articles[3].FeedLink = articles[0].FeedLink
	articles[3].ID = "dup-copy"

	feed := &fakeFeed{batches: [][]domain.Article{articles}}
	search := NewSearch(SearchDeps{
		Source: feed,
		Batch:  newSearchBatch(&fakeDecoder{}),
	})

	result, err := search.Run(context.Background(), SearchRequest{Query: "quantum computing", Limit: 4})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if feed.queries[0] != "quantum computing" {
		t.Fatalf("feed queried with %q", feed.queries[0])
	}
	if feed.limits[0] != 8 {
		t.Fatalf("expected over-fetch limit 8, got %d", feed.limits[0])
	}
	if len(result.ID) != 36 {
		t.Fatalf("result ID %q is not a UUID", result.ID)
	}
	if result.Query != "quantum computing" {
		t.Fatalf("result query = %q", result.Query)
	}
	if result.Stats.Total != 6 || result.Stats.Successful != 6 {
		t.Fatalf("unexpected stats: %+v", result.Stats)
	}
	if len(result.Articles) != 4 {
		t.Fatalf("expected 4 articles after dedup and truncation, got %d", len(result.Articles))
	}
	// The duplicate at index 3 is gone, so index 4 of the feed moves up.
	if result.Articles[3].ID != "art-04" {
		t.Fatalf("unexpected fourth article: %+v", result.Articles[3])
	}
	for i, article := range result.Articles {
		if article.ResolvedURL == "" || article.Domain == "" {
			t.Fatalf("article %d is missing annotations: %+v", i, article)
		}
	}
	if result.StartedAt.IsZero() || result.Elapsed <= 0 {
		t.Fatalf("timing fields not populated: %+v", result)
	}
}

func TestSearchRunFeedFailureIsFatal(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{err: errors.New("upstream 503")}
	search := NewSearch(SearchDeps{Source: feed, Batch: newSearchBatch(&fakeDecoder{})})

	_, err := search.Run(context.Background(), SearchRequest{Query: "ai", Limit: 5})
	if err == nil {
		t.Fatal("expected the feed failure to propagate")
	}
	if !strings.Contains(err.Error(), "fetch feed") {
		t.Fatalf("error %q does not mention the feed fetch", err)
	}
}

func TestSearchRunPartialDecodeFailuresAreNotFatal(t *testing.T) {
	t.Parallel()

	articles := batchArticles(4)
	feed := &fakeFeed{batches: [][]domain.Article{articles}}
	decoder := &fakeDecoder{
		fn: func(_ context.Context, feedLink string) (string, error) {
			if strings.HasSuffix(feedLink, "token-01") {
				return "", &gnews.DecodeError{Stage: gnews.StageResolve, Err: gnews.ErrResolve}
			}
			return resolvedFor(feedLink), nil
		},
	}
	search := NewSearch(SearchDeps{Source: feed, Batch: newSearchBatch(decoder)})

	result, err := search.Run(context.Background(), SearchRequest{Query: "ai", Limit: 10})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Stats.Successful != 3 || result.Stats.Failed != 1 {
		t.Fatalf("unexpected stats: %+v", result.Stats)
	}

	var failed *domain.Article
	for i := range result.Articles {
		if result.Articles[i].ResolutionError != "" {
			failed = &result.Articles[i]
		}
	}
	if failed == nil {
		t.Fatal("the failed article should still appear in the result")
	}
	if failed.Domain == "" {
		t.Fatal("failed article is missing its fallback domain")
	}
}

func TestSearchRunScreenshots(t *testing.T) {
	t.Parallel()

	articles := batchArticles(3)
	feed := &fakeFeed{batches: [][]domain.Article{articles}}
	decoder := &fakeDecoder{
		fn: func(_ context.Context, feedLink string) (string, error) {
			if strings.HasSuffix(feedLink, "token-00") {
				return "", &gnews.DecodeError{Stage: gnews.StageParams, Err: gnews.ErrParamsNotFound}
			}
			return resolvedFor(feedLink), nil
		},
	}
	shots := &fakeShots{failFor: map[string]bool{"art-01": true}}
	search := NewSearch(SearchDeps{
		Source:      feed,
		Batch:       newSearchBatch(decoder),
		Screenshots: shots,
	})

	result, err := search.Run(context.Background(), SearchRequest{Query: "ai", Limit: 10, Screenshots: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Every article reaches the capture service; the unresolved one is
	// captured against its raw feed link.
	if len(shots.ids) != 3 {
		t.Fatalf("expected 3 capture calls, got %v", shots.ids)
	}
	captured := map[string]string{}
	for i, id := range shots.ids {
		captured[id] = shots.urls[i]
	}
	if captured["art-00"] != articles[0].FeedLink {
		t.Fatalf("unresolved article captured with %q, want feed link %q", captured["art-00"], articles[0].FeedLink)
	}
	if captured["art-02"] != "https://www.example.com/token-02" {
		t.Fatalf("resolved article captured with %q", captured["art-02"])
	}

	byID := map[string]domain.Article{}
	for _, article := range result.Articles {
		byID[article.ID] = article
	}
	if byID["art-00"].ScreenshotPath == "" || byID["art-02"].ScreenshotPath == "" {
		t.Fatal("successful captures should record a path")
	}
	if byID["art-01"].ScreenshotPath != "" {
		t.Fatal("failed capture must not record a path")
	}
}

func TestSearchRunSavesToArchive(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{batches: [][]domain.Article{batchArticles(2)}}
	archive := &fakeArchive{}
	search := NewSearch(SearchDeps{
		Source:  feed,
		Batch:   newSearchBatch(&fakeDecoder{}),
		Archive: archive,
	})

	result, err := search.Run(context.Background(), SearchRequest{Query: "ai", Limit: 5, Save: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(archive.saved) != 1 {
		t.Fatalf("expected 1 archived run, got %d", len(archive.saved))
	}
	if archive.saved[0].ID != result.ID {
		t.Fatalf("archived ID %q differs from result ID %q", archive.saved[0].ID, result.ID)
	}
}

func TestSearchRunArchiveFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{batches: [][]domain.Article{batchArticles(2)}}
	archive := &fakeArchive{saveErr: errors.New("connection refused")}
	search := NewSearch(SearchDeps{
		Source:  feed,
		Batch:   newSearchBatch(&fakeDecoder{}),
		Archive: archive,
	})

	if _, err := search.Run(context.Background(), SearchRequest{Query: "ai", Limit: 5, Save: true}); err != nil {
		t.Fatalf("archive failure should not fail the search: %v", err)
	}
}

func TestSearchRunDefaultLimit(t *testing.T) {
	t.Parallel()

	feed := &fakeFeed{batches: [][]domain.Article{batchArticles(3)}}
	search := NewSearch(SearchDeps{Source: feed, Batch: newSearchBatch(&fakeDecoder{})})

	if _, err := search.Run(context.Background(), SearchRequest{Query: "ai"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if feed.limits[0] != 2*defaultSearchLimit {
		t.Fatalf("expected over-fetch of the default limit, got %d", feed.limits[0])
	}
}

func TestOverFetchLimitCap(t *testing.T) {
	t.Parallel()

	if got := overFetchLimit(30); got != 60 {
		t.Fatalf("overFetchLimit(30) = %d, want 60", got)
	}
	if got := overFetchLimit(80); got != maxFetchLimit {
		t.Fatalf("overFetchLimit(80) = %d, want the cap", got)
	}
}
