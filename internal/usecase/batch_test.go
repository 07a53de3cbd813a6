package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"newslens/internal/domain"
	"newslens/internal/gnews"
	"newslens/internal/publisher"
)

type fakeDecoder struct {
	mu          sync.Mutex
	inFlight    int
	maxInFlight int
	calls       int
	jitter      func(feedLink string) time.Duration
	fn          func(ctx context.Context, feedLink string) (string, error)
}

func (d *fakeDecoder) DecodeLink(ctx context.Context, feedLink string) (string, error) {
	d.mu.Lock()
	d.calls++
	d.inFlight++
	if d.inFlight > d.maxInFlight {
		d.maxInFlight = d.inFlight
	}
	d.mu.Unlock()

	if d.jitter != nil {
		if sleep := d.jitter(feedLink); sleep > 0 {
			time.Sleep(sleep)
		}
	}

	d.mu.Lock()
	d.inFlight--
	d.mu.Unlock()

	if d.fn != nil {
		return d.fn(ctx, feedLink)
	}
	return resolvedFor(feedLink), nil
}

func resolvedFor(feedLink string) string {
	segments := strings.Split(feedLink, "/")
	return "https://www.example.com/" + segments[len(segments)-1]
}

func batchArticles(n int) []domain.Article {
	articles := make([]domain.Article, n)
	for i := range articles {
		articles[i] = domain.Article{
			ID:         fmt.Sprintf("art-%02d", i),
			Title:      fmt.Sprintf("Story%02d number with several sizable words", i),
			FeedLink:   fmt.Sprintf("https://news.google.com/rss/articles/token-%02d", i),
			SourceName: "Reuters",
		}
	}
	return articles
}

func newTestBatchDecoder(decoder *fakeDecoder) *BatchDecoder {
	resolver := publisher.NewResolver(publisher.DefaultDictionary(), nil)
	bd := NewBatchDecoder(decoder, resolver, nil)
	bd.pause = time.Millisecond
	return bd
}

func TestDefaultConcurrency(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total int
		want  int
	}{
		{total: 1, want: 3},
		{total: 10, want: 3},
		{total: 11, want: 5},
		{total: 64, want: 5},
	}
	for _, tc := range cases {
		if got := defaultConcurrency(tc.total); got != tc.want {
			t.Fatalf("defaultConcurrency(%d) = %d, want %d", tc.total, got, tc.want)
		}
	}
}

func TestDecodeBatchResolvesAllInOrder(t *testing.T) {
	t.Parallel()

	// Earlier items sleep longer, so completion order within each group is
	// the reverse of input order; annotations must still land by index.
	decoder := &fakeDecoder{jitter: func(feedLink string) time.Duration {
		idx := 0
		if i := strings.LastIndex(feedLink, "-"); i >= 0 {
			idx, _ = strconv.Atoi(feedLink[i+1:])
		}
		return time.Duration(12-idx) * time.Millisecond
	}}
	bd := newTestBatchDecoder(decoder)
	bd.pause = 15 * time.Millisecond
	articles := batchArticles(12)

	stats := bd.DecodeBatch(context.Background(), articles, 5)

	if stats.Total != 12 || stats.Successful != 12 || stats.Failed != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if decoder.calls != 12 {
		t.Fatalf("expected 12 decode calls, got %d", decoder.calls)
	}
	if decoder.maxInFlight > 5 {
		t.Fatalf("concurrency ceiling exceeded: %d in flight", decoder.maxInFlight)
	}
	// Twelve articles at concurrency five means two inter-group pauses.
	if stats.Elapsed < 2*bd.pause {
		t.Fatalf("elapsed %v is shorter than two group pauses", stats.Elapsed)
	}
	for i, article := range articles {
		want := resolvedFor(fmt.Sprintf("https://news.google.com/rss/articles/token-%02d", i))
		if article.ResolvedURL != want {
			t.Fatalf("article %d resolved to %q, want %q", i, article.ResolvedURL, want)
		}
		if article.Domain != "example.com" {
			t.Fatalf("article %d domain = %q, want example.com", i, article.Domain)
		}
		if article.ResolutionError != "" {
			t.Fatalf("article %d carries unexpected error %q", i, article.ResolutionError)
		}
	}
}

func TestDecodeBatchToleratesFailures(t *testing.T) {
	t.Parallel()

	failing := map[string]bool{
		"https://news.google.com/rss/articles/token-01": true,
		"https://news.google.com/rss/articles/token-03": true,
	}
	decoder := &fakeDecoder{
		fn: func(_ context.Context, feedLink string) (string, error) {
			if failing[feedLink] {
				return "", &gnews.DecodeError{Stage: gnews.StageParams, Err: gnews.ErrParamsNotFound}
			}
			return resolvedFor(feedLink), nil
		},
	}
	bd := newTestBatchDecoder(decoder)
	articles := batchArticles(5)

	stats := bd.DecodeBatch(context.Background(), articles, 2)

	if stats.Total != 5 || stats.Successful != 3 || stats.Failed != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	for _, i := range []int{1, 3} {
		if articles[i].ResolvedURL != "" {
			t.Fatalf("failed article %d should keep an empty resolved URL", i)
		}
		if !strings.Contains(articles[i].ResolutionError, "params") {
			t.Fatalf("article %d error %q lacks the failure stage", i, articles[i].ResolutionError)
		}
		if articles[i].Domain != "reuters.com" {
			t.Fatalf("failed article %d domain = %q, want the source fallback", i, articles[i].Domain)
		}
	}
	// Articles after the failures still resolve.
	if articles[4].ResolvedURL == "" {
		t.Fatal("article 4 was not decoded after earlier failures")
	}
}

func TestDecodeBatchStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	decoder := &fakeDecoder{
		fn: func(_ context.Context, feedLink string) (string, error) {
			cancel()
			return resolvedFor(feedLink), nil
		},
	}
	bd := newTestBatchDecoder(decoder)
	articles := batchArticles(6)

	stats := bd.DecodeBatch(ctx, articles, 2)

	if stats.Successful != 2 || stats.Failed != 4 {
		t.Fatalf("unexpected stats after cancel: %+v", stats)
	}
	if decoder.calls != 2 {
		t.Fatalf("expected decoding to stop after the first group, got %d calls", decoder.calls)
	}
	for i := 2; i < 6; i++ {
		if articles[i].ResolutionError != context.Canceled.Error() {
			t.Fatalf("article %d error = %q, want the context error", i, articles[i].ResolutionError)
		}
		if articles[i].Domain != "reuters.com" {
			t.Fatalf("cancelled article %d still needs a domain, got %q", i, articles[i].Domain)
		}
	}
}

func TestDecodeBatchEmptyInput(t *testing.T) {
	t.Parallel()

	bd := newTestBatchDecoder(&fakeDecoder{})

	stats := bd.DecodeBatch(context.Background(), nil, 5)
	if stats.Total != 0 || stats.Successful != 0 || stats.Failed != 0 {
		t.Fatalf("unexpected stats for empty input: %+v", stats)
	}
}

func TestDecodeBatchWithoutDecoder(t *testing.T) {
	t.Parallel()

	resolver := publisher.NewResolver(publisher.DefaultDictionary(), nil)
	bd := NewBatchDecoder(nil, resolver, nil)
	articles := batchArticles(3)

	stats := bd.DecodeBatch(context.Background(), articles, 2)

	if stats.Total != 3 || stats.Failed != 3 || stats.Successful != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	for i, article := range articles {
		if article.ResolutionError == "" {
			t.Fatalf("article %d is missing a resolution error", i)
		}
	}
}
