package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/rss"

	"newslens/internal/domain"
	"newslens/internal/ports"
)

const (
	defaultBaseURL = "https://news.google.com/rss"

	// Google News throttles obvious bot agents on the RSS surface too.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36"
)

// GoogleNews pulls search results from the Google News RSS surface. The
// typed RSS parser is used instead of the universal one because only it
// exposes the per-item <source> element carrying the publisher name.
type GoogleNews struct {
	baseURL  string
	language string
	country  string
	http     *http.Client
	parser   *rss.Parser
	logger   *slog.Logger
}

var _ ports.FeedSource = (*GoogleNews)(nil)

// NewGoogleNews wires an HTTP client; nil gets a 10s-timeout default.
// Language and country default to en-US / US.
func NewGoogleNews(client *http.Client, language, country string, logger *slog.Logger) *GoogleNews {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if language == "" {
		language = "en-US"
	}
	if country == "" {
		country = "US"
	}
	return &GoogleNews{
		baseURL:  defaultBaseURL,
		language: language,
		country:  country,
		http:     client,
		parser:   &rss.Parser{},
		logger:   logger,
	}
}

// Search queries the RSS search endpoint and maps items to articles. An
// empty query falls back to the top-headlines feed; limit <= 0 keeps
// everything the feed returns.
func (g *GoogleNews) Search(ctx context.Context, query string, limit int) ([]domain.Article, error) {
	feedURL := g.buildURL(query)
	g.debug("fetch feed", "url", feedURL)

	parsed, err := g.fetchFeed(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	articles := make([]domain.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		article := itemToArticle(item)
		if article.FeedLink == "" || article.Title == "" {
			continue
		}
		articles = append(articles, article)
		if limit > 0 && len(articles) == limit {
			break
		}
	}

	g.debug("feed fetched", "items", len(parsed.Items), "articles", len(articles))
	return articles, nil
}

func (g *GoogleNews) buildURL(query string) string {
	params := url.Values{}
	params.Set("hl", g.language)
	params.Set("gl", g.country)
	params.Set("ceid", g.country+":"+primarySubtag(g.language))

	if query == "" {
		return g.baseURL + "?" + params.Encode()
	}
	params.Set("q", query)
	return g.baseURL + "/search?" + params.Encode()
}

func (g *GoogleNews) fetchFeed(ctx context.Context, feedURL string) (*rss.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	parsed, err := g.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	return parsed, nil
}

func itemToArticle(item *rss.Item) domain.Article {
	title, sourceName := splitTitle(item.Title)
	if item.Source != nil && strings.TrimSpace(item.Source.Title) != "" {
		sourceName = strings.TrimSpace(item.Source.Title)
	}

	var published time.Time
	if item.PubDateParsed != nil {
		published = *item.PubDateParsed
	}

	article := domain.Article{
		Title:       title,
		Description: strings.TrimSpace(item.Description),
		FeedLink:    strings.TrimSpace(item.Link),
		SourceName:  sourceName,
		PublishedAt: published,
	}
	if item.GUID != nil {
		article.GUID = strings.TrimSpace(item.GUID.Value)
	}
	article.ID = domain.NewID(article.Title, article.FeedLink)

	return article
}

// splitTitle separates the publisher suffix Google News appends to item
// titles ("Headline - Publisher"). The rightmost separator wins so
// headlines containing dashes stay intact.
func splitTitle(raw string) (title, source string) {
	title = strings.TrimSpace(raw)
	if i := strings.LastIndex(title, " - "); i > 0 {
		return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
	}
	return title, ""
}

func primarySubtag(language string) string {
	if i := strings.IndexAny(language, "-_"); i > 0 {
		return language[:i]
	}
	return language
}

func (g *GoogleNews) debug(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Debug(msg, args...)
	}
}
