package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"newslens/internal/domain"
)

type articlePayload struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	FeedLink        string `json:"feedLink"`
	GUID            string `json:"guid,omitempty"`
	ResolvedURL     string `json:"resolvedUrl,omitempty"`
	Domain          string `json:"domain"`
	SourceName      string `json:"sourceName,omitempty"`
	PublishedAt     string `json:"publishedAt,omitempty"`
	ResolutionError string `json:"resolutionError,omitempty"`
	ScreenshotPath  string `json:"screenshotPath,omitempty"`
}

type searchPayload struct {
	ID         string           `json:"id"`
	Query      string           `json:"query"`
	Articles   []articlePayload `json:"articles"`
	Total      int              `json:"total"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	StartedAt  string           `json:"startedAt"`
	ElapsedMS  int64            `json:"elapsedMs"`
}

func articlePayloadFrom(article domain.Article) articlePayload {
	payload := articlePayload{
		ID:              article.ID,
		Title:           article.Title,
		Description:     article.Description,
		FeedLink:        article.FeedLink,
		GUID:            article.GUID,
		ResolvedURL:     article.ResolvedURL,
		Domain:          article.Domain,
		SourceName:      article.SourceName,
		ResolutionError: article.ResolutionError,
		ScreenshotPath:  article.ScreenshotPath,
	}
	if !article.PublishedAt.IsZero() {
		payload.PublishedAt = article.PublishedAt.Format(time.RFC3339)
	}
	return payload
}

func searchPayloadFrom(result domain.SearchResult) searchPayload {
	articles := make([]articlePayload, 0, len(result.Articles))
	for _, article := range result.Articles {
		articles = append(articles, articlePayloadFrom(article))
	}
	return searchPayload{
		ID:         result.ID,
		Query:      result.Query,
		Articles:   articles,
		Total:      result.Stats.Total,
		Successful: result.Stats.Successful,
		Failed:     result.Stats.Failed,
		StartedAt:  result.StartedAt.Format(time.RFC3339),
		ElapsedMS:  result.Elapsed.Milliseconds(),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderSearchResult(w io.Writer, result domain.SearchResult) {
	label := result.Query
	if label == "" {
		label = "top headlines"
	}
	fmt.Fprintf(w, "%s: %d articles (%d resolved, %d failed) in %s\n\n",
		label, len(result.Articles), result.Stats.Successful, result.Stats.Failed,
		result.Elapsed.Round(time.Millisecond))

	for i, article := range result.Articles {
		renderArticle(w, i+1, article)
	}
}

func renderWatchRun(w io.Writer, result domain.SearchResult, fresh []domain.Article) {
	stamp := result.StartedAt.Format("15:04:05")
	if len(fresh) == 0 {
		fmt.Fprintf(w, "[%s] no new articles (%d total)\n", stamp, len(result.Articles))
		return
	}

	fmt.Fprintf(w, "[%s] %d new of %d articles\n\n", stamp, len(fresh), len(result.Articles))
	for i, article := range fresh {
		renderArticle(w, i+1, article)
	}
}

func renderArticle(w io.Writer, index int, article domain.Article) {
	fmt.Fprintf(w, "%2d. [%s] %s\n", index, article.Domain, article.Title)
	fmt.Fprintf(w, "    %s\n", article.BestURL())
	if article.SourceName != "" && !article.PublishedAt.IsZero() {
		fmt.Fprintf(w, "    %s, %s\n", article.SourceName, article.PublishedAt.Format("2006-01-02 15:04"))
	} else if article.SourceName != "" {
		fmt.Fprintf(w, "    %s\n", article.SourceName)
	}
	if article.ResolutionError != "" {
		fmt.Fprintf(w, "    unresolved: %s\n", article.ResolutionError)
	}
	if article.ScreenshotPath != "" {
		fmt.Fprintf(w, "    screenshot: %s\n", article.ScreenshotPath)
	}
	fmt.Fprintln(w)
}
