package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Article is a core entity describing one Google News search hit and the
// outcome of resolving its obfuscated link.
type Article struct {
	ID              string
	Title           string
	Description     string
	FeedLink        string
	GUID            string
	ResolvedURL     string
	Domain          string
	SourceName      string
	PublishedAt     time.Time
	ResolutionError string
	ScreenshotPath  string
}

// NewID derives a stable article identifier from the title and feed link.
func NewID(title, feedLink string) string {
	sum := sha256.Sum256([]byte(title + "|" + feedLink))
	return hex.EncodeToString(sum[:])[:12]
}

// BestURL returns the resolved URL when decoding succeeded, the raw feed
// link otherwise.
func (a Article) BestURL() string {
	if a.ResolvedURL != "" {
		return a.ResolvedURL
	}
	return a.FeedLink
}

// SignedParams carries the signature and timestamp scraped for a single
// decode attempt. Values are scoped to one token and never reused.
type SignedParams struct {
	Signature string
	Timestamp int64
}

// BatchStats summarizes one batch resolution run.
type BatchStats struct {
	Total      int
	Successful int
	Failed     int
	Elapsed    time.Duration
}

// SearchResult is the final outcome of a search run.
type SearchResult struct {
	ID        string
	Query     string
	Articles  []Article
	Stats     BatchStats
	StartedAt time.Time
	Elapsed   time.Duration
}
