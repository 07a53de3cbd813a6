package publisher

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"newslens/internal/domain"
)

var (
	domainExpr   = regexp.MustCompile(`\b[a-z0-9][a-z0-9-]{1,62}\.(?:com|org|net|edu|gov|io|co|news|tv|me|us|uk|ca|au|in|de|fr)\b`)
	nonAlphaExpr = regexp.MustCompile(`[^a-z0-9 ]+`)
)

// Resolver derives a publisher domain for an article. The strategy chain
// runs in order and the terminal fallback always answers, so Resolve never
// returns an empty string.
type Resolver struct {
	dict   Dictionary
	logger *slog.Logger
}

// NewResolver wires the dictionary used by the fragment strategies.
func NewResolver(dict Dictionary, logger *slog.Logger) *Resolver {
	return &Resolver{dict: dict, logger: logger}
}

type strategy struct {
	name string
	fn   func(domain.Article) string
}

// Resolve walks the strategies lazily and returns the first non-empty hit.
func (r *Resolver) Resolve(article domain.Article) string {
	strategies := []strategy{
		{"resolved-host", r.fromResolvedURL},
		{"link-fragment", r.fromFeedLink},
		{"source-dictionary", r.fromSourceName},
		{"source-pattern", r.fromSourcePattern},
		{"source-synthesis", r.synthesizeFromSource},
		{"title-fallback", r.fromTitle},
	}

	for _, s := range strategies {
		if d := s.fn(article); d != "" {
			r.debug("publisher domain resolved", "strategy", s.name, "domain", d)
			return d
		}
	}

	// The title fallback cannot miss; this keeps the contract explicit.
	return "news.unknown"
}

func (r *Resolver) fromResolvedURL(article domain.Article) string {
	if article.ResolvedURL == "" {
		return ""
	}
	parsed, err := url.Parse(article.ResolvedURL)
	if err != nil {
		return ""
	}
	return cleanHost(parsed.Hostname())
}

func (r *Resolver) fromFeedLink(article domain.Article) string {
	link := strings.ToLower(article.FeedLink)
	if link == "" {
		return ""
	}

	if d, ok := r.dict.Lookup(link); ok {
		return d
	}

	for _, match := range domainExpr.FindAllString(link, -1) {
		if strings.Contains(match, "google") || strings.Contains(match, "gstatic") {
			continue
		}
		return cleanHost(match)
	}
	return ""
}

func (r *Resolver) fromSourceName(article domain.Article) string {
	if article.SourceName == "" {
		return ""
	}
	if d, ok := r.dict.Lookup(article.SourceName); ok {
		return d
	}
	return ""
}

func (r *Resolver) fromSourcePattern(article domain.Article) string {
	name := strings.ToLower(article.SourceName)
	if name == "" {
		return ""
	}
	if match := domainExpr.FindString(name); match != "" {
		return cleanHost(match)
	}
	return ""
}

func (r *Resolver) synthesizeFromSource(article domain.Article) string {
	words := sanitizeWords(article.SourceName)
	if len(words) == 0 {
		return ""
	}
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, "") + ".com"
}

func (r *Resolver) fromTitle(article domain.Article) string {
	words := sanitizeWords(article.Title)

	pick := ""
	for _, w := range words {
		if len(w) > 4 {
			pick = w
			break
		}
	}
	if pick == "" && len(words) > 0 {
		pick = words[0]
	}
	if pick == "" {
		pick = "news"
	}
	return pick + ".unknown"
}

func (r *Resolver) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func cleanHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

func sanitizeWords(text string) []string {
	cleaned := nonAlphaExpr.ReplaceAllString(strings.ToLower(text), "")
	return strings.Fields(cleaned)
}
