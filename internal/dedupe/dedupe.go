package dedupe

import (
	"regexp"
	"strings"

	"newslens/internal/domain"
)

var punctExpr = regexp.MustCompile(`[^a-z0-9 ]+`)

// Filter removes duplicate articles while preserving input order; the first
// occurrence wins. Two articles collide when they share a normalized URL or
// a title similarity key. Running Filter on its own output changes nothing.
func Filter(articles []domain.Article) []domain.Article {
	seenURL := make(map[string]struct{}, len(articles))
	seenTitle := make(map[string]struct{}, len(articles))

	out := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		uKey := normalizeURL(article.BestURL())
		tKey := titleKey(article.Title)

		if uKey != "" {
			if _, dup := seenURL[uKey]; dup {
				continue
			}
		}
		if tKey != "" {
			if _, dup := seenTitle[tKey]; dup {
				continue
			}
		}

		if uKey != "" {
			seenURL[uKey] = struct{}{}
		}
		if tKey != "" {
			seenTitle[tKey] = struct{}{}
		}
		out = append(out, article)
	}

	return out
}

func normalizeURL(u string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(u)), "/")
}

// titleKey reduces a headline to its first five significant words. Short
// titles without any word of four letters or more produce no key and never
// collide with each other.
func titleKey(title string) string {
	cleaned := punctExpr.ReplaceAllString(strings.ToLower(title), "")

	significant := make([]string, 0, 5)
	for _, word := range strings.Fields(cleaned) {
		if len(word) < 4 {
			continue
		}
		significant = append(significant, word)
		if len(significant) == 5 {
			break
		}
	}

	return strings.Join(significant, " ")
}
