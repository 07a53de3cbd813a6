package gnews

import (
	"fmt"
	"net/url"
	"strings"
)

const googleNewsHost = "news.google.com"

// ExtractToken pulls the encoded article token out of a Google News link.
// Valid links point at news.google.com with a path ending in
// /articles/<token> or /read/<token>; the query string is ignored.
func ExtractToken(link string) (string, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}

	if parsed.Host != googleNewsHost {
		return "", fmt.Errorf("%w: host %q", ErrInvalidLink, parsed.Host)
	}

	segments := strings.Split(strings.TrimPrefix(parsed.Path, "/"), "/")
	if len(segments) < 2 {
		return "", fmt.Errorf("%w: path %q", ErrInvalidLink, parsed.Path)
	}

	section := segments[len(segments)-2]
	if section != "articles" && section != "read" {
		return "", fmt.Errorf("%w: path %q", ErrInvalidLink, parsed.Path)
	}

	token := segments[len(segments)-1]
	if token == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalidLink)
	}

	return token, nil
}
