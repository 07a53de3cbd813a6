package gnews

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"newslens/internal/domain"
)

// The signature and timestamp live on a controller div nested inside the
// article page's c-wiz root.
const signedParamsSelector = "c-wiz div[jscontroller]"

// FetchParams scrapes the signature and timestamp Google requires for
// resolving the given token. The article page is tried first, then its RSS
// variant; the first page carrying both attributes wins.
func (c *Client) FetchParams(ctx context.Context, token string) (domain.SignedParams, error) {
	candidates := []string{
		c.baseURL + "/articles/" + token,
		c.baseURL + "/rss/articles/" + token,
	}

	var lastErr error
	for _, pageURL := range candidates {
		params, err := c.scrapeParams(ctx, pageURL)
		if err != nil {
			lastErr = err
			continue
		}
		return params, nil
	}

	return domain.SignedParams{}, fmt.Errorf("%w: %v", ErrParamsNotFound, lastErr)
}

func (c *Client) scrapeParams(ctx context.Context, pageURL string) (domain.SignedParams, error) {
	doc, err := c.fetchDocument(ctx, pageURL)
	if err != nil {
		return domain.SignedParams{}, err
	}

	var (
		signature string
		tsText    string
		found     bool
	)
	doc.Find(signedParamsSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		sg, okSg := sel.Attr("data-n-a-sg")
		ts, okTs := sel.Attr("data-n-a-ts")
		if !okSg || !okTs || sg == "" || ts == "" {
			return true
		}
		signature, tsText, found = sg, ts, true
		return false
	})
	if !found {
		return domain.SignedParams{}, fmt.Errorf("no signed attributes at %s", pageURL)
	}

	timestamp, err := strconv.ParseInt(tsText, 10, 64)
	if err != nil {
		return domain.SignedParams{}, fmt.Errorf("timestamp %q: %w", tsText, err)
	}

	return domain.SignedParams{Signature: signature, Timestamp: timestamp}, nil
}

func (c *Client) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	return doc, nil
}
