package gnews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"newslens/internal/domain"
)

const (
	batchExecutePath = "/_/DotsSplashUi/data/batchexecute"
	resolveRPCID     = "Fbv4je"
)

// resolveEnvelope builds the f.req value for one token. The descriptor block
// inside garturlreq is opaque protocol state; it must stay byte-identical,
// only token, timestamp and signature vary.
func resolveEnvelope(token string, params domain.SignedParams) (string, error) {
	inner := fmt.Sprintf(
		`["garturlreq",[["X","X",["X","X"],null,null,1,1,"US:en",null,1,null,null,null,null,null,0,1],"X","X",1,[1,1,1],1,1,null,0,0,null,0],"%s",%d,"%s"]`,
		token, params.Timestamp, params.Signature,
	)

	outer, err := json.Marshal([][]any{{[]any{resolveRPCID, inner}}})
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	return string(outer), nil
}

// Resolve exchanges a token plus its signed parameters for the canonical
// article URL via the batchexecute endpoint.
func (c *Client) Resolve(ctx context.Context, token string, params domain.SignedParams) (string, error) {
	envelope, err := resolveEnvelope(token, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrResolve, err)
	}

	form := url.Values{}
	form.Set("f.req", envelope)

	if err := c.wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrResolve, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+batchExecutePath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrResolve, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrResolve, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %s", ErrResolve, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrResolve, err)
	}

	resolved, err := parseResolveResponse(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrResolve, err)
	}

	return resolved, nil
}

// parseResolveResponse digs the canonical URL out of the batchexecute answer.
// The body is an anti-XSSI prefix plus framing lines; the payload is the
// first line opening a JSON array of arrays, its [0][2] element is a JSON
// document of its own and index 1 of that document is the URL.
func parseResolveResponse(body []byte) (string, error) {
	var payloadLine string
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[[") {
			payloadLine = trimmed
			break
		}
	}
	if payloadLine == "" {
		return "", fmt.Errorf("no payload line in response")
	}

	var outer []any
	if err := json.Unmarshal([]byte(payloadLine), &outer); err != nil {
		return "", fmt.Errorf("parse payload line: %w", err)
	}
	if len(outer) == 0 {
		return "", fmt.Errorf("empty payload")
	}

	frame, ok := outer[0].([]any)
	if !ok || len(frame) < 3 {
		return "", fmt.Errorf("unexpected payload shape")
	}

	innerRaw, ok := frame[2].(string)
	if !ok {
		return "", fmt.Errorf("payload carries no inner document")
	}

	var inner []any
	if err := json.Unmarshal([]byte(innerRaw), &inner); err != nil {
		return "", fmt.Errorf("parse inner document: %w", err)
	}
	if len(inner) < 2 {
		return "", fmt.Errorf("inner document too short")
	}

	resolved, ok := inner[1].(string)
	if !ok {
		return "", fmt.Errorf("resolved url is not a string")
	}
	if resolved == "" {
		return "", fmt.Errorf("resolved url is empty")
	}

	return resolved, nil
}
