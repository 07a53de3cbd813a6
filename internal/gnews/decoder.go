package gnews

import (
	"context"

	"newslens/internal/ports"
)

var _ ports.LinkDecoder = (*Client)(nil)

// DecodeLink runs the full resolution for one feed link: extract the token,
// scrape the signed parameters, call batchexecute. The first failing step
// short-circuits and its error reports the stage; nothing is retried here.
func (c *Client) DecodeLink(ctx context.Context, feedLink string) (string, error) {
	token, err := ExtractToken(feedLink)
	if err != nil {
		return "", &DecodeError{Stage: StageToken, Err: err}
	}

	params, err := c.FetchParams(ctx, token)
	if err != nil {
		return "", &DecodeError{Stage: StageParams, Err: err}
	}

	resolved, err := c.Resolve(ctx, token, params)
	if err != nil {
		return "", &DecodeError{Stage: StageResolve, Err: err}
	}

	c.debug("link decoded", "resolved", resolved)
	return resolved, nil
}
