package llm

import (
	"context"
	"errors"

	perr "opsroute/internal/platform/errors"

	openai "github.com/sashabaranov/go-openai"
)

// classify maps go-openai failures onto project codes so retry and breaker accounting see them.
// HTTP statuses go through perr.FromHTTPStatus; transport errors keep their text for perr.Retryable
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return perr.FromHTTPStatus(apiErr.HTTPStatusCode, err, "llm api error")
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return perr.FromHTTPStatus(reqErr.HTTPStatusCode, err, "llm request failed")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return perr.Wrap(err, perr.ErrorCodeTimeout, "llm call timed out")
	}
	if perr.Retryable(err) {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "llm unreachable")
	}
	return perr.Wrap(err, perr.ErrorCodeUpstream, "llm call failed")
}
