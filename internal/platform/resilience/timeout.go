package resilience

import (
	"context"
	stderrs "errors"
	"time"

	perr "opsroute/internal/platform/errors"
)

// WithTimeout runs fn with a deadline of d and stops waiting when it fires
// fn keeps running until it notices its context; its late result is dropped
func WithTimeout[T any](ctx context.Context, d time.Duration, op string, fn func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return fn(ctx)
	}
	tctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(tctx)
		done <- result{v, err}
	}()

	var zero T
	select {
	case r := <-done:
		if r.err != nil && stderrs.Is(r.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, timedOut(op, d, r.err)
		}
		return r.v, r.err
	case <-tctx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, timedOut(op, d, tctx.Err())
	}
}

func timedOut(op string, d time.Duration, cause error) error {
	return perr.WithOp(perr.Wrapf(cause, perr.ErrorCodeTimeout, "timed out after %s", d), op)
}
