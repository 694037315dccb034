package resilience

import (
	"context"
)

// Guard runs fn as retry(breaker(timeout(fn))) using the named breaker's settings
// each attempt passes the breaker on its own, so an open circuit stops the retry loop at once
func Guard[T any](ctx context.Context, r *Registry, name, op string, fn func(context.Context) (T, error)) (T, error) {
	b := r.Get(name)
	attempt := func(ctx context.Context) (T, error) {
		if b == nil {
			return fn(ctx)
		}
		trial, err := b.Allow()
		if err != nil {
			var zero T
			return zero, err
		}
		v, err := WithTimeout(ctx, b.Settings().Timeout, op, fn)
		b.Done(trial, err)
		return v, err
	}
	return Retry(ctx, r.Retry(), op, attempt)
}
