package resilience

import (
	"context"
	"time"

	perr "opsroute/internal/platform/errors"
	"opsroute/internal/platform/logger"

	"github.com/avast/retry-go/v4"
)

// RetryPolicy is exponential backoff: Initial, doubling, capped at Max, for Attempts tries in total
type RetryPolicy struct {
	Attempts int
	Initial  time.Duration
	Max      time.Duration
}

// DefaultRetry is 3 attempts backing off 1s, 2s and capped at 10s
func DefaultRetry() RetryPolicy {
	return RetryPolicy{Attempts: 3, Initial: time.Second, Max: 10 * time.Second}
}

// Backoff returns the wait before retry n+1, where n counts from 0
func (p RetryPolicy) Backoff(n uint) time.Duration {
	d := p.Initial
	for i := uint(0); i < n && d < p.Max; i++ {
		d *= 2
	}
	if p.Max > 0 && d > p.Max {
		d = p.Max
	}
	return d
}

func (p RetryPolicy) delay(n uint, _ error, _ *retry.Config) time.Duration { return p.Backoff(n) }

// Retry calls fn until it succeeds, returns a non-retryable error, or runs out of attempts
// the returned error names op, the attempt count and the root message
func Retry[T any](ctx context.Context, p RetryPolicy, op string, fn func(context.Context) (T, error)) (T, error) {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	var (
		out      T
		attempts int
	)
	err := retry.Do(
		func() error {
			attempts++
			v, err := fn(ctx)
			if err != nil {
				return err
			}
			out = v
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(p.Attempts)),
		retry.DelayType(p.delay),
		retry.MaxDelay(p.Max),
		retry.RetryIf(perr.Retryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.C(ctx).Debug().Str("op", op).Uint("attempt", n+1).Err(err).Msg("retrying")
		}),
	)
	if err != nil {
		var zero T
		return zero, exhausted(op, attempts, err)
	}
	return out, nil
}

// exhausted keeps the code and field of err so HTTP mapping is unchanged
// the root message is rendered once: a perr cause hands over its message and its own cause
func exhausted(op string, attempts int, err error) error {
	e, ok := perr.As(err)
	if !ok {
		return perr.WithOp(perr.Wrapf(err, perr.CodeOf(err), "failed after %d attempt(s)", attempts), op)
	}
	out := perr.Wrapf(e.Unwrap(), e.Code(), "failed after %d attempt(s): %s", attempts, e.Message())
	if e.Field() != "" {
		out = perr.WithField(out, e.Field())
	}
	return perr.WithOp(out, op)
}
