// Package guardrails holds the per-request time budgets of the route service
package guardrails

import (
	"context"
	"time"
)

// Budgets caps the phases of one request.
// Zero values mean no extra limit at that level
type Budgets struct {
	// Route bounds a whole routing decision, model fallback and sql generation included
	Route time.Duration

	// Query bounds warehouse execution after a decision
	Query time.Duration
}

// ForRoute returns a context limited by the route budget without extending any parent deadline
func ForRoute(parent context.Context, b Budgets) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, b.Route)
}

// ForQuery returns a sub context for the execution phase bounded by Query and any remaining parent budget
func ForQuery(parent context.Context, b Budgets) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, b.Query)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout picks the tighter of d and the parent remainder; it never extends the parent.
// d <= 0 returns a cancelable child inheriting the parent deadline
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
