// Package resilience guards calls to the llm and the warehouse with retry, per-attempt timeouts
// and circuit breakers. Breakers live in an injected Registry; there are no package singletons
package resilience

import (
	"context"
	stderrs "errors"
	"sync/atomic"
	"time"

	perr "opsroute/internal/platform/errors"
)

// State is the breaker state
type State int32

const (
	// StateClosed lets every call through and counts failures
	StateClosed State = iota
	// StateOpen rejects calls until the cooldown elapses
	StateOpen
	// StateHalfOpen lets a single trial call through
	StateHalfOpen
)

// String returns the wire name of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Settings configures one breaker and the per-attempt timeout of its dependency
type Settings struct {
	Name      string
	Threshold int
	Window    time.Duration
	Cooldown  time.Duration
	Timeout   time.Duration
}

// StateHook observes transitions; it runs on the goroutine that won the transition
type StateHook func(name string, from, to State)

// Breaker is a lock-free circuit breaker
// every field is atomic and transitions are compare-and-swap, so a state read is never torn
type Breaker struct {
	cfg  Settings
	now  func() time.Time
	hook StateHook

	state       atomic.Int32
	failures    atomic.Int32
	windowStart atomic.Int64 // unix nanos
	lastFailure atomic.Int64
	openedAt    atomic.Int64
	trial       atomic.Bool
}

// NewBreaker builds a closed breaker; nil now uses time.Now
func NewBreaker(s Settings, now func() time.Time, hook StateHook) *Breaker {
	if s.Threshold <= 0 {
		s.Threshold = 1
	}
	if now == nil {
		now = time.Now
	}
	b := &Breaker{cfg: s, now: now, hook: hook}
	b.windowStart.Store(now().UnixNano())
	return b
}

// Name returns the guarded dependency name
func (b *Breaker) Name() string { return b.cfg.Name }

// Settings returns the breaker configuration
func (b *Breaker) Settings() Settings { return b.cfg }

// State returns the current state
func (b *Breaker) State() State { return State(b.state.Load()) }

// Allow admits or rejects a call. trial is true when the call is the single half-open trial
// and must be reported through Done
func (b *Breaker) Allow() (trial bool, err error) {
	for {
		switch b.State() {
		case StateClosed:
			return false, nil

		case StateOpen:
			opened := b.openedStamp()
			if b.now().UnixNano()-opened < int64(b.cfg.Cooldown) {
				return false, b.rejected(opened)
			}
			b.transition(StateOpen, StateHalfOpen)
			// loop so the half-open branch decides who owns the trial

		case StateHalfOpen:
			if b.trial.CompareAndSwap(false, true) {
				return true, nil
			}
			return false, b.rejected(b.openedStamp())

		default:
			return false, nil
		}
	}
}

// Done reports the outcome of an admitted call
func (b *Breaker) Done(trial bool, err error) {
	failed := countsAsFailure(err)

	if trial {
		if failed {
			b.recordFailure()
			b.open(StateHalfOpen)
		} else if b.transition(StateHalfOpen, StateClosed) {
			b.openedAt.Store(0)
			b.failures.Store(0)
			b.windowStart.Store(b.now().UnixNano())
		}
		b.trial.Store(false)
		return
	}

	if !failed {
		return
	}
	n := b.recordFailure()
	if n >= int32(b.cfg.Threshold) {
		b.open(StateClosed)
	}
}

// Do runs fn behind the breaker
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error) error {
	trial, err := b.Allow()
	if err != nil {
		return err
	}
	err = fn(ctx)
	b.Done(trial, err)
	return err
}

// recordFailure bumps the counter inside the current window and returns the new count
func (b *Breaker) recordFailure() int32 {
	now := b.now().UnixNano()
	b.lastFailure.Store(now)

	start := b.windowStart.Load()
	if b.cfg.Window > 0 && now-start > int64(b.cfg.Window) {
		if b.windowStart.CompareAndSwap(start, now) {
			b.failures.Store(1)
			return 1
		}
	}
	return b.failures.Add(1)
}

// open moves from -> open and stamps the open time only when this call wins the transition
// a call admitted before the breaker opened and failing later must not push the cooldown out
func (b *Breaker) open(from State) {
	if from == StateHalfOpen {
		// only the trial owner leaves half-open, so the stamp can go first
		b.openedAt.Store(b.now().UnixNano())
		if b.state.CompareAndSwap(int32(from), int32(StateOpen)) {
			b.notify(from, StateOpen)
		}
		return
	}
	if b.state.CompareAndSwap(int32(from), int32(StateOpen)) {
		b.openedAt.Store(b.now().UnixNano())
		b.notify(from, StateOpen)
	}
}

// openedStamp reads the open time; zero means the opener has not stamped yet, so it opened just now
func (b *Breaker) openedStamp() int64 {
	if v := b.openedAt.Load(); v != 0 {
		return v
	}
	return b.now().UnixNano()
}

func (b *Breaker) transition(from, to State) bool {
	if b.state.CompareAndSwap(int32(from), int32(to)) {
		b.notify(from, to)
		return true
	}
	return false
}

func (b *Breaker) notify(from, to State) {
	if b.hook != nil {
		b.hook(b.cfg.Name, from, to)
	}
}

// retryAfter estimates how long until the next trial is admitted
func (b *Breaker) retryAfter(opened int64) time.Duration {
	left := time.Duration(opened+int64(b.cfg.Cooldown) - b.now().UnixNano())
	if left < 0 {
		return 0
	}
	return left
}

func (b *Breaker) rejected(opened int64) error {
	wait := b.retryAfter(opened).Round(time.Second)
	err := perr.Newf(perr.ErrorCodeCircuitOpen, "%s circuit open, retry after %s", b.cfg.Name, wait)
	return perr.WithOp(err, b.cfg.Name+".breaker")
}

// Snapshot is a point-in-time view of a breaker for the meta endpoint
type Snapshot struct {
	Name        string    `json:"name"`
	State       string    `json:"state"`
	Failures    int       `json:"failures"`
	Threshold   int       `json:"threshold"`
	LastFailure time.Time `json:"last_failure,omitzero"`
	RetryAfterS float64   `json:"retry_after_seconds"`
}

// Snapshot reads the breaker without changing it
func (b *Breaker) Snapshot() Snapshot {
	s := Snapshot{
		Name:      b.cfg.Name,
		State:     b.State().String(),
		Failures:  int(b.failures.Load()),
		Threshold: b.cfg.Threshold,
	}
	if lf := b.lastFailure.Load(); lf != 0 {
		s.LastFailure = time.Unix(0, lf).UTC()
	}
	if b.State() == StateOpen {
		s.RetryAfterS = b.retryAfter(b.openedStamp()).Seconds()
	}
	return s
}

// countsAsFailure is false for caller side problems; the dependency answered fine
// 401 and 403 belong to the caller's key, and keys are per request
func countsAsFailure(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) {
		return false
	}
	switch perr.CodeOf(err) {
	case perr.ErrorCodeValidation, perr.ErrorCodeInvalidArgument, perr.ErrorCodeCircuitOpen,
		perr.ErrorCodeUnauthorized, perr.ErrorCodeForbidden:
		return false
	}
	return true
}
