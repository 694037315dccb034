package resilience

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"opsroute/internal/platform/config"
	perr "opsroute/internal/platform/errors"
	kit "opsroute/internal/platform/testkit"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fast = RetryPolicy{Attempts: 3, Initial: time.Millisecond, Max: 4 * time.Millisecond}

func TestBackoff(t *testing.T) {
	p := DefaultRetry()
	assert.Equal(t, time.Second, p.Backoff(0))
	assert.Equal(t, 2*time.Second, p.Backoff(1))
	assert.Equal(t, 8*time.Second, p.Backoff(3))
	assert.Equal(t, 10*time.Second, p.Backoff(4))
	assert.Equal(t, 10*time.Second, p.Backoff(40))
}

func TestRetryNonRetryableSingleAttempt(t *testing.T) {
	calls := 0
	start := time.Now()
	_, err := Retry(context.Background(), DefaultRetry(), "llm.decide", func(context.Context) (int, error) {
		calls++
		return 0, perr.WithField(perr.Validationf("task must be one of sql rag optimize"), "task")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	e, ok := perr.As(err)
	require.True(t, ok)
	assert.Equal(t, perr.ErrorCodeValidation, e.Code())
	assert.Equal(t, "llm.decide", e.Op())
	assert.Equal(t, "task", e.Field())
	assert.Contains(t, e.Message(), "after 1 attempt(s)")
	assert.Contains(t, e.Message(), "task must be one of")
}

func TestRetryTransientThenSuccess(t *testing.T) {
	calls := 0
	v, err := Retry(context.Background(), fast, "db.query", func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", perr.Unavailablef("pool exhausted")
		}
		return "rows", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "rows", v)
	assert.Equal(t, 3, calls)
}

func TestRetryExhausted(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fast, "llm.decide", func(context.Context) (int, error) {
		calls++
		return 0, errors.New("connection reset by peer")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "failed after 3 attempt(s)")
	assert.Contains(t, err.Error(), "llm.decide")
	assert.Equal(t, 1, strings.Count(err.Error(), "connection reset by peer"))
}

func TestRetryRootMessageOnce(t *testing.T) {
	_, err := Retry(context.Background(), fast, "llm.decide", func(context.Context) (int, error) {
		return 0, perr.FromHTTPStatus(401, nil, "llm api error")
	})
	require.Error(t, err)
	e, ok := perr.As(err)
	require.True(t, ok)
	assert.Equal(t, perr.ErrorCodeUnauthorized, e.Code())
	assert.Contains(t, e.Message(), "failed after 1 attempt(s)")
	assert.Equal(t, 1, strings.Count(err.Error(), "llm api error"), err.Error())

	wrapped := errors.New("dial tcp: i/o timeout")
	_, err = Retry(context.Background(), RetryPolicy{Attempts: 1}, "db.query", func(context.Context) (int, error) {
		return 0, perr.Wrap(wrapped, perr.ErrorCodeUnavailable, "warehouse down")
	})
	assert.ErrorIs(t, err, wrapped)
	assert.Equal(t, 1, strings.Count(err.Error(), "warehouse down"), err.Error())
}

func TestWithTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	_, err := WithTimeout(context.Background(), 10*time.Millisecond, "llm.decide", func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	})
	require.True(t, perr.IsCode(err, perr.ErrorCodeTimeout), "got %v", err)
	assert.True(t, perr.Retryable(err))

	v, err := WithTimeout(context.Background(), time.Second, "x", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = WithTimeout(ctx, time.Second, "x", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGuardStopsOnOpenCircuit(t *testing.T) {
	clock := kit.NewClock(kit.Day(2024, time.June, 1))
	s := DefaultLLM()
	s.Threshold = 2
	r := NewRegistry([]Settings{s}, WithClock(clock.Now), WithRetry(fast))

	calls := 0
	_, err := Guard(context.Background(), r, LLM, "llm.decide", func(context.Context) (int, error) {
		calls++
		return 0, perr.Unavailablef("upstream 503")
	})
	require.Error(t, err)
	// two real attempts open the breaker; the third is rejected without calling fn
	assert.Equal(t, 2, calls)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeCircuitOpen), "got %v", err)
	assert.Equal(t, StateOpen, r.Get(LLM).State())

	calls = 0
	_, err = Guard(context.Background(), r, LLM, "llm.decide", func(context.Context) (int, error) {
		calls++
		return 1, nil
	})
	assert.Equal(t, 0, calls)
	assert.Contains(t, err.Error(), "retry after")
}

func TestGuardWithoutBreaker(t *testing.T) {
	r := NewRegistry(nil, WithRetry(fast))
	v, err := Guard(context.Background(), r, DB, "db.query", func(context.Context) (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestFromConfig(t *testing.T) {
	t.Setenv("CORE_BREAKER_LLM_THRESHOLD", "7")
	t.Setenv("CORE_BREAKER_DB_COOLDOWN", "5s")
	t.Setenv("CORE_RETRY_ATTEMPTS", "4")

	settings, retry := FromConfig(config.New())
	require.Len(t, settings, 2)
	assert.Equal(t, LLM, settings[0].Name)
	assert.Equal(t, 7, settings[0].Threshold)
	assert.Equal(t, 60*time.Second, settings[0].Window)
	assert.Equal(t, 5*time.Second, settings[1].Cooldown)
	assert.Equal(t, 15*time.Second, settings[1].Timeout)
	assert.Equal(t, 4, retry.Attempts)
	assert.Equal(t, time.Second, retry.Initial)
}

func TestStateGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	hook := NewStateGauge(reg)
	hook(LLM, StateClosed, StateOpen)

	assert.Equal(t, 3, testutil.CollectAndCount(reg))
}
