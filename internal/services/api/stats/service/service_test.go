package service

import (
	"context"
	"errors"
	"testing"

	perr "opsroute/internal/platform/errors"
	"opsroute/internal/platform/resilience"
	"opsroute/internal/services/api/stats/domain"
	"opsroute/internal/services/api/stats/repo"
)

type fakeRepo struct {
	limit int
	err   error
}

func (f *fakeRepo) Decisions(context.Context, string, string, string) ([]repo.RowDecisions, error) {
	return []repo.RowDecisions{{Day: "2025-06-18", Task: "rag", RouteSource: "deterministic", Decisions: 7}}, f.err
}

func (f *fakeRepo) Intents(_ context.Context, _, _ string, limit int) ([]repo.RowIntent, error) {
	f.limit = limit
	return []repo.RowIntent{{Intent: "safety_procedure", Decisions: 3}}, f.err
}

var june = domain.TimeRange{Start: "2025-06-01", End: "2025-06-30"}

func TestDecisionsAndIntents(t *testing.T) {
	r := &fakeRepo{}
	s := New(r, nil)

	rows, err := s.Decisions(context.Background(), domain.DecisionsInput{Range: june})
	if err != nil || len(rows) != 1 || rows[0].Decisions != 7 {
		t.Fatalf("Decisions = %+v, %v", rows, err)
	}

	if _, err := s.Intents(context.Background(), domain.IntentsInput{Range: june}); err != nil {
		t.Fatalf("Intents: %v", err)
	}
	if r.limit != defaultLimit {
		t.Fatalf("limit = %d", r.limit)
	}
}

func TestRangeAndAvailability(t *testing.T) {
	_, err := New(&fakeRepo{}, nil).Decisions(context.Background(), domain.DecisionsInput{
		Range: domain.TimeRange{Start: "2025-07-01", End: "2025-06-01"},
	})
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("inverted range err = %v", err)
	}

	_, err = New(nil, nil).Intents(context.Background(), domain.IntentsInput{Range: june})
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("no audit store err = %v", err)
	}
}

func TestRepoErrorsPassThroughBreaker(t *testing.T) {
	reg := resilience.NewRegistry([]resilience.Settings{resilience.DefaultDB()},
		resilience.WithRetry(resilience.RetryPolicy{Attempts: 1}))
	_, err := New(&fakeRepo{err: errors.New("code: 60, table does not exist")}, reg).
		Decisions(context.Background(), domain.DecisionsInput{Range: june})
	if err == nil {
		t.Fatalf("repo error swallowed")
	}
}
