// Package service contains decision stats workflows
package service

import (
	"context"

	perr "opsroute/internal/platform/errors"
	"opsroute/internal/platform/resilience"
	"opsroute/internal/services/api/stats/domain"
	"opsroute/internal/services/api/stats/repo"
)

const defaultLimit = 20

// Service defines the stats service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the stats service; a nil Repo means the audit store is off
type Svc struct {
	Repo     repo.Repo
	breakers *resilience.Registry
}

// New constructs a stats service
func New(r repo.Repo, breakers *resilience.Registry) *Svc {
	return &Svc{Repo: r, breakers: breakers}
}

func (s *Svc) ready(in domain.TimeRange) error {
	if s.Repo == nil {
		return perr.Unavailablef("decision audit is not configured")
	}
	// ISO dates compare as strings
	if in.Start > in.End {
		return perr.WithField(perr.Validationf("range start is after end"), "range")
	}
	return nil
}

// Decisions returns audited decisions by day, task and source
func (s *Svc) Decisions(ctx context.Context, in domain.DecisionsInput) ([]domain.DecisionsRow, error) {
	if err := s.ready(in.Range); err != nil {
		return nil, err
	}
	rows, err := resilience.Guard(ctx, s.breakers, resilience.DB, "stats.decisions", func(ctx context.Context) ([]repo.RowDecisions, error) {
		return s.Repo.Decisions(ctx, in.Range.Start, in.Range.End, in.Task)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.DecisionsRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.DecisionsRow{
			Day:           r.Day,
			Task:          r.Task,
			RouteSource:   r.RouteSource,
			Decisions:     int64(r.Decisions),
			Errors:        int64(r.Errors),
			AvgConfidence: r.AvgConfidence,
		})
	}
	return out, nil
}

// Intents returns the busiest intents in the window
func (s *Svc) Intents(ctx context.Context, in domain.IntentsInput) ([]domain.IntentRow, error) {
	if err := s.ready(in.Range); err != nil {
		return nil, err
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := resilience.Guard(ctx, s.breakers, resilience.DB, "stats.intents", func(ctx context.Context) ([]repo.RowIntent, error) {
		return s.Repo.Intents(ctx, in.Range.Start, in.Range.End, limit)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.IntentRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.IntentRow{
			Intent:       r.Intent,
			Decisions:    int64(r.Decisions),
			LLMShare:     r.LLMShare,
			AvgLatencyMS: r.AvgLatencyMS,
		})
	}
	return out, nil
}
