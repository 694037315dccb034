// Package service contains decision sample workflows
package service

import (
	"context"
	"time"

	perr "opsroute/internal/platform/errors"
	"opsroute/internal/platform/resilience"
	"opsroute/internal/services/api/samples/domain"
	"opsroute/internal/services/api/samples/repo"
)

const defaultLimit = 50

// Service defines the service contract for samples
type Service interface{ domain.ServicePort }

// Svc implements the Service interface; a nil Repo means the audit store is off
type Svc struct {
	Repo     repo.Repo
	breakers *resilience.Registry
}

// New creates a new samples service
func New(r repo.Repo, breakers *resilience.Registry) *Svc {
	return &Svc{Repo: r, breakers: breakers}
}

// Recent returns the newest audited decisions matching in, newest first
func (s *Svc) Recent(ctx context.Context, in domain.SamplesInput) ([]domain.Sample, error) {
	if s.Repo == nil {
		return nil, perr.Unavailablef("decision audit is not configured")
	}
	f := repo.Filter{
		Task:        in.Task,
		RouteSource: in.RouteSource,
		Intent:      in.Intent,
		ErrorsOnly:  in.ErrorsOnly,
		Limit:       in.Limit,
	}
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	rows, err := resilience.Guard(ctx, s.breakers, resilience.DB, "samples.recent", func(ctx context.Context) ([]repo.Row, error) {
		return s.Repo.Recent(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Sample, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Sample{
			DecisionID:  r.DecisionID,
			At:          r.At.UTC().Format(time.RFC3339),
			Question:    r.Question,
			Intent:      r.Intent,
			Task:        r.Task,
			RouteSource: r.RouteSource,
			Rule:        r.Rule,
			Confidence:  r.Confidence,
			SQL:         r.SQL,
			LatencyMS:   int64(r.LatencyMS),
			Error:       r.Error,
		})
	}
	return out, nil
}
