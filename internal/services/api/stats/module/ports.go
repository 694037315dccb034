package module

import (
	"context"

	"opsroute/internal/services/api/stats/domain"
	statssvc "opsroute/internal/services/api/stats/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptStatsPort struct{ svc statssvc.Service }

// Decisions returns audited decisions by day, task and source
func (a adaptStatsPort) Decisions(ctx context.Context, in domain.DecisionsInput) ([]domain.DecisionsRow, error) {
	return a.svc.Decisions(ctx, in)
}

// Intents returns the busiest intents in a window
func (a adaptStatsPort) Intents(ctx context.Context, in domain.IntentsInput) ([]domain.IntentRow, error) {
	return a.svc.Intents(ctx, in)
}
