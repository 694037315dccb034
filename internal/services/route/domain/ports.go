package domain

import (
	"context"

	"opsroute/internal/adapters/llm"
	"opsroute/internal/platform/store"
)

// ServicePort is consumed by handlers, the cli and other modules
type ServicePort interface {
	Route(ctx context.Context, in RouteInput) (RouteResult, error)
	Explain(ctx context.Context, in RouteInput) (ExplainResult, error)
	Intents(ctx context.Context) ([]IntentInfo, error)
	Query(ctx context.Context, in RouteInput) (QueryResult, error)
}

// Executor runs a vetted SELECT read-only and returns capped rows
type Executor interface {
	Query(ctx context.Context, sql string) (store.ResultSet, error)
}

// AuditSink stores decisions
type AuditSink interface {
	Record(ctx context.Context, rec AuditRecord) error
}

// Models hands out an llm client for a request key
type Models interface {
	For(apiKey string) (llm.Client, error)
	Configured() bool
}
