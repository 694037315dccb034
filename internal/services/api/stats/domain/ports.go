package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Decisions(ctx context.Context, in DecisionsInput) ([]DecisionsRow, error)
	Intents(ctx context.Context, in IntentsInput) ([]IntentRow, error)
}
