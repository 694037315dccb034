package domain

import "context"

// ServicePort defines the service contract for decision samples
type ServicePort interface {
	Recent(ctx context.Context, in SamplesInput) ([]Sample, error)
}
