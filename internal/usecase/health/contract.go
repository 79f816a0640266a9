package health

import "context"

// Pinger checks document store availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks an external provider (embedding or language model).
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}
