package chi

import (
	"context"

	"github.com/kailas-cloud/paralegal/internal/domain"
	healthuc "github.com/kailas-cloud/paralegal/internal/usecase/health"
)

// QueryService answers a question from retrieved passages.
type QueryService interface {
	Query(ctx context.Context, text string, maxResults int) (domain.Answer, error)
}

// HealthService reports readiness of the backing components.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
