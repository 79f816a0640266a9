package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "healthy"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const defaultCheckTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type check struct {
	name string
	fn   func(ctx context.Context) error
}

// Service coordinates readiness checks.
type Service struct {
	checks  []check
	timeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithProvider adds a provider check under name. A nil checker is ignored.
func WithProvider(name string, p ProviderChecker) Option {
	return func(s *Service) {
		if p != nil {
			s.checks = append(s.checks, check{name: name, fn: p.HealthCheck})
		}
	}
}

// WithTimeout bounds each individual check.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a Service that always checks the document store.
func New(db Pinger, opts ...Option) *Service {
	s := &Service{
		checks:  []check{{name: "database", fn: db.Ping}},
		timeout: defaultCheckTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Check runs every registered check.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.checks))
	status := Healthy

	for _, c := range s.checks {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := c.fn(cctx)
		cancel()

		if err != nil {
			checks[c.name] = CheckError
			status = Degraded
			continue
		}
		checks[c.name] = CheckOK
	}

	return Report{Status: status, Checks: checks}
}
