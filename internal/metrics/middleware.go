package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// namespace prefixes every metric exported by the service.
const namespace = "paralegal"

// Request outcomes. Handlers may set a finer outcome with SetOutcome;
// otherwise it follows the status class.
const (
	OutcomeOK       = "ok"
	OutcomeAnswered = "answered"
	OutcomeDegraded = "degraded"
	OutcomeRejected = "rejected" // 4xx
	OutcomeFailed   = "failed"   // 5xx
)

const unmatchedRoute = "unmatched"

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "outcome"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route, status and outcome",
		},
		[]string{"method", "route", "status", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
}

type outcomeKey struct{}

// SetOutcome overrides the outcome label of the request carried by ctx.
// It does nothing outside Middleware.
func SetOutcome(ctx context.Context, outcome string) {
	if p, ok := ctx.Value(outcomeKey{}).(*string); ok {
		*p = outcome
	}
}

// Middleware records HTTP request duration and count.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			var outcome string
			r = r.WithContext(context.WithValue(r.Context(), outcomeKey{}, &outcome))
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if outcome == "" {
				outcome = statusOutcome(status)
			}
			route := routePattern(r)

			httpRequestDuration.WithLabelValues(r.Method, route, outcome).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status), outcome).Inc()
		})
	}
}

// routePattern returns the matched chi pattern so labels stay bounded.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.RoutePattern() == "" {
		return unmatchedRoute
	}
	return rctx.RoutePattern()
}

func statusOutcome(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return OutcomeFailed
	case status >= http.StatusBadRequest:
		return OutcomeRejected
	default:
		return OutcomeOK
	}
}
