package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_RecordsDurationAndCount(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/", "200", OutcomeOK))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/", "200", OutcomeOK)); v != before+1 {
		t.Errorf("expected http_requests_total to grow by 1, got %f -> %f", before, v)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

// Degraded answers are 200s; only the outcome label tells them apart.
func TestMiddleware_HandlerOutcome(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/query", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fail") != "" {
			SetOutcome(r.Context(), OutcomeDegraded)
		} else {
			SetOutcome(r.Context(), OutcomeAnswered)
		}
		_, _ = w.Write([]byte(`{}`))
	})

	answered := httpRequestsTotal.WithLabelValues("POST", "/query", "200", OutcomeAnswered)
	degraded := httpRequestsTotal.WithLabelValues("POST", "/query", "200", OutcomeDegraded)
	a0, d0 := testutil.ToFloat64(answered), testutil.ToFloat64(degraded)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{}`)))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/query?fail=1", strings.NewReader(`{}`)))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/query?fail=1", strings.NewReader(`{}`)))

	if got := testutil.ToFloat64(answered) - a0; got != 1 {
		t.Errorf("answered count grew by %v, want 1", got)
	}
	if got := testutil.ToFloat64(degraded) - d0; got != 2 {
		t.Errorf("degraded count grew by %v, want 2", got)
	}
}

func TestMiddleware_StatusOutcomes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	r.Post("/query", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	tests := []struct {
		method, path, status, outcome string
	}{
		{"GET", "/ready", "503", OutcomeFailed},
		{"POST", "/query", "400", OutcomeRejected},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, http.NoBody)
			r.ServeHTTP(httptest.NewRecorder(), req)

			if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.path, tc.status, tc.outcome)); v < 1 {
				t.Errorf("expected requests_total for %s %s %s/%s >= 1, got %f",
					tc.method, tc.path, tc.status, tc.outcome, v)
			}
		})
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nope", http.NoBody))

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404", OutcomeRejected)); v < 1 {
		t.Errorf("expected unmatched request labelled %s, got %f", unmatchedRoute, v)
	}
}

func TestSetOutcome_OutsideMiddleware(t *testing.T) {
	// Must not panic without a holder in the context.
	SetOutcome(httptest.NewRequest("GET", "/", http.NoBody).Context(), OutcomeDegraded)
}

func TestRegister_Exposition(t *testing.T) {
	RegisterEmbeddingMetrics()
	RegisterLLMMetrics()
	RegisterQueryMetrics()
	// Second round must not panic on duplicate registration.
	RegisterEmbeddingMetrics()
	RegisterLLMMetrics()
	RegisterQueryMetrics()

	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", http.NoBody))

	QueryDegradedTotal.Inc()
	LLMRequestsTotal.WithLabelValues("gpt-3.5-turbo", "success").Inc()

	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", http.NoBody))

	body, err := io.ReadAll(rr.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	for _, name := range []string{
		"paralegal_query_degraded_total",
		"paralegal_llm_requests_total",
		`paralegal_http_requests_total{method="GET",outcome="ok",route="/",status="200"}`,
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("expected %s in exposition", name)
		}
	}
}
