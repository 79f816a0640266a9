package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/paralegal/internal/domain"
	"github.com/kailas-cloud/paralegal/internal/logger"
	"github.com/kailas-cloud/paralegal/internal/metrics"
	healthuc "github.com/kailas-cloud/paralegal/internal/usecase/health"
)

// Error codes returned in the "code" field of error bodies.
const (
	CodeBadRequest             = "bad_request"
	CodeValidationFailed       = "validation_failed"
	CodeUnauthorized           = "unauthorized"
	CodeEmbeddingProviderError = "embedding_provider_error"
	CodeInternalError          = "internal_error"
)

const apiMessage = "Paralegal RAG Agent API"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the paralegal HTTP API.
type Server struct {
	query         QueryService
	health        HealthService
	defaultMax    int
	version       string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// Option configures a Server.
type Option func(*Server)

// WithDefaultMaxResults sets max_results used when the request omits it.
func WithDefaultMaxResults(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.defaultMax = n
		}
	}
}

// WithVersion sets the version reported by GET /.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer creates an HTTP API server.
func NewServer(query QueryService, health HealthService, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		query:      query,
		health:     health,
		defaultMax: domain.DefaultMaxResults,
		version:    "dev",
		logger:     logger,
	}
	for _, o := range opts {
		o(s)
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.Root)
	r.Post("/query", s.Query)
	r.Get("/health", s.Health)
	r.Get("/ready", s.Ready)
	r.Handle("/metrics", promhttp.Handler())
}

// Handler returns a router with the API routes and the given middlewares.
func (s *Server) Handler(middlewares ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewares...)
	s.Register(r)
	return r
}

type rootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

type queryRequest struct {
	Query      string `json:"query"`
	MaxResults *int   `json:"max_results"`
}

type sourceResponse struct {
	Content        string          `json:"content"`
	Metadata       domain.Metadata `json:"metadata"`
	RelevanceScore float64         `json:"relevance_score"`
}

type queryResponse struct {
	Answer     string           `json:"answer"`
	Sources    []sourceResponse `json:"sources"`
	Confidence float64          `json:"confidence"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type errorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{Message: apiMessage, Version: s.version})
}

// Query handles POST /query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q := domain.Query{Text: req.Query, MaxResults: s.defaultMax}
	if req.MaxResults != nil {
		q.MaxResults = *req.MaxResults
	}

	ans, err := s.query.Query(r.Context(), q.Text, q.MaxResults)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if ans.Degraded {
		metrics.SetOutcome(r.Context(), metrics.OutcomeDegraded)
	} else {
		metrics.SetOutcome(r.Context(), metrics.OutcomeAnswered)
	}
	writeJSON(w, http.StatusOK, answerToResponse(ans))
}

// Health handles GET /health. It answers as long as the process serves requests.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: string(healthuc.Healthy)})
}

// Ready handles GET /ready.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func answerToResponse(ans domain.Answer) queryResponse {
	sources := make([]sourceResponse, len(ans.Sources))
	for i, src := range ans.Sources {
		sources[i] = sourceResponse{
			Content:        src.Content,
			Metadata:       src.Metadata,
			RelevanceScore: src.RelevanceScore,
		}
	}
	return queryResponse{
		Answer:     ans.Answer,
		Sources:    sources,
		Confidence: ans.Confidence,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorResponse{Code: code, Detail: detail})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, err.Error())
}
