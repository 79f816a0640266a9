package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query pipeline Prometheus metrics.
var (
	QueryDegradedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_degraded_total",
			Help:      "Queries answered with the degraded fallback after a synthesis failure",
		},
	)

	QueryConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_confidence",
			Help:      "Confidence reported for answered queries",
			Buckets:   []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
	)

	QueryRetrievedDocuments = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_retrieved_documents",
			Help:      "Number of passages retrieved per query",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		},
	)

	SeededDocumentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seeded_documents_total",
			Help:      "Corpus documents written to the store",
		},
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers Prometheus query metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueryDegradedTotal)
	prometheus.MustRegister(QueryConfidence)
	prometheus.MustRegister(QueryRetrievedDocuments)
	prometheus.MustRegister(SeededDocumentsTotal)
	queryMetricsRegistered = true
}
