package metrics

import "github.com/prometheus/client_golang/prometheus"

// Chat pipeline Prometheus metrics.
var (
	DocumentFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Name:      "document_fetch_total",
			Help:      "Total number of document fetches",
		},
		[]string{"status"}, // "success" / "error"
	)

	DocumentFetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docchat",
			Name:      "document_fetch_duration_seconds",
			Help:      "Document fetch and extraction duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	DocumentCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Name:      "document_cache_total",
			Help:      "Document chunk cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Name:      "generation_requests_total",
			Help:      "Total number of answer generation requests",
		},
		[]string{"model", "status"},
	)

	GenerationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docchat",
			Name:      "generation_request_duration_seconds",
			Help:      "Answer generation request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	GenerationTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Name:      "generation_tokens_total",
			Help:      "Total generation tokens consumed",
		},
		[]string{"model", "type"}, // type: "prompt" / "completion" / "total"
	)
)

var chatMetricsRegistered bool

// RegisterChatMetrics registers Prometheus chat pipeline metrics. Must be called once from main.
func RegisterChatMetrics() {
	if chatMetricsRegistered {
		return
	}
	prometheus.MustRegister(DocumentFetchTotal)
	prometheus.MustRegister(DocumentFetchDuration)
	prometheus.MustRegister(DocumentCacheTotal)
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationRequestDuration)
	prometheus.MustRegister(GenerationTokensTotal)
	chatMetricsRegistered = true
}
