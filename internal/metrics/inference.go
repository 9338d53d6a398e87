package metrics

import "github.com/prometheus/client_golang/prometheus"

// Inference Prometheus metrics.
var (
	PredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "soluscan",
			Name:      "predictions_total",
			Help:      "Total number of single-pair predictions",
		},
		[]string{"status"}, // "ok" / "invalid"
	)

	PredictionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "soluscan",
			Name:      "prediction_duration_seconds",
			Help:      "Single-pair forward pass duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	BatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "soluscan",
			Name:      "batch_size",
			Help:      "Number of queries per prediction batch",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 420, 1000},
		},
	)

	ScreeningDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "soluscan",
			Name:      "screening_duration_seconds",
			Help:      "Full solvent screening duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	GraphCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "soluscan",
			Name:      "graph_cache_total",
			Help:      "Featurized graph cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var inferenceMetricsRegistered bool

// RegisterInferenceMetrics registers Prometheus inference metrics. Must be called once from main.
func RegisterInferenceMetrics() {
	if inferenceMetricsRegistered {
		return
	}
	prometheus.MustRegister(PredictionsTotal)
	prometheus.MustRegister(PredictionDuration)
	prometheus.MustRegister(BatchSize)
	prometheus.MustRegister(ScreeningDuration)
	prometheus.MustRegister(GraphCacheTotal)
	inferenceMetricsRegistered = true
}
