package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reviewlens_analysis_duration_seconds",
			Help:    "Full pipeline run duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"status"},
	)

	AnalysisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewlens_analysis_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"status"},
	)

	ReviewsCollected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reviewlens_reviews_collected_total",
			Help: "Total reviews collected across runs",
		},
	)

	CollectorIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reviewlens_collector_iterations",
			Help:    "Scroll-and-extract iterations per run",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500},
		},
	)

	CollectorStalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewlens_collector_stalls_total",
			Help: "Collection runs terminated by a stall",
		},
		[]string{"reason"},
	)

	SentimentLabels = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewlens_sentiment_labels_total",
			Help: "Review classifications by label",
		},
		[]string{"label"},
	)

	CandidateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewlens_candidate_transitions_total",
			Help: "USP candidate lifecycle transitions",
		},
		[]string{"transition"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewlens_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewlens_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)
)

func Init() {
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(AnalysisTotal)
	prometheus.MustRegister(ReviewsCollected)
	prometheus.MustRegister(CollectorIterations)
	prometheus.MustRegister(CollectorStalls)
	prometheus.MustRegister(SentimentLabels)
	prometheus.MustRegister(CandidateTransitions)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
