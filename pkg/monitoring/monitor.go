package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// RecommendationRuns 推荐次数，outcome 为 ok / empty / error
	RecommendationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_runs_total",
			Help: "Total number of recommendation runs by outcome",
		},
		[]string{"outcome"},
	)

	RecommendationCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_candidates",
			Help:    "Number of eligible candidates per recommendation run",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	RecommendationSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_skipped_candidates_total",
			Help: "Candidates skipped because a lookup failed",
		},
	)

	RecommendationWeightFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_weight_fallbacks_total",
			Help: "Runs that used the default weights because the window was unusable",
		},
	)

	RecommendationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Duration of recommendation runs",
			Buckets: prometheus.DefBuckets,
		},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			RecommendationRuns,
			RecommendationCandidates,
			RecommendationSkipped,
			RecommendationWeightFallbacks,
			RecommendationDuration,
		)
	})
}

// ObserveRecommendation 记录一次推荐的结果
func ObserveRecommendation(outcome string, candidates, skipped int, fallback bool, elapsed time.Duration) {
	RecommendationRuns.WithLabelValues(outcome).Inc()
	RecommendationCandidates.Observe(float64(candidates))
	RecommendationSkipped.Add(float64(skipped))
	if fallback {
		RecommendationWeightFallbacks.Inc()
	}
	RecommendationDuration.Observe(elapsed.Seconds())
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
