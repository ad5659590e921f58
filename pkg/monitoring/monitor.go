package monitoring

import (
	"strconv"
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

	// 异步评估流水线指标
	EvaluationsTriggered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tbei_evaluations_triggered_total",
			Help: "Total number of asynchronous TBEI evaluations triggered by submissions",
		},
	)

	EvaluationResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tbei_evaluation_results_total",
			Help: "TBEI evaluation outcomes by result",
		},
		[]string{"result"}, // success, failed
	)

	EvaluationsDeadLettered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tbei_evaluations_dead_lettered_total",
			Help: "Failed asynchronous evaluations recorded to the dead letter log",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(EvaluationsTriggered)
	prometheus.MustRegister(EvaluationResults)
	prometheus.MustRegister(EvaluationsDeadLettered)
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
