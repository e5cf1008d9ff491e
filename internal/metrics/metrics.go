// Package metrics exposes Prometheus collectors for HTTP traffic, interview sessions and
// code execution.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "prepdeck"

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	interviewSessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interview_sessions_total",
			Help:      "Interview sessions by lifecycle event",
		},
		[]string{"event"}, // started, completed, cancelled, persist_failed
	)

	interviewSessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "interview_sessions_active",
			Help:      "Number of live interview sessions",
		},
	)

	interviewTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interview_turns_total",
			Help:      "Recorded interview turns by outcome",
		},
		[]string{"outcome"}, // answered, no_response, scoring_failed
	)

	llmRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Duration of LLM provider calls in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider", "operation", "status"},
	)

	codeExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "code_executions_total",
			Help:      "Remote code executions by language and status",
		},
		[]string{"language", "status"}, // status: success, error
	)

	allMetrics = []prometheus.Collector{
		httpRequestDuration,
		interviewSessionsTotal,
		interviewSessionsActive,
		interviewTurnsTotal,
		llmRequestDuration,
		codeExecutionsTotal,
	}
)

// NewRegistry returns a registry holding every application collector plus Go runtime metrics.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	for _, c := range allMetrics {
		reg.MustRegister(c)
	}
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) gin.HandlerFunc {
	h := promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
	return gin.WrapH(h)
}

// Middleware records request latency keyed by the matched route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func RecordSessionStarted() {
	interviewSessionsTotal.WithLabelValues("started").Inc()
	interviewSessionsActive.Inc()
}

// RecordSessionEnded records a session leaving the live set. event is "completed" or "cancelled".
func RecordSessionEnded(event string) {
	interviewSessionsTotal.WithLabelValues(event).Inc()
	interviewSessionsActive.Dec()
}

func RecordPersistFailure() {
	interviewSessionsTotal.WithLabelValues("persist_failed").Inc()
}

func RecordTurn(outcome string) {
	interviewTurnsTotal.WithLabelValues(outcome).Inc()
}

func RecordLLMRequest(provider, operation, status string, duration time.Duration) {
	llmRequestDuration.WithLabelValues(provider, operation, status).Observe(duration.Seconds())
}

func RecordCodeExecution(language, status string) {
	codeExecutionsTotal.WithLabelValues(language, status).Inc()
}
