package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// StatusTransitionsTotal counts applied grievance status transitions.
	StatusTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grievance_status_transitions_total",
			Help: "Total number of applied grievance status transitions.",
		},
		[]string{"to_status"},
	)

	// AssignmentsTotal counts successful worker bindings by entry path.
	AssignmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grievance_assignments_total",
			Help: "Total number of successful grievance assignments.",
		},
		[]string{"path"}, // direct | approval
	)

	// AssignmentConflictsTotal counts assignments refused because the
	// grievance was already bound.
	AssignmentConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grievance_assignment_conflicts_total",
			Help: "Total number of assignment attempts lost to the already-assigned check.",
		},
	)

	// VotesTotal counts applied community vote toggles.
	VotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grievance_votes_total",
			Help: "Total number of applied community vote toggles.",
		},
		[]string{"direction"},
	)
)

// Init registers all collectors with the default registry.
func Init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		StatusTransitionsTotal,
		AssignmentsTotal,
		AssignmentConflictsTotal,
		VotesTotal,
	)
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument is a Gin middleware recording request counts and latencies.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
	}
}
