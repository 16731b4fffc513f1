// Package metrics exposes Prometheus collectors for query execution.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors groups the query metrics. Create one per registry with New.
type Collectors struct {
	// QueriesTotal counts queries by filter shape and outcome.
	QueriesTotal *prometheus.CounterVec

	// QueryDuration is the wall time of successful queries.
	QueryDuration *prometheus.HistogramVec

	// RecordsTotal counts records per pipeline stage: lines read, visible
	// after the marker check, and matched by the filter.
	RecordsTotal *prometheus.CounterVec

	// FailuresTotal counts failed queries by error code.
	FailuresTotal *prometheus.CounterVec
}

// New registers the collectors on reg. Passing nil uses a private registry,
// which keeps tests and repeated constructions from colliding.
func New(reg prometheus.Registerer) *Collectors {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Collectors{
		QueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doclog_queries_total",
				Help: "Total number of queries executed",
			},
			[]string{"shape", "status"},
		),
		QueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "doclog_query_duration_seconds",
				Help:    "Query latency in seconds, read through projection",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"shape"},
		),
		RecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doclog_records_total",
				Help: "Total number of log records seen per pipeline stage",
			},
			[]string{"stage"},
		),
		FailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "doclog_query_failures_total",
				Help: "Total number of failed queries by error code",
			},
			[]string{"code"},
		),
	}
}

// QueryCompleted records a successful query.
func (c *Collectors) QueryCompleted(shape string, lines, visible, matched int, elapsed time.Duration) {
	c.QueriesTotal.WithLabelValues(shape, "ok").Inc()
	c.QueryDuration.WithLabelValues(shape).Observe(elapsed.Seconds())
	c.RecordsTotal.WithLabelValues("read").Add(float64(lines))
	c.RecordsTotal.WithLabelValues("visible").Add(float64(visible))
	c.RecordsTotal.WithLabelValues("matched").Add(float64(matched))
}

// QueryFailed records a failed query.
func (c *Collectors) QueryFailed(shape, code string) {
	if code == "" {
		code = "unknown"
	}
	c.QueriesTotal.WithLabelValues(shape, "error").Inc()
	c.FailuresTotal.WithLabelValues(code).Inc()
}

// Handler serves the metrics of gatherer in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
