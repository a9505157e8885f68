package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hyperterse/druidfamiliar/core/shared/errors"
)

// Metrics records query round-trips. A nil *Metrics is valid and records nothing.
type Metrics struct {
	queriesTotal   *prometheus.CounterVec
	queryDuration  *prometheus.HistogramVec
	responseStatus *prometheus.CounterVec
}

// NewMetrics registers the query collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		queriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "druid_client_queries_total",
				Help: "Total number of Druid queries by HTTP method and outcome",
			},
			[]string{"method", "outcome"},
		),
		queryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "druid_client_query_duration_seconds",
				Help:    "Druid query round-trip duration in seconds, including response handling",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		responseStatus: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "druid_client_responses_total",
				Help: "Total number of HTTP responses received from the broker by status class",
			},
			[]string{"class"},
		),
	}
}

// ObserveQuery records one query outcome. The outcome label is the error code,
// or "ok" on success.
func (m *Metrics) ObserveQuery(method string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.queriesTotal.WithLabelValues(method, Outcome(err)).Inc()
	m.queryDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// ObserveStatus records the status code class of a broker response
func (m *Metrics) ObserveStatus(statusCode int) {
	if m == nil {
		return
	}
	m.responseStatus.WithLabelValues(StatusClass(statusCode)).Inc()
}

// Outcome maps an error to its metric label
func Outcome(err error) string {
	if err == nil {
		return outcomeOK
	}
	if code := errors.Code(err); code != "" {
		return string(code)
	}
	return outcomeUnknown
}

// StatusClass returns "2xx", "4xx", ... for a status code
func StatusClass(statusCode int) string {
	if statusCode < 100 || statusCode > 599 {
		return "other"
	}
	return string(rune('0'+statusCode/100)) + "xx"
}
