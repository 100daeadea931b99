package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StorageErrCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamsched",
		Subsystem: "storage",
		Name:      "err_count",
	}, []string{"backend", "method"})
	StorageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "teamsched",
		Subsystem: "storage",
		Name:      "duration_seconds",
	}, []string{"backend", "method"})
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamsched",
		Subsystem: "http",
		Name:      "requests_total",
	}, []string{"method", "route", "status"})
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "teamsched",
		Subsystem: "http",
		Name:      "request_duration_seconds",
	}, []string{"method", "route"})
	VotesSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamsched",
		Subsystem: "voting",
		Name:      "votes_submitted_total",
	}, []string{"preference"})
)

// ObserveStorage records the duration of a storage call and counts it as failed when err is set.
func ObserveStorage(backend, method string, start time.Time, err error) {
	StorageDuration.WithLabelValues(backend, method).Observe(time.Since(start).Seconds())
	if err != nil {
		StorageErrCount.WithLabelValues(backend, method).Inc()
	}
}
