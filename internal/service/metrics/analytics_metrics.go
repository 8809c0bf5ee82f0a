package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	EndpointLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stockanalog",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of analog read endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	EndpointErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockanalog",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by analog endpoint",
		},
		[]string{"endpoint"},
	)

	BackfillProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockanalog",
			Subsystem: "backfill",
			Name:      "jobs_total",
			Help:      "Aftermath backfill jobs by outcome",
		},
		[]string{"outcome"},
	)
)

// Register adds the collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(EndpointLatency, EndpointErrors, BackfillProcessed)
	})
}
