package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	queryLatency *prometheus.HistogramVec
	candidates   *prometheus.HistogramVec
	analogs      *prometheus.HistogramVec
	errorsTotal  *prometheus.CounterVec
	cacheTotal   *prometheus.CounterVec
}

// New creates a recorder registered on reg. A nil reg uses the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		queryLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockanalog_query_duration_seconds",
				Help:    "Duration of engine store queries in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		candidates: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockanalog_candidates_per_query",
				Help:    "Scored candidates produced per analog search",
				Buckets: []float64{0, 1, 3, 10, 30, 100, 300, 1000},
			},
			[]string{"instrument_id"},
		),
		analogs: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockanalog_analogs_returned",
				Help:    "Ranked analogs returned per search",
				Buckets: []float64{0, 1, 2, 3, 5, 10},
			},
			[]string{"instrument_id"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockanalog_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		cacheTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockanalog_cache_requests_total",
				Help: "Response cache lookups by outcome",
			},
			[]string{"hit"},
		),
	}
}

// RecordQuery records store query latency in seconds.
func (r *Recorder) RecordQuery(op string, seconds float64) {
	r.queryLatency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordCandidates(instrumentID string, n int) {
	r.candidates.WithLabelValues(instrumentID).Observe(float64(n))
}

func (r *Recorder) RecordAnalogs(instrumentID string, n int) {
	r.analogs.WithLabelValues(instrumentID).Observe(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordCache(hit bool) {
	r.cacheTotal.WithLabelValues(strconv.FormatBool(hit)).Inc()
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordQuery(string, float64)  {}
func (Nop) RecordCandidates(string, int) {}
func (Nop) RecordAnalogs(string, int)    {}
func (Nop) RecordError(string)           {}
func (Nop) RecordCache(bool)             {}
