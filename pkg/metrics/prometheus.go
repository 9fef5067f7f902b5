package metrics

import (
	"StockPulse/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchAttempts *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	cacheResults  *prometheus.CounterVec
	absences      *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
}

// New creates a recorder whose collectors are registered on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetchAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_fetch_attempts_total",
				Help: "Upstream fetch attempts by source",
			},
			[]string{"source"},
		),
		fetchFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_fetch_failures_total",
				Help: "Upstream fetch attempts that failed, by source",
			},
			[]string{"source"},
		),
		fetchLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpulse_fetch_duration_seconds",
				Help:    "Duration of single fetch attempts in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		cacheResults: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_cache_lookups_total",
				Help: "Read-through cache lookups by source and result",
			},
			[]string{"source", "result"},
		),
		absences: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_category_absent_total",
				Help: "Profile categories left absent after aggregation",
			},
			[]string{"category"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

func (r *Recorder) RecordFetchAttempt(source string) {
	r.fetchAttempts.WithLabelValues(source).Inc()
}

func (r *Recorder) RecordFetchFailure(source string) {
	r.fetchFailures.WithLabelValues(source).Inc()
}

func (r *Recorder) RecordFetchLatency(source string, seconds float64) {
	r.fetchLatency.WithLabelValues(source).Observe(seconds)
}

func (r *Recorder) RecordCacheResult(source string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheResults.WithLabelValues(source, result).Inc()
}

func (r *Recorder) RecordAbsence(category models.Category) {
	r.absences.WithLabelValues(string(category)).Inc()
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
