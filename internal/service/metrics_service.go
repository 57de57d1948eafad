package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsService encapsulates Prometheus instrumentation for pipeline
// runs. The registry is local to the process; counters accumulate across
// runs within the same process lifetime.
type MetricsService struct {
	registry         *prometheus.Registry
	recordsExtracted *prometheus.CounterVec
	factsLoaded      prometheus.Counter
	recordsSkipped   *prometheus.CounterVec
	phaseDuration    *prometheus.HistogramVec
}

// NewMetricsService registers the pipeline collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	recordsExtracted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_records_extracted_total",
		Help: "Raw records extracted from the source store per entity",
	}, []string{"entity"})

	factsLoaded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "etl_facts_loaded_total",
		Help: "Fact rows inserted into the warehouse",
	})

	recordsSkipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_submissions_skipped_total",
		Help: "Submissions dropped for unresolved dimension references",
	}, []string{"reason"})

	phaseDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "etl_phase_duration_seconds",
		Help:    "Duration of each pipeline phase",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	registry.MustRegister(recordsExtracted, factsLoaded, recordsSkipped, phaseDuration)

	return &MetricsService{
		registry:         registry,
		recordsExtracted: recordsExtracted,
		factsLoaded:      factsLoaded,
		recordsSkipped:   recordsSkipped,
		phaseDuration:    phaseDuration,
	}
}

// Registry exposes the underlying registry for scraping or debugging.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveExtracted records the extracted count for one source entity.
func (m *MetricsService) ObserveExtracted(entity string, count int) {
	m.recordsExtracted.WithLabelValues(entity).Add(float64(count))
}

// ObserveFactsLoaded records the number of inserted fact rows.
func (m *MetricsService) ObserveFactsLoaded(count int64) {
	m.factsLoaded.Add(float64(count))
}

// ObserveSkipped records dropped submissions by reason.
func (m *MetricsService) ObserveSkipped(reason string, count int) {
	m.recordsSkipped.WithLabelValues(reason).Add(float64(count))
}

// ObservePhase records the duration of a pipeline phase.
func (m *MetricsService) ObservePhase(phase string, d time.Duration) {
	m.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}
