// Package metrics exposes Prometheus counters for the sustainability service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sustainability"

// Recorder counts domain events. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	emissionsRecorded  *prometheus.CounterVec
	emissionsCO2eKg    *prometheus.CounterVec
	reportsGenerated   *prometheus.CounterVec
	initiativesCreated prometheus.Counter
}

// NewRecorder registers the service collectors on a fresh registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		emissionsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "footprints_recorded_total",
			Help:      "Carbon footprint records stored, by emission scope.",
		}, []string{"emission_type"}),
		emissionsCO2eKg: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recorded_co2e_kg_total",
			Help:      "Kilograms of CO2e recorded, by emission scope.",
		}, []string{"emission_type"}),
		reportsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "esg_reports_generated_total",
			Help:      "ESG reports generated, by period and performance tier.",
		}, []string{"period", "performance"}),
		initiativesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "green_initiatives_created_total",
			Help:      "Green initiatives created.",
		}),
	}

	r.registry.MustRegister(
		r.emissionsRecorded,
		r.emissionsCO2eKg,
		r.reportsGenerated,
		r.initiativesCreated,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return r
}

// FootprintRecorded counts one stored footprint and its total
func (r *Recorder) FootprintRecorded(emissionType string, co2eKg float64) {
	if r == nil {
		return
	}
	r.emissionsRecorded.WithLabelValues(emissionType).Inc()
	if co2eKg > 0 {
		r.emissionsCO2eKg.WithLabelValues(emissionType).Add(co2eKg)
	}
}

// ReportGenerated counts one stored ESG report
func (r *Recorder) ReportGenerated(period, performance string) {
	if r == nil {
		return
	}
	r.reportsGenerated.WithLabelValues(period, performance).Inc()
}

// InitiativeCreated counts one created initiative
func (r *Recorder) InitiativeCreated() {
	if r == nil {
		return
	}
	r.initiativesCreated.Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
