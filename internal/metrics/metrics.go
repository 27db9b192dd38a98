// Package metrics holds the Prometheus collectors for the stage and the
// companion filter service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stage tracks rows flowing through text safety stage copies.
type Stage struct {
	// Rows counts enriched rows by result: safe, unsafe, skipped, api_error.
	Rows *prometheus.CounterVec
	// Failures counts classification failures by outcome kind and reason.
	Failures *prometheus.CounterVec
	// CallSeconds times calls to the safety service.
	CallSeconds prometheus.Histogram
}

// Service tracks requests served by the filter service.
type Service struct {
	Checks        *prometheus.CounterVec
	CheckSeconds  prometheus.Histogram
	ClassifyError prometheus.Counter
}

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// NewStage registers the stage collectors on reg.
func NewStage(reg prometheus.Registerer) *Stage {
	f := promauto.With(reg)
	return &Stage{
		Rows: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textsafety_stage_rows_total",
				Help: "Rows enriched by the text safety stage by result",
			},
			[]string{"result"},
		),
		Failures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textsafety_stage_failures_total",
				Help: "Safety service failures by outcome kind and reason",
			},
			[]string{"kind", "reason"},
		),
		CallSeconds: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "textsafety_stage_call_seconds",
				Help:    "Safety service call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// NewService registers the filter service collectors on reg.
func NewService(reg prometheus.Registerer) *Service {
	f := promauto.With(reg)
	return &Service{
		Checks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textsafety_service_checks_total",
				Help: "Texts checked by the filter service by verdict",
			},
			[]string{"verdict"},
		),
		CheckSeconds: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "textsafety_service_check_seconds",
				Help:    "Classifier latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		ClassifyError: f.NewCounter(
			prometheus.CounterOpts{
				Name: "textsafety_service_classifier_errors_total",
				Help: "Classifier failures answered with model_error",
			},
		),
	}
}

// Row records one emitted row. Safe to call on a nil Stage.
func (s *Stage) Row(result string) {
	if s == nil {
		return
	}
	s.Rows.WithLabelValues(result).Inc()
}

// Call records the latency of one service call and, when kind is not
// empty, a failure.
func (s *Stage) Call(d time.Duration, kind, reason string) {
	if s == nil {
		return
	}
	s.CallSeconds.Observe(d.Seconds())
	if kind != "" {
		s.Failures.WithLabelValues(kind, reason).Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
