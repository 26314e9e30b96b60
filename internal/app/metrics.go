package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors of one App. Each App owns its registry so
// several instances can coexist in one process.
type Metrics struct {
	Registry *prometheus.Registry

	Uploads    *prometheus.CounterVec
	Transforms *prometheus.CounterVec
	Latency    prometheus.Histogram
	InFlight   prometheus.Gauge
	Templates  prometheus.Gauge
}

// NewMetrics registers the application collectors plus the Go and process
// collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		Uploads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "restyle_uploads_total",
			Help: "Template uploads by format and outcome.",
		}, []string{"format", "outcome"}),
		Transforms: f.NewCounterVec(prometheus.CounterOpts{
			Name: "restyle_transforms_total",
			Help: "Transformations by render mode and outcome.",
		}, []string{"mode", "outcome"}),
		Latency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "restyle_transform_duration_seconds",
			Help:    "Duration of completed model calls.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "restyle_transforms_in_flight",
			Help: "Transformations currently waiting on the model.",
		}),
		Templates: f.NewGauge(prometheus.GaugeOpts{
			Name: "restyle_templates",
			Help: "Templates held by the session.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
