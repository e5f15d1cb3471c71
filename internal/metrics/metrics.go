// Package metrics exposes dispatcher activity as Prometheus metrics
package metrics

import (
	"net/http"

	"github.com/KirkDiggler/dispatcher/internal/dispatcher"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dispatcher"

// Collector implements dispatcher.Observer by counting publishes and deliveries
type Collector struct {
	registry *prometheus.Registry

	publishes   *prometheus.CounterVec
	subscribers *prometheus.HistogramVec
	deliveries  *prometheus.CounterVec
	failures    *prometheus.CounterVec
}

// New creates a Collector with its own registry, including Go runtime collectors
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publishes_total",
			Help:      "Number of publishes by event and publish mode.",
		}, []string{"event", "mode"}),
		subscribers: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_subscribers",
			Help:      "Snapshot size seen by each publish.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"event"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Number of callback invocations by event.",
		}, []string{"event"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callback_failures_total",
			Help:      "Number of callbacks that returned an error or panicked.",
		}, []string{"event"}),
	}

	c.registry.MustRegister(
		c.publishes,
		c.subscribers,
		c.deliveries,
		c.failures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Published implements dispatcher.Observer
func (c *Collector) Published(event string, mode dispatcher.Mode, subscribers int) {
	c.publishes.WithLabelValues(event, mode.String()).Inc()
	c.subscribers.WithLabelValues(event).Observe(float64(subscribers))
}

// Delivered implements dispatcher.Observer
func (c *Collector) Delivered(event, _ string, err error) {
	c.deliveries.WithLabelValues(event).Inc()
	if err != nil {
		c.failures.WithLabelValues(event).Inc()
	}
}

// Registry returns the registry the collector's metrics live in
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
