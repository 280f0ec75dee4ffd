// Package metrics provides Prometheus metrics for routing, cost tracking
// and the prompt cache.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "taskforge"

// Collector owns the metric registry and the per-concern metric groups.
type Collector struct {
	registry *prometheus.Registry

	// Routing tracks request routing outcomes.
	Routing *RoutingMetrics

	// Cost tracks spending.
	Cost *CostMetrics

	// Cache tracks prompt cache effectiveness.
	Cache *CacheMetrics
}

// NewCollector creates a collector with its own registry, including the Go
// runtime and process collectors.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Collector{
		registry: registry,
		Routing:  newRoutingMetrics(registry),
		Cost:     newCostMetrics(registry),
		Cache:    newCacheMetrics(registry),
	}
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler serving the metrics in Prometheus
// exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
