// Package observability exposes the Prometheus metrics surface.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	GraphsServed     prometheus.Counter
	DocumentsCreated prometheus.Counter
	SnapshotsStored  prometheus.Counter
	AuthFailures     prometheus.Counter
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	graphsServed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graphs_served_total",
			Help:      "Total number of graph documents served",
		},
	)

	documentsCreated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_created_total",
			Help:      "Total number of document revisions created",
		},
	)

	snapshotsStored := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_stored_total",
			Help:      "Total number of snapshot rows stored",
		},
	)

	authFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Total number of failed authentication attempts",
		},
	)

	registry.MustRegister(httpRequests, httpDuration,
		graphsServed, documentsCreated, snapshotsStored, authFailures)

	return &Collector{
		registry:         registry,
		HTTPRequests:     httpRequests,
		HTTPDuration:     httpDuration,
		GraphsServed:     graphsServed,
		DocumentsCreated: documentsCreated,
		SnapshotsStored:  snapshotsStored,
		AuthFailures:     authFailures,
	}
}

// Registry returns the registry backing this collector, for the exposition
// endpoint.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
