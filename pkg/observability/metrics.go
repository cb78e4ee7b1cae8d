package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the handler
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// Invocation metrics
	Invocations        *prometheus.CounterVec
	InvocationDuration *prometheus.HistogramVec

	// Dependency metrics
	ConfigLoads *prometheus.CounterVec
	Connects    *prometheus.CounterVec
	Upserts     *prometheus.CounterVec
	Publishes   *prometheus.CounterVec
}

// NewCollector creates a new metrics collector with the given namespace on a
// private registry, so several collectors can coexist in tests.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		Invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invocations_total",
				Help:      "Total number of handled events by final stage and error type",
			},
			[]string{"stage", "error_type"},
		),
		InvocationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "invocation_duration_seconds",
				Help:      "Event handling duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		ConfigLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_loads_total",
				Help:      "Configuration fetches by source and status",
			},
			[]string{"source", "status"},
		),
		Connects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_connects_total",
				Help:      "Database connection attempts by status",
			},
			[]string{"status"},
		),
		Upserts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "draft_upserts_total",
				Help:      "Draft upserts by result",
			},
			[]string{"result"},
		),
		Publishes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "event_publishes_total",
				Help:      "DraftSynced publishes by status",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		c.Invocations,
		c.InvocationDuration,
		c.ConfigLoads,
		c.Connects,
		c.Upserts,
		c.Publishes,
	)

	return c
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordInvocation records the stage an invocation ended in
func (c *Collector) RecordInvocation(_ context.Context, stage string, errType string, duration time.Duration) {
	c.Invocations.WithLabelValues(stage, errType).Inc()
	c.InvocationDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordConfigLoad records a configuration fetch
func (c *Collector) RecordConfigLoad(source string, err error) {
	c.ConfigLoads.WithLabelValues(source, status(err)).Inc()
}

// RecordConnect records a connection attempt
func (c *Collector) RecordConnect(err error) {
	c.Connects.WithLabelValues(status(err)).Inc()
}

// RecordUpsert records a draft write
func (c *Collector) RecordUpsert(inserted bool, err error) {
	result := "updated"
	switch {
	case err != nil:
		result = StatusFailure
	case inserted:
		result = "inserted"
	}
	c.Upserts.WithLabelValues(result).Inc()
}

// RecordPublish records a DraftSynced publish
func (c *Collector) RecordPublish(err error) {
	c.Publishes.WithLabelValues(status(err)).Inc()
}
