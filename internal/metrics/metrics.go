// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package metrics exposes Prometheus counters and histograms for the
// engine's four operations, wrapping a dedicated *prometheus.Registry
// around whatever it instruments.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry wraps a dedicated prometheus.Registry so the engine's metrics
// never collide with whatever else a host process registers.
type Registry struct {
	reg *prometheus.Registry

	operations *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewRegistry builds a Registry with its metrics already registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relayprofile_operations_total",
			Help: "Number of profile engine operations performed, by kind.",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relayprofile_operation_failures_total",
			Help: "Number of profile engine operations that returned an error, by kind.",
		}, []string{"operation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relayprofile_operation_duration_seconds",
			Help:    "Duration of profile engine operations, by kind.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(r.operations, r.failures, r.duration)
	return r
}

// Gatherer exposes the underlying registry for an HTTP handler to serve.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Observe records one operation's outcome and duration.
func (r *Registry) Observe(operation string, took time.Duration, err error) {
	r.operations.WithLabelValues(operation).Inc()
	r.duration.WithLabelValues(operation).Observe(took.Seconds())
	if err != nil {
		r.failures.WithLabelValues(operation).Inc()
	}
}

// Track is a convenience wrapper: call it with defer at the top of an
// operation, passing a pointer to the error it will return.
//
//	defer metrics.Track(reg, "decode", time.Now(), &err)()
func Track(r *Registry, operation string, start time.Time, errp *error) func() {
	return func() {
		var err error
		if errp != nil {
			err = *errp
		}
		r.Observe(operation, time.Since(start), err)
	}
}
