// collector.go: OpenTelemetry-backed loom.MetricsCollector
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package otel

import (
	"context"
	"errors"

	"github.com/agilira/loom"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetricsCollector implements loom.MetricsCollector using OpenTelemetry.
//
// Thread-safety: safe for concurrent use. The underlying OTEL instruments
// are thread-safe and lock-free.
type OTelMetricsCollector struct {
	executeLatency  metric.Int64Histogram
	syncLatency     metric.Int64Histogram
	reclaimTotal    metric.Int64Counter
	reclaimPressure metric.Float64Histogram
	eventOverflow   metric.Int64Counter
	staleSystem     metric.Int64Counter
	workerLatency   metric.Int64Histogram
	workerFailures  metric.Int64Counter
}

// Options configures OTelMetricsCollector.
type Options struct {
	// MeterName is the OpenTelemetry meter name. Default: "github.com/agilira/loom"
	MeterName string
}

type Option func(*Options)

func WithMeterName(name string) Option {
	return func(o *Options) { o.MeterName = name }
}

// NewOTelMetricsCollector creates a collector bound to the given
// MeterProvider. provider must not be nil.
func NewOTelMetricsCollector(provider metric.MeterProvider, opts ...Option) (*OTelMetricsCollector, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}

	options := Options{MeterName: "github.com/agilira/loom"}
	for _, opt := range opts {
		opt(&options)
	}

	meter := provider.Meter(options.MeterName)
	c := &OTelMetricsCollector{}

	var err error
	if c.executeLatency, err = meter.Int64Histogram(
		"loom_execute_latency_ns",
		metric.WithDescription("Latency of Executor.Execute in nanoseconds"),
		metric.WithUnit("ns"),
	); err != nil {
		return nil, err
	}
	if c.syncLatency, err = meter.Int64Histogram(
		"loom_sync_latency_ns",
		metric.WithDescription("Latency of World.NextSync in nanoseconds"),
		metric.WithUnit("ns"),
	); err != nil {
		return nil, err
	}
	if c.reclaimTotal, err = meter.Int64Counter(
		"loom_reclaim_total",
		metric.WithDescription("Entity ids returned to the pool"),
	); err != nil {
		return nil, err
	}
	if c.reclaimPressure, err = meter.Float64Histogram(
		"loom_reclaim_pressure",
		metric.WithDescription("Pending-reclaim ratio observed at each reclamation pass"),
	); err != nil {
		return nil, err
	}
	if c.eventOverflow, err = meter.Int64Counter(
		"loom_event_overflow_total",
		metric.WithDescription("Query cache overflow events by reader"),
	); err != nil {
		return nil, err
	}
	if c.staleSystem, err = meter.Int64Counter(
		"loom_stale_system_total",
		metric.WithDescription("Systems excluded from the reclamation watermark"),
	); err != nil {
		return nil, err
	}
	if c.workerLatency, err = meter.Int64Histogram(
		"loom_worker_job_latency_ns",
		metric.WithDescription("Latency of SetupWorker dispatches in nanoseconds"),
		metric.WithUnit("ns"),
	); err != nil {
		return nil, err
	}
	if c.workerFailures, err = meter.Int64Counter(
		"loom_worker_job_failures_total",
		metric.WithDescription("Failed SetupWorker dispatches"),
	); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *OTelMetricsCollector) RecordExecute(latencyNs int64, systemCount int) {
	ctx := context.Background()
	c.executeLatency.Record(ctx, latencyNs, metric.WithAttributes(attribute.Int("system_count", systemCount)))
}

func (c *OTelMetricsCollector) RecordSync(latencyNs int64) {
	c.syncLatency.Record(context.Background(), latencyNs)
}

func (c *OTelMetricsCollector) RecordReclaim(reclaimed int, pressure float64) {
	ctx := context.Background()
	c.reclaimTotal.Add(ctx, int64(reclaimed))
	c.reclaimPressure.Record(ctx, pressure)
}

func (c *OTelMetricsCollector) RecordEventOverflow(readerID string) {
	c.eventOverflow.Add(context.Background(), 1, metric.WithAttributes(attribute.String("reader", readerID)))
}

func (c *OTelMetricsCollector) RecordStaleSystem(systemID string) {
	c.staleSystem.Add(context.Background(), 1, metric.WithAttributes(attribute.String("system", systemID)))
}

func (c *OTelMetricsCollector) RecordWorkerJob(latencyNs int64, threadCount int, failed bool) {
	ctx := context.Background()
	c.workerLatency.Record(ctx, latencyNs, metric.WithAttributes(attribute.Int("thread_count", threadCount)))
	if failed {
		c.workerFailures.Add(ctx, 1)
	}
}

var _ loom.MetricsCollector = (*OTelMetricsCollector)(nil)
