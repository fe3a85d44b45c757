// Package otel provides OpenTelemetry integration for loom's World metrics.
//
// This package implements the loom.MetricsCollector interface using
// OpenTelemetry, giving Execute/Sync/reclaim/worker operations automatic
// percentile calculation (p50, p95, p99) and multi-backend export
// (Prometheus, Jaeger, DataDog, Grafana) without loom itself depending on
// the OTEL SDK.
//
// # Usage
//
//	import (
//	    "github.com/agilira/loom"
//	    loomotel "github.com/agilira/loom/otel"
//	    "go.opentelemetry.io/otel/exporters/prometheus"
//	    "go.opentelemetry.io/otel/sdk/metric"
//	)
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	collector, _ := loomotel.NewOTelMetricsCollector(provider)
//
//	world, _ := loom.NewWorld(loom.Options{MetricsCollector: collector})
//
// # Metrics exposed
//
//   - loom_execute_latency_ns: histogram, one frame's total system run time
//   - loom_sync_latency_ns: histogram, NextSync (query delta + reclaim) latency
//   - loom_reclaim_total: counter, entity ids returned to the pool
//   - loom_reclaim_pressure: histogram, pending-reclaim ratio at each pass
//   - loom_event_overflow_total: counter, per-reader ring overflow events
//   - loom_stale_system_total: counter, per-reader stale/excluded events
//   - loom_worker_job_latency_ns: histogram, SetupWorker dispatch latency
//   - loom_worker_job_failures_total: counter, failed SetupWorker dispatches
package otel
