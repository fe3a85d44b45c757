// config.go: configuration for loom worlds
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package loom

import (
	"time"

	"github.com/agilira/go-timecache"
)

// Default configuration values.
const (
	DefaultMaxEntities     = 10_000
	DefaultMaxEvents       = 131_072
	DefaultMaxWorkers      = 8
	DefaultReclaimDelay    = 3
	DefaultWorkerTimeout   = 5 * time.Second
	DefaultPressureThresh  = 0.75
)

// Options holds configuration parameters for a World.
type Options struct {
	// MaxEntities bounds the entity index space [0, MaxEntities).
	// Must be > 0. Default: DefaultMaxEntities.
	MaxEntities int

	// MaxEvents is the capacity of the shared event ring.
	// Must be > 0. Default: DefaultMaxEvents.
	MaxEvents int

	// MaxWorkers bounds the number of goroutine workers the Worker Plane
	// may create. Default: DefaultMaxWorkers.
	MaxWorkers int

	// ReclaimDelay is the number of executions of every registered,
	// non-stale system that must elapse after a REMOVED event before the
	// corresponding entity id is returned to the pool.
	// Default: DefaultReclaimDelay.
	ReclaimDelay int

	// PressureThreshold is the buffer-pressure ratio above which systems
	// that have fallen too far behind are excluded from the reclamation
	// watermark instead of blocking it. Must be in (0, 1]. Default: 0.75.
	PressureThreshold float64

	// WorkerTimeout bounds how long the executor waits for a worker-system
	// dispatch before failing with WorkerTimeout. Default: 5s.
	WorkerTimeout time.Duration

	// Logger receives the query engine's non-fatal EventBufferOverflow
	// warning and the executor's recovered-panic errors. Stale-system
	// exclusions are not logged; they are reported only through
	// MetricsCollector.RecordStaleSystem. If nil, NoOpLogger is used.
	Logger Logger

	// TimeProvider provides current time for metrics timestamps.
	// If nil, a cached system-time implementation is used.
	TimeProvider TimeProvider

	// MetricsCollector collects operation metrics. If nil,
	// NoOpMetricsCollector is used (zero overhead).
	MetricsCollector MetricsCollector

	// Resources is an arbitrary bag of host-owned values (e.g. a random
	// seed, a level descriptor) made available via World.Resource without
	// going through the component/column machinery. loom never reads or
	// writes these values itself.
	Resources map[string]interface{}
}

// Validate normalizes zero values to their documented defaults. It never
// returns a validation error: out-of-range values are clamped or replaced,
// mirroring the teacher's permissive Config.Validate.
func (o *Options) Validate() error {
	if o.MaxEntities <= 0 {
		o.MaxEntities = DefaultMaxEntities
	}
	if o.MaxEvents <= 0 {
		o.MaxEvents = DefaultMaxEvents
	}
	if o.MaxWorkers <= 0 {
		o.MaxWorkers = DefaultMaxWorkers
	}
	if o.ReclaimDelay <= 0 {
		o.ReclaimDelay = DefaultReclaimDelay
	}
	if o.PressureThreshold <= 0 || o.PressureThreshold > 1 {
		o.PressureThreshold = DefaultPressureThresh
	}
	if o.WorkerTimeout <= 0 {
		o.WorkerTimeout = DefaultWorkerTimeout
	}
	if o.Logger == nil {
		o.Logger = NoOpLogger{}
	}
	if o.TimeProvider == nil {
		o.TimeProvider = &systemTimeProvider{}
	}
	if o.MetricsCollector == nil {
		o.MetricsCollector = NoOpMetricsCollector{}
	}
	if o.Resources == nil {
		o.Resources = map[string]interface{}{}
	}
	return nil
}

// DefaultOptions returns an Options value with sensible defaults applied.
func DefaultOptions() Options {
	o := Options{}
	_ = o.Validate()
	return o
}

// systemTimeProvider is the default time provider, backed by go-timecache
// for a cached, near-zero-allocation clock read.
type systemTimeProvider struct{}

func (t *systemTimeProvider) Now() int64 {
	return timecache.CachedTimeNano()
}
