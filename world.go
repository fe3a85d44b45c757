// world.go: World lifecycle and shared state
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package loom

import "sync"

// World owns every entity, column and the shared event ring for one ECS
// instance. All World methods are safe for concurrent use; systems run
// against a Context bound to the same World.
type World struct {
	options  Options
	entities *entityTable
	ids      *idPool
	events   *eventRing
	history  *history
	workers  *workerPlane

	mu          sync.RWMutex
	columns     map[string]*Column
	nextCompID  uint16
	componentOf map[uint16]*Column

	instMu    sync.Mutex
	instances []*QueryInstance
}

// NewWorld creates a World with the given options, normalizing zero values
// to their documented defaults.
func NewWorld(opts Options) (*World, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		options:     opts,
		entities:    newEntityTable(opts.MaxEntities, 0),
		ids:         newIdPool(opts.MaxEntities),
		events:      newEventRing(opts.MaxEvents),
		columns:     make(map[string]*Column),
		componentOf: make(map[uint16]*Column),
	}
	w.history = newHistory(opts.ReclaimDelay)
	w.workers = newWorkerPlane(w, opts.MaxWorkers, opts.WorkerTimeout)
	return w, nil
}

// RegisterColumn attaches a schema-backed column to the world, returning
// the bound Column (component ids are assigned in registration order,
// starting at 0). Registering the same column name twice fails
// with AlreadyInitialized.
func (w *World) RegisterColumn(schema *Schema) (*Column, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.columns[schema.Name]; exists {
		return nil, NewErrAlreadyInitialized(schema.Name)
	}
	col := newColumn(schema, w.options.MaxEntities)
	col.componentID = w.nextCompID
	col.world = w
	w.nextCompID++
	w.columns[schema.Name] = col
	w.componentOf[col.componentID] = col

	// Re-synthesize the entity table with room for the new component
	// count. A student-grade world fixes its component set before first
	// CreateEntity in practice; this keeps the byte layout correct if
	// registration happens incrementally at startup.
	compCount := int(w.nextCompID)
	if w.entities == nil || w.entities.componentCount < compCount {
		w.entities = newEntityTable(w.options.MaxEntities, compCount)
	}
	return col, nil
}

// Column looks up a previously registered column by name.
func (w *World) Column(name string) (*Column, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.columns[name]
	if !ok {
		return nil, NewErrNotRegistered(name)
	}
	return c, nil
}

// Resource fetches a host-owned value from Options.Resources.
func (w *World) Resource(key string) (interface{}, bool) {
	v, ok := w.options.Resources[key]
	return v, ok
}

// GetContext returns a Context bound to this world for the given system
// identity (used in metrics and stale-system warnings).
func (w *World) GetContext(systemID string) *Context {
	return &Context{world: w, systemID: systemID}
}

// Subscribe creates a QueryInstance for the given query, identified by
// readerID (typically the system's id). Each distinct readerID gets its
// own cursor into the event ring.
func (w *World) Subscribe(readerID string, def *QueryDef) *QueryInstance {
	maskBytes := w.entities.maskBytes
	qi := newQueryInstance(readerID, def, maskBytes, w)
	w.history.register(readerID)
	w.instMu.Lock()
	w.instances = append(w.instances, qi)
	w.instMu.Unlock()
	return qi
}

// reclaim computes which readers are too far behind to count toward the
// reclamation watermark (stale from a ring overflow, or past the buffer
// pressure threshold) and returns ids past ReclaimDelay to the id pool.
func (w *World) reclaim() {
	w.instMu.Lock()
	instances := append([]*QueryInstance(nil), w.instances...)
	w.instMu.Unlock()

	excluded := make(map[string]bool)
	head := w.events.head()
	capacity := w.events.capacity
	for _, qi := range instances {
		if qi.IsStale() {
			excluded[qi.readerID] = true
			continue
		}
		qi.mu.Lock()
		lastSeen := qi.lastSeen
		qi.mu.Unlock()
		if capacity == 0 {
			continue
		}
		var pressure float64
		if head > lastSeen {
			pressure = float64(head-lastSeen) / float64(capacity)
		}
		if pressure > w.options.PressureThreshold {
			excluded[qi.readerID] = true
			w.options.MetricsCollector.RecordStaleSystem(qi.readerID)
		}
	}

	ready := w.history.ready(excluded)
	if len(ready) == 0 {
		return
	}
	for _, id := range ready {
		w.entities.delete(id)
		w.ids.release(id)
	}
	pressure := 0.0
	if capacity := w.events.capacity; capacity > 0 {
		pressure = float64(w.history.pendingCount()) / float64(w.options.MaxEntities)
	}
	w.options.MetricsCollector.RecordReclaim(len(ready), pressure)
}

// NextSync advances the delta window of each QueryInstance passed to it
// (instances not passed are left as they are) and runs one pass of the
// reclamation watermark. Call once per frame after all
// systems for the frame have executed their reads.
func (w *World) NextSync(instances ...*QueryInstance) {
	start := w.options.TimeProvider.Now()
	for _, qi := range instances {
		qi.sync()
		w.history.tick(qi.readerID)
	}
	w.reclaim()
	w.options.MetricsCollector.RecordSync(w.options.TimeProvider.Now() - start)
}

// Dispose releases world-held resources. A disposed World must not be used
// again; Dispose itself is idempotent.
func (w *World) Dispose() {
	w.workers.close()
}
