// executor.go: system registration and per-frame execution (C6)
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package loom

// System is a single unit of per-frame logic. Run receives a Context
// scoped to the system's own id for logging/metrics attribution and must
// not be retained past the call.
type System struct {
	ID  string
	Run func(ctx *Context) error
}

// Executor runs a fixed, ordered list of systems once per frame. It does
// not advance any QueryInstance; that is done by World.NextSync.
type Executor struct {
	world   *World
	systems []System
}

func NewExecutor(world *World) *Executor {
	return &Executor{world: world}
}

// Register appends sys to the execution order and returns a Context bound
// to it. Systems run in registration order within a single Execute call;
// there is no implicit parallelism across systems, only within a system
// via the Worker Plane (see SetupWorker). Registering a system also gives
// it a history entry, so it immediately starts counting toward the
// reclamation watermark (see Execute).
func (e *Executor) Register(sys System) *Context {
	e.systems = append(e.systems, sys)
	e.world.history.register(sys.ID)
	return e.world.GetContext(sys.ID)
}

// Execute runs every registered system once, in order, recovering panics
// into a PanicRecovered error so one misbehaving system cannot take down
// the whole frame. It does not call NextSync; callers drive query sync
// explicitly with World.NextSync once all systems for the frame are done,
// so a frame can run a batch of systems before any of them observes the
// others' structural changes (intra-batch isolation).
//
// Every registered system's history entry ticks once per Execute call
// regardless of outcome, and a reclamation pass runs afterward: "executions
// of every registered system" is the unit ReclaimDelay counts in, so a
// system that never subscribes to a query must still gate reclamation for
// the removals it observed simply by running.
func (e *Executor) Execute() error {
	start := e.world.options.TimeProvider.Now()
	var firstErr error
	for _, sys := range e.systems {
		if err := e.runOne(sys); err != nil && firstErr == nil {
			firstErr = err
		}
		e.world.history.tick(sys.ID)
	}
	e.world.reclaim()
	e.world.options.MetricsCollector.RecordExecute(e.world.options.TimeProvider.Now()-start, len(e.systems))
	return firstErr
}

func (e *Executor) runOne(sys System) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewErrPanicRecovered(sys.ID, r)
			e.world.options.Logger.Error("system panicked", "system", sys.ID, "panic", r)
		}
	}()
	ctx := e.world.GetContext(sys.ID)
	return sys.Run(ctx)
}
