// worker.go: bounded goroutine fan-out for per-system parallel work (C7)
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package loom

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// workerPlane bounds and times out the goroutine fan-out available to
// worker systems. It holds no goroutines of its own between calls: every
// SetupWorker dispatch spins up threadCount goroutines via errgroup, plus
// one that waits on them so the deadline can end the wait, and tears them
// down on return, the same "no idle pool to leak"
// posture the teacher takes with its inflightCall goroutines collapsing
// once every waiting caller has been served.
type workerPlane struct {
	world      *World
	maxWorkers int
	timeout    time.Duration
}

func newWorkerPlane(world *World, maxWorkers int, timeout time.Duration) *workerPlane {
	return &workerPlane{world: world, maxWorkers: maxWorkers, timeout: timeout}
}

func (wp *workerPlane) close() {}

// WorkerFunc is run once per thread by SetupWorker. It receives its own
// index and the total thread count so it can partition a QueryInstance
// with Partition(threadIndex, threadCount).
type WorkerFunc func(ctx *Context, threadIndex, threadCount int) error

// SetupWorker dispatches fn across threadCount goroutines, each given a
// Context scoped to the same system id, bounded by the world's configured
// WorkerTimeout. It fails fast with ThreadCountExceeded if threadCount
// exceeds MaxWorkers, and returns WorkerTimeout if any goroutine is still
// running when the deadline passes; such goroutines are not stopped and
// run to completion on their own. A panic in any goroutine is recovered
// and reported as WorkerError rather than crashing the process.
func (c *Context) SetupWorker(threadCount int, fn WorkerFunc) error {
	wp := c.world.workers
	if threadCount <= 0 {
		threadCount = 1
	}
	if threadCount > wp.maxWorkers {
		return NewErrThreadCountExceeded(threadCount, wp.maxWorkers)
	}

	start := c.world.options.TimeProvider.Now()
	deadline, cancel := context.WithTimeout(context.Background(), wp.timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(deadline)
	for i := 0; i < threadCount; i++ {
		threadIndex := i
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = NewErrPanicRecovered(c.systemID, r)
				}
			}()
			select {
			case <-gctx.Done():
				return NewErrWorkerTimeout(threadIndex, wp.timeout)
			default:
			}
			threadCtx := &Context{world: c.world, systemID: c.systemID}
			return fn(threadCtx, threadIndex, threadCount)
		})
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- g.Wait() }()
	var err error
	select {
	case err = <-waitErr:
	case <-deadline.Done():
		err = deadline.Err()
	}
	failed := err != nil
	c.world.options.MetricsCollector.RecordWorkerJob(c.world.options.TimeProvider.Now()-start, threadCount, failed)
	if err != nil {
		if deadline.Err() != nil {
			return NewErrWorkerTimeout(-1, wp.timeout)
		}
		return NewErrWorkerError(-1, err)
	}
	return nil
}
