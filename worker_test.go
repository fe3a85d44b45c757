// worker_test.go: tests for the Worker Plane fan-out
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package loom

import (
	"sync/atomic"
	"testing"
)

func TestSetupWorker_PartitionsAcrossThreads(t *testing.T) {
	w := newTestWorld(t)
	ctx := w.GetContext("test")

	var seen [4]int64
	err := ctx.SetupWorker(4, func(wctx *Context, threadIndex, threadCount int) error {
		atomic.AddInt64(&seen[threadIndex], 1)
		return nil
	})
	if err != nil {
		t.Fatalf("SetupWorker: %v", err)
	}
	for i, count := range seen {
		if count != 1 {
			t.Errorf("thread %d ran %d times, expected 1", i, count)
		}
	}
}

func TestSetupWorker_ThreadCountExceeded(t *testing.T) {
	w := newTestWorld(t)
	ctx := w.GetContext("test")

	err := ctx.SetupWorker(w.options.MaxWorkers+1, func(wctx *Context, threadIndex, threadCount int) error {
		return nil
	})
	if err == nil {
		t.Fatal("expected ThreadCountExceeded error")
	}
	if GetErrorCode(err) != ErrCodeThreadCountExceeded {
		t.Errorf("expected ErrCodeThreadCountExceeded, got %v", GetErrorCode(err))
	}
}

func TestSetupWorker_RecoversPanicAsError(t *testing.T) {
	w := newTestWorld(t)
	ctx := w.GetContext("test")

	err := ctx.SetupWorker(2, func(wctx *Context, threadIndex, threadCount int) error {
		if threadIndex == 0 {
			panic("worker exploded")
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected an error from the panicking worker")
	}
}

func TestSetupWorker_PropagatesWorkerError(t *testing.T) {
	w := newTestWorld(t)
	ctx := w.GetContext("test")

	err := ctx.SetupWorker(2, func(wctx *Context, threadIndex, threadCount int) error {
		if threadIndex == 1 {
			return NewErrInternal("test failure", nil)
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected propagated worker error")
	}
}
