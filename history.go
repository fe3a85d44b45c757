// history.go: per-system rolling history and reclamation bookkeeping (C6)
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package loom

import "sync"

// history tracks, per registered reader (a system registered with an
// Executor, ticked once per Executor.Execute, or a subscribed query reader,
// ticked once per World.NextSync that syncs it), how many ticks have elapsed, and for every pending-reclaim entity, the tick count each
// reader had seen at the moment the entity was removed. An entity's id can
// only return to the pool once every non-excluded reader has ticked at
// least ReclaimDelay times past its removal, the same "wait for every
// consumer to have observed the change" discipline the teacher's
// inflightCall done-channel gives concurrent GetOrLoad callers before a
// result is discarded.
type history struct {
	mu           sync.Mutex
	readerTicks  map[string]int
	pending      []pendingReclaim
	reclaimDelay int
}

type pendingReclaim struct {
	id      EntityID
	atTicks map[string]int
}

func newHistory(reclaimDelay int) *history {
	return &history{
		readerTicks:  make(map[string]int),
		reclaimDelay: reclaimDelay,
	}
}

func (h *history) register(readerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.readerTicks[readerID]; !ok {
		h.readerTicks[readerID] = 0
	}
}

func (h *history) tick(readerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readerTicks[readerID]++
}

// scheduleReclaim snapshots every reader's current tick count for id.
func (h *history) scheduleReclaim(id EntityID, _ uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	snap := make(map[string]int, len(h.readerTicks))
	for r, t := range h.readerTicks {
		snap[r] = t
	}
	h.pending = append(h.pending, pendingReclaim{id: id, atTicks: snap})
}

// ready returns entities whose ReclaimDelay has elapsed for every reader
// not present in excluded, removing them from the pending list. If no
// reader has ever registered (no system, no query instance), nothing is
// ever reclaimed: an empty atTicks snapshot would otherwise trivially
// satisfy the "every reader has ticked enough" check and free ids on the
// very next pass, regardless of ReclaimDelay.
func (h *history) ready(excluded map[string]bool) []EntityID {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.readerTicks) == 0 {
		return nil
	}
	var out []EntityID
	var still []pendingReclaim
	for _, p := range h.pending {
		elapsedEnough := true
		for r, atTick := range p.atTicks {
			if excluded[r] {
				continue
			}
			cur := h.readerTicks[r]
			if cur-atTick < h.reclaimDelay {
				elapsedEnough = false
				break
			}
		}
		if elapsedEnough {
			out = append(out, p.id)
		} else {
			still = append(still, p)
		}
	}
	h.pending = still
	return out
}

func (h *history) pendingCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}
