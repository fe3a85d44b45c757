// query.go: query definition and bitmask compilation (C5)
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package loom

// QueryDef declares the component predicate a system wants to iterate.
// Each QueryInstance compiles it once (at World.Subscribe) into a masks
// value reused by every evaluation of that instance, the same "compile once, evaluate many"
// split the teacher draws between frequencySketch construction and its
// per-access incrementCounter.
type QueryDef struct {
	withIDs, withoutIDs, anyIDs []uint16
	trackIDs                    []uint16 // component ids whose CHANGED events Changed() reports, a subset of withIDs in the usual case
}

// NewQueryDef starts a builder requiring every id in with, excluding every
// id in without.
func NewQueryDef(with, without []uint16) *QueryDef {
	return &QueryDef{withIDs: with, withoutIDs: without}
}

// Any adds an "at least one of" constraint to the query.
func (q *QueryDef) Any(ids ...uint16) *QueryDef {
	q.anyIDs = append(q.anyIDs, ids...)
	return q
}

// Track marks component ids whose CHANGED events Changed() should report;
// a CHANGED event for a component id not in this set is invisible to
// Changed() even if the owning entity matches the query.
func (q *QueryDef) Track(componentIDs ...uint16) *QueryDef {
	q.trackIDs = append(q.trackIDs, componentIDs...)
	return q
}

func (q *QueryDef) compile(maskBytes int) *masks {
	m := newMasks(maskBytes)
	for _, id := range q.withIDs {
		m.setWith(id)
	}
	for _, id := range q.withoutIDs {
		m.setWithout(id)
	}
	for _, id := range q.anyIDs {
		m.setAny(id)
	}
	for _, id := range q.trackIDs {
		m.setTrack(id)
	}
	return m
}
