// query_instance.go: per-reader reactive query cache (C5)
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package loom

import "sync"

// QueryInstance is a single reader's live view of a QueryDef: a sparse-set
// cache of currently-matching entities plus delta sets (added/removed/
// changed) computed from the shared event ring since the reader's last
// Sync. One instance belongs to exactly one system; instances are never
// shared across readers because each tracks its own read cursor, the same
// per-caller isolation the teacher's inflightCall gives each GetOrLoad
// caller instead of sharing one result across unrelated requests.
type QueryInstance struct {
	readerID string
	def      *QueryDef
	masks    *masks
	world    *World

	mu            sync.Mutex
	current       *EntitySet
	added         *EntitySet
	removed       *EntitySet
	changed       *EntitySet
	lastSeen      uint64
	stale         bool // true after an overflow this instance could not fully recover from
	singletonOnly bool // no structural predicate and every tracked component is a singleton column
}

func newQueryInstance(readerID string, def *QueryDef, maskBytes int, world *World) *QueryInstance {
	qi := &QueryInstance{
		readerID: readerID,
		def:      def,
		masks:    def.compile(maskBytes),
		world:    world,
		current:  NewEntitySet(),
		added:    NewEntitySet(),
		removed:  NewEntitySet(),
		changed:  NewEntitySet(),
	}
	qi.singletonOnly = isSingletonQuery(def, world)
	return qi
}

// isSingletonQuery reports whether def has no structural with/without/any
// predicate and tracks only singleton columns, the spec's "query whose
// tracked components are all singletons" condition for the cache-less
// singleton path.
func isSingletonQuery(def *QueryDef, world *World) bool {
	if len(def.withIDs) != 0 || len(def.withoutIDs) != 0 || len(def.anyIDs) != 0 {
		return false
	}
	if len(def.trackIDs) == 0 {
		return false
	}
	for _, cid := range def.trackIDs {
		col, ok := world.componentOf[cid]
		if !ok || !col.schema.IsSingleton {
			return false
		}
	}
	return true
}

// sync advances the instance's read cursor to the event ring's current
// head, recomputing added/removed/changed. On ring overflow it falls back
// to a full rescan of the entity table (a brute-force but always-correct
// recovery, matching how the teacher's cache repairs itself by rebuilding
// rather than trusting a partially-valid incremental state) and records an
// EventOverflow metric once.
func (qi *QueryInstance) sync() {
	qi.mu.Lock()
	defer qi.mu.Unlock()

	qi.added.Reset()
	qi.removed.Reset()
	qi.changed.Reset()

	from, to, overflowed := qi.world.events.window(qi.lastSeen)
	if overflowed {
		if !qi.singletonOnly {
			qi.fullRescan()
		}
		qi.world.options.MetricsCollector.RecordEventOverflow(qi.readerID)
		qi.world.options.Logger.Warn("query cache overflow, rescanned", "reader", qi.readerID)
		qi.stale = true
		qi.lastSeen = to
		return
	}
	qi.stale = false

	// Singleton queries have no entity membership to maintain: they
	// report only CHANGED events for their tracked singleton columns,
	// under the reserved singleton entity id.
	if qi.singletonOnly {
		if qi.masks.trackNZ {
			qi.world.events.collectChangedInRange(from, to, qi.masks, qi.changed)
		}
		qi.lastSeen = to
		return
	}

	addedRaw := NewEntitySet()
	removedRaw := NewEntitySet()
	changedRaw := NewEntitySet()
	qi.world.events.collectInRange(from, to, EventAdded|EventComponentAdded, 0, addedRaw)
	qi.world.events.collectInRange(from, to, EventRemoved|EventComponentRemoved, 0, removedRaw)
	if qi.masks.trackNZ {
		qi.world.events.collectChangedInRange(from, to, qi.masks, changedRaw)
	}

	// Rebuild current membership from the entity table's authoritative
	// state for every entity touched this window, rather than trusting
	// incremental add/remove bookkeeping to stay consistent forever.
	touched := NewEntitySet()
	for _, id := range addedRaw.Slice() {
		touched.Add(id)
	}
	for _, id := range removedRaw.Slice() {
		touched.Add(id)
	}
	for _, id := range changedRaw.Slice() {
		touched.Add(id)
	}
	for _, id := range touched.Slice() {
		matches := qi.world.entities.matches(id, qi.masks)
		wasMember := qi.current.Contains(id)
		switch {
		case matches && !wasMember:
			qi.current.Add(id)
			qi.added.Add(id)
		case !matches && wasMember:
			qi.removeFromCurrent(id)
			qi.removed.Add(id)
		case matches && wasMember && changedRaw.Contains(id):
			qi.changed.Add(id)
		}
	}

	qi.lastSeen = to
}

// removeFromCurrent rebuilds the dense set without id; current sets are
// small relative to total world size in the common case so this linear
// rebuild is acceptable, matching the teacher's preference for simple,
// allocation-light code over premature structural cleverness.
func (qi *QueryInstance) removeFromCurrent(id EntityID) {
	next := NewEntitySet()
	for _, e := range qi.current.Slice() {
		if e != id {
			next.Add(e)
		}
	}
	qi.current = next
}

func (qi *QueryInstance) fullRescan() {
	next := NewEntitySet()
	for id := 0; id < qi.world.entities.maxEntities; id++ {
		eid := EntityID(id)
		if qi.world.entities.matches(eid, qi.masks) {
			next.Add(eid)
		}
	}
	qi.current = next
}

// Current returns every entity currently matching the query. A
// singleton-only query has no membership to track; it always reports the
// reserved singleton entity id.
func (qi *QueryInstance) Current() []EntityID {
	qi.mu.Lock()
	defer qi.mu.Unlock()
	if qi.singletonOnly {
		return []EntityID{SingletonEntityID}
	}
	return append([]EntityID(nil), qi.current.Slice()...)
}

// Added returns entities that started matching since the last Sync.
func (qi *QueryInstance) Added() []EntityID {
	qi.mu.Lock()
	defer qi.mu.Unlock()
	return append([]EntityID(nil), qi.added.Slice()...)
}

// Removed returns entities that stopped matching (or died) since the last Sync.
func (qi *QueryInstance) Removed() []EntityID {
	qi.mu.Lock()
	defer qi.mu.Unlock()
	return append([]EntityID(nil), qi.removed.Slice()...)
}

// Changed returns matching entities with a CHANGED event since the last
// Sync, restricted to component ids the QueryDef declared with Track. For
// a singleton-only query this reports SingletonEntityID when any tracked
// singleton column changed in the window.
func (qi *QueryInstance) Changed() []EntityID {
	qi.mu.Lock()
	defer qi.mu.Unlock()
	return append([]EntityID(nil), qi.changed.Slice()...)
}

// AddedOrChanged is a convenience union of Added and Changed, useful for
// systems that don't distinguish first-touch from update.
func (qi *QueryInstance) AddedOrChanged() []EntityID {
	qi.mu.Lock()
	defer qi.mu.Unlock()
	set := NewEntitySet()
	for _, e := range qi.added.Slice() {
		set.Add(e)
	}
	for _, e := range qi.changed.Slice() {
		set.Add(e)
	}
	return set.Slice()
}

// IsStale reports whether the last Sync had to fall back to a full rescan.
func (qi *QueryInstance) IsStale() bool {
	qi.mu.Lock()
	defer qi.mu.Unlock()
	return qi.stale
}

// Partition returns the entities of Current() whose id modulo threadCount
// equals threadIndex, the partitioning Worker Plane systems use to divide
// a query's matches across goroutines.
func (qi *QueryInstance) Partition(threadIndex, threadCount int) []EntityID {
	all := qi.Current()
	if threadCount <= 1 {
		return all
	}
	var out []EntityID
	for _, id := range all {
		if int(id)%threadCount == threadIndex {
			out = append(out, id)
		}
	}
	return out
}
