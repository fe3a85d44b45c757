// events_test.go: tests for the shared event ring buffer
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package loom

import "testing"

func TestEventRing_PushAndReadBack(t *testing.T) {
	ring := newEventRing(8)
	idx := ring.push(Event{Entity: 42, Type: EventAdded})
	ev := ring.readEvent(idx)
	if ev.Entity != 42 || ev.Type != EventAdded {
		t.Errorf("unexpected event read back: %+v", ev)
	}
}

func TestEventRing_WindowNoOverflow(t *testing.T) {
	ring := newEventRing(8)
	for i := 0; i < 3; i++ {
		ring.push(Event{Entity: EntityID(i), Type: EventAdded})
	}
	from, to, overflowed := ring.window(0)
	if overflowed {
		t.Fatal("should not overflow with only 3 events in an 8-slot ring")
	}
	if from != 0 || to != 3 {
		t.Errorf("expected window [0,3), got [%d,%d)", from, to)
	}
}

func TestEventRing_WindowOverflow(t *testing.T) {
	ring := newEventRing(4)
	for i := 0; i < 10; i++ {
		ring.push(Event{Entity: EntityID(i), Type: EventAdded})
	}
	_, to, overflowed := ring.window(0)
	if !overflowed {
		t.Fatal("expected overflow: reader never consumed 6 of the 10 writes in a 4-slot ring")
	}
	if to != 10 {
		t.Errorf("expected head at 10, got %d", to)
	}
}

func TestEventRing_CollectInRangeFiltersByType(t *testing.T) {
	ring := newEventRing(16)
	ring.push(Event{Entity: 1, Type: EventAdded})
	ring.push(Event{Entity: 2, Type: EventRemoved})
	ring.push(Event{Entity: 3, Type: EventChanged, ComponentID: 7})

	set := NewEntitySet()
	ring.collectInRange(0, 3, EventChanged, 0, set)
	if set.Len() != 1 || !set.Contains(3) {
		t.Errorf("expected only entity 3, got %v", set.Slice())
	}
}

func TestEventRing_CollectInRangeFiltersByComponent(t *testing.T) {
	ring := newEventRing(16)
	ring.push(Event{Entity: 1, Type: EventChanged, ComponentID: 1})
	ring.push(Event{Entity: 2, Type: EventChanged, ComponentID: 2})

	set := NewEntitySet()
	ring.collectInRange(0, 2, EventChanged, 2, set)
	if set.Len() != 1 || !set.Contains(2) {
		t.Errorf("expected only entity 2 for component 2, got %v", set.Slice())
	}
}

func TestEntitySet_ResetReuse(t *testing.T) {
	set := NewEntitySet()
	set.Add(1)
	set.Add(2)
	set.Reset()
	if set.Len() != 0 {
		t.Fatal("Reset should empty the set")
	}
	set.Add(1)
	if set.Len() != 1 || !set.Contains(1) {
		t.Fatal("set should be reusable after Reset")
	}
}
