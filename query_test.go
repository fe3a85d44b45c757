// query_test.go: tests for the reactive query cache
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package loom

import "testing"

func TestQueryInstance_TracksAddedAndRemoved(t *testing.T) {
	w := newTestWorld(t)
	schema, _ := NewSchema("Tag", []FieldDef{BoolField("Active")})
	col, _ := w.RegisterColumn(schema)
	ctx := w.GetContext("test")

	qi := w.Subscribe("watcher", NewQueryDef(nil, nil))
	w.NextSync(qi)
	if len(qi.Current()) != 0 {
		t.Fatal("expected empty query before any entity exists")
	}

	e1, _ := ctx.CreateEntity()
	ctx.AddComponent(e1, col)
	w.NextSync(qi)

	added := qi.Added()
	if len(added) != 1 || added[0] != e1 {
		t.Fatalf("expected e1 in Added(), got %v", added)
	}
	if len(qi.Current()) != 1 {
		t.Fatalf("expected 1 current entity, got %d", len(qi.Current()))
	}

	ctx.RemoveEntity(e1)
	w.NextSync(qi)
	removed := qi.Removed()
	if len(removed) != 1 || removed[0] != e1 {
		t.Fatalf("expected e1 in Removed(), got %v", removed)
	}
	if len(qi.Current()) != 0 {
		t.Fatalf("expected 0 current entities after removal, got %d", len(qi.Current()))
	}
}

func TestQueryInstance_ChangedRequiresTracking(t *testing.T) {
	w := newTestWorld(t)
	schema, _ := NewSchema("Position", []FieldDef{NumberField("X", BTypeF64)})
	col, _ := w.RegisterColumn(schema)
	ctx := w.GetContext("test")

	def := NewQueryDef(nil, nil).Track(col.componentID)
	qi := w.Subscribe("watcher", def)
	w.NextSync(qi)

	e, _ := ctx.CreateEntity()
	ctx.AddComponent(e, col)
	w.NextSync(qi)

	col.Write(e, "X", 10.0)
	w.NextSync(qi)

	changed := qi.Changed()
	if len(changed) != 1 || changed[0] != e {
		t.Fatalf("expected e in Changed(), got %v", changed)
	}
}

// TestQueryInstance_ChangedFiltersByTrackedComponent exercises an entity
// with two components where only one is tracked: Changed() must report the
// entity only for writes to the tracked component, not for writes to the
// untracked one owned by the same entity.
func TestQueryInstance_ChangedFiltersByTrackedComponent(t *testing.T) {
	w := newTestWorld(t)
	posSchema, _ := NewSchema("Position", []FieldDef{NumberField("X", BTypeF64)})
	velSchema, _ := NewSchema("Velocity", []FieldDef{NumberField("DX", BTypeF64)})
	pos, _ := w.RegisterColumn(posSchema)
	vel, _ := w.RegisterColumn(velSchema)
	ctx := w.GetContext("test")

	def := NewQueryDef([]uint16{pos.componentID, vel.componentID}, nil).Track(pos.componentID)
	qi := w.Subscribe("watcher", def)
	w.NextSync(qi)

	e, _ := ctx.CreateEntity()
	ctx.AddComponent(e, pos)
	ctx.AddComponent(e, vel)
	w.NextSync(qi)

	vel.Write(e, "DX", 1.0)
	w.NextSync(qi)
	if changed := qi.Changed(); len(changed) != 0 {
		t.Fatalf("expected no Changed() entries for an untracked component write, got %v", changed)
	}

	pos.Write(e, "X", 2.0)
	w.NextSync(qi)
	if changed := qi.Changed(); len(changed) != 1 || changed[0] != e {
		t.Fatalf("expected e in Changed() after tracked component write, got %v", changed)
	}
}

// TestQueryInstance_SingletonChangedUsesSentinel exercises end-to-end
// scenario 6: a query tracking only singleton columns uses no cache,
// Current() always reports the singleton sentinel, and Changed() reports
// it exactly when a tracked singleton write occurred in the window.
func TestQueryInstance_SingletonChangedUsesSentinel(t *testing.T) {
	w := newTestWorld(t)
	schema, _ := NewSingletonSchema("Time", []FieldDef{NumberField("Delta", BTypeF32)})
	col, _ := w.RegisterColumn(schema)

	def := NewQueryDef(nil, nil).Track(col.componentID)
	qi := w.Subscribe("clock", def)
	w.NextSync(qi)

	if changed := qi.Changed(); len(changed) != 0 {
		t.Fatalf("expected no Changed() before any write, got %v", changed)
	}
	current := qi.Current()
	if len(current) != 1 || current[0] != SingletonEntityID {
		t.Fatalf("expected Current() = [SingletonEntityID], got %v", current)
	}

	col.WriteSingleton("Delta", float32(0.016))
	w.NextSync(qi)

	changed := qi.Changed()
	if len(changed) != 1 || changed[0] != SingletonEntityID {
		t.Fatalf("expected Changed() = [SingletonEntityID], got %v", changed)
	}
}

func TestQueryInstance_WithAndWithoutFilters(t *testing.T) {
	w := newTestWorld(t)
	posSchema, _ := NewSchema("Position", []FieldDef{NumberField("X", BTypeF64)})
	deadSchema, _ := NewSchema("Dead", []FieldDef{BoolField("Flag")})
	pos, _ := w.RegisterColumn(posSchema)
	dead, _ := w.RegisterColumn(deadSchema)
	ctx := w.GetContext("test")

	def := NewQueryDef([]uint16{pos.componentID}, []uint16{dead.componentID})
	qi := w.Subscribe("alive-movers", def)
	w.NextSync(qi)

	mover, _ := ctx.CreateEntity()
	ctx.AddComponent(mover, pos)

	corpse, _ := ctx.CreateEntity()
	ctx.AddComponent(corpse, pos)
	ctx.AddComponent(corpse, dead)

	w.NextSync(qi)
	current := qi.Current()
	if len(current) != 1 || current[0] != mover {
		t.Fatalf("expected only mover to match, got %v", current)
	}
}

func TestQueryInstance_Partition(t *testing.T) {
	w := newTestWorld(t)
	schema, _ := NewSchema("Tag", []FieldDef{BoolField("Active")})
	col, _ := w.RegisterColumn(schema)
	ctx := w.GetContext("test")

	qi := w.Subscribe("watcher", NewQueryDef(nil, nil))
	w.NextSync(qi)

	for i := 0; i < 9; i++ {
		e, _ := ctx.CreateEntity()
		ctx.AddComponent(e, col)
	}
	w.NextSync(qi)

	total := 0
	for t0 := 0; t0 < 3; t0++ {
		total += len(qi.Partition(t0, 3))
	}
	if total != 9 {
		t.Errorf("expected partitions to cover all 9 entities, got %d total", total)
	}
}
