// entity_test.go: tests for the entity table
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package loom

import "testing"

func TestEntityTable_CreateAndAlive(t *testing.T) {
	tbl := newEntityTable(16, 20)

	if tbl.isAlive(3) {
		t.Fatal("entity should start dead")
	}
	gen := tbl.create(3)
	if !tbl.isAlive(3) {
		t.Fatal("entity should be alive after create")
	}
	if tbl.getGeneration(3) != gen {
		t.Errorf("getGeneration mismatch: %d != %d", tbl.getGeneration(3), gen)
	}
}

func TestEntityTable_GenerationAdvancesOnRecreate(t *testing.T) {
	tbl := newEntityTable(16, 20)
	g1 := tbl.create(5)
	tbl.markDead(5)
	tbl.delete(5)
	g2 := tbl.create(5)
	if g2 != (g1+1)%128 {
		t.Errorf("expected generation to advance from %d to %d, got %d", g1, (g1+1)%128, g2)
	}
}

func TestEntityTable_ComponentBits(t *testing.T) {
	tbl := newEntityTable(16, 20)
	tbl.create(0)

	if tbl.hasComponent(0, 5) {
		t.Fatal("component 5 should not be set yet")
	}
	if already := tbl.addComponent(0, 5); already {
		t.Fatal("addComponent should report not already set")
	}
	if !tbl.hasComponent(0, 5) {
		t.Fatal("component 5 should now be set")
	}
	if already := tbl.addComponent(0, 5); !already {
		t.Fatal("addComponent should report already set on second call")
	}
	tbl.removeComponent(0, 5)
	if tbl.hasComponent(0, 5) {
		t.Fatal("component 5 should be cleared")
	}
}

func TestEntityTable_ComponentBitsAcrossByteBoundary(t *testing.T) {
	tbl := newEntityTable(4, 20)
	tbl.create(0)
	tbl.addComponent(0, 7)  // last bit of byte 0
	tbl.addComponent(0, 8)  // first bit of byte 1
	if !tbl.hasComponent(0, 7) || !tbl.hasComponent(0, 8) {
		t.Fatal("components straddling a byte boundary must both be set")
	}
	tbl.removeComponent(0, 7)
	if tbl.hasComponent(0, 7) {
		t.Fatal("component 7 should be cleared")
	}
	if !tbl.hasComponent(0, 8) {
		t.Fatal("clearing component 7 must not affect component 8")
	}
}

func TestEntityTable_Matches(t *testing.T) {
	tbl := newEntityTable(4, 20)
	tbl.create(0)
	tbl.addComponent(0, 1)
	tbl.addComponent(0, 2)

	m := newMasks(tbl.maskBytes)
	m.setWith(1)
	m.setWith(2)
	if !tbl.matches(0, m) {
		t.Fatal("entity should match with(1,2)")
	}

	m2 := newMasks(tbl.maskBytes)
	m2.setWithout(3)
	if !tbl.matches(0, m2) {
		t.Fatal("entity should match without(3) since it doesn't have component 3")
	}

	m3 := newMasks(tbl.maskBytes)
	m3.setWithout(1)
	if tbl.matches(0, m3) {
		t.Fatal("entity should not match without(1) since it has component 1")
	}

	m4 := newMasks(tbl.maskBytes)
	m4.setAny(9)
	m4.setAny(2)
	if !tbl.matches(0, m4) {
		t.Fatal("entity should match any(9,2) since it has component 2")
	}
}
