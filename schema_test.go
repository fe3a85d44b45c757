// schema_test.go: tests for schema validation
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package loom

import "testing"

func TestNewSchema_Valid(t *testing.T) {
	s, err := NewSchema("Position", []FieldDef{
		NumberField("X", BTypeF64),
		NumberField("Y", BTypeF64),
		BoolField("Visible"),
	})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	if _, ok := s.Index("X"); !ok {
		t.Fatal("expected field X to be indexed")
	}
}

func TestNewSchema_DuplicateField(t *testing.T) {
	_, err := NewSchema("Bad", []FieldDef{
		NumberField("X", BTypeF64),
		NumberField("X", BTypeF32),
	})
	if err == nil {
		t.Fatal("expected InvalidSchema for duplicate field name")
	}
}

func TestNewSchema_EmptyFieldName(t *testing.T) {
	_, err := NewSchema("Bad", []FieldDef{{Kind: KindNumber, BType: BTypeU8}})
	if err == nil {
		t.Fatal("expected InvalidSchema for empty field name")
	}
}

func TestNewSchema_ArrayMustBoundLength(t *testing.T) {
	_, err := NewSchema("Bad", []FieldDef{
		ArrayField("Items", KindNumber, BTypeU32, 0),
	})
	if err == nil {
		t.Fatal("expected InvalidSchema for zero MaxLength array")
	}
}

func TestNewSchema_ArrayElementMustBeScalar(t *testing.T) {
	_, err := NewSchema("Bad", []FieldDef{
		ArrayField("Items", KindArray, BTypeU32, 4),
	})
	if err == nil {
		t.Fatal("expected InvalidSchema for nested array element")
	}
}

func TestNewSchema_ArrayElementRefIsRejected(t *testing.T) {
	_, err := NewSchema("Bad", []FieldDef{
		ArrayField("Refs", KindRef, BTypeU32, 4),
	})
	if err == nil {
		t.Fatal("expected InvalidSchema for ref array element")
	}
}

func TestNewSchema_ArrayAcceptsBoolStringBinaryElements(t *testing.T) {
	_, err := NewSchema("Good", []FieldDef{
		ArrayField("Flags", KindBool, 0, 4),
		ArrayField("Names", KindString, 0, 4),
		ArrayField("Blobs", KindBinary, 0, 4),
	})
	if err != nil {
		t.Fatalf("expected bool/string/binary array elements to validate, got %v", err)
	}
}

func TestNewSingletonSchema_SetsFlag(t *testing.T) {
	s, err := NewSingletonSchema("Time", []FieldDef{NumberField("Delta", BTypeF32)})
	if err != nil {
		t.Fatalf("NewSingletonSchema: %v", err)
	}
	if !s.IsSingleton {
		t.Fatal("expected IsSingleton to be true")
	}
}

func TestNewSchema_EnumSortsValuesStably(t *testing.T) {
	s, err := NewSchema("State", []FieldDef{
		EnumField("Phase", []string{"running", "idle", "dead"}),
	})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	idx, _ := s.Index("Phase")
	f := s.Fields[idx]
	if len(f.enumSorted) != 3 || f.enumSorted[0] != "dead" {
		t.Errorf("expected sorted enum values starting with 'dead', got %v", f.enumSorted)
	}
}
