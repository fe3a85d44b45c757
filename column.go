// column.go: columnar component storage (C4)
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package loom

import (
	"math"
	"sync/atomic"
)

// encodeNumber packs a Go numeric value into a uint64 word according to bt,
// the same "atomic word holds a narrower logical value" discipline the
// entity table uses for packed bytes.
func encodeNumber(bt NumberBType, v interface{}) uint64 {
	switch bt {
	case BTypeU8:
		return uint64(v.(uint8))
	case BTypeU16:
		return uint64(v.(uint16))
	case BTypeU32:
		return uint64(v.(uint32))
	case BTypeI8:
		return uint64(uint8(v.(int8)))
	case BTypeI16:
		return uint64(uint16(v.(int16)))
	case BTypeI32:
		return uint64(uint32(v.(int32)))
	case BTypeF32:
		return uint64(math.Float32bits(v.(float32)))
	case BTypeF64:
		return math.Float64bits(v.(float64))
	default:
		return 0
	}
}

func decodeNumber(bt NumberBType, raw uint64) interface{} {
	switch bt {
	case BTypeU8:
		return uint8(raw)
	case BTypeU16:
		return uint16(raw)
	case BTypeU32:
		return uint32(raw)
	case BTypeI8:
		return int8(uint8(raw))
	case BTypeI16:
		return int16(uint16(raw))
	case BTypeI32:
		return int32(uint32(raw))
	case BTypeF32:
		return math.Float32frombits(uint32(raw))
	case BTypeF64:
		return math.Float64frombits(raw)
	default:
		return nil
	}
}

// arrayValue is an immutable decoded array payload, swapped wholesale on
// every mutation rather than edited in place. Exactly one of nums/bytes is
// populated, chosen by the field's Elem kind: number/boolean elements pack
// into nums (bit pattern or 0/1), string/binary elements live as owned
// byte slices in bytes.
type arrayValue struct {
	nums  []uint64
	bytes [][]byte
}

// Column is a schema-typed, densely-indexed component store. Every field is
// backed by its own slice of atomics sized MaxEntities; there is no
// archetype migration, matching the spec's columnar (non-archetype) model.
type Column struct {
	name        string
	schema      *Schema
	componentID uint16
	maxEntities int

	numbers []*numberCol
	bools   []*boolCol
	bytes   []*bytesCol
	enums   []*enumCol
	arrays  []*arrayCol
	tuples  []*tupleCol
	buffers []*bufferCol
	refs    []*refCol

	storageIdx []int // per schema field index -> index within its kind's slice

	world *World
}

type numberCol struct{ data []atomic.Uint64 }
type boolCol struct{ data []atomic.Uint32 }
type bytesCol struct{ data []atomic.Pointer[[]byte] }
type enumCol struct{ data []atomic.Uint32 }
type arrayCol struct{ data []atomic.Pointer[arrayValue] }
type tupleCol struct {
	data   []atomic.Uint64
	length int
}
type bufferCol struct {
	data    []atomic.Uint64
	lengths []atomic.Uint32
	maxLen  int
}
type refCol struct{ data []atomic.Uint32 }

// newColumn allocates storage for every field of schema across maxEntities
// slots, not yet bound to a world (componentID and world are set by
// World.RegisterColumn). A singleton schema gets a single storage slot
// regardless of maxEntities; every entity id given to Read/Write/etc.
// resolves to that one slot (see Column.slot).
func newColumn(schema *Schema, maxEntities int) *Column {
	size := maxEntities
	if schema.IsSingleton {
		size = 1
	}
	c := &Column{
		name:        schema.Name,
		schema:      schema,
		maxEntities: maxEntities,
		storageIdx:  make([]int, len(schema.Fields)),
	}
	for i, f := range schema.Fields {
		switch f.Kind {
		case KindNumber:
			c.storageIdx[i] = len(c.numbers)
			c.numbers = append(c.numbers, &numberCol{data: make([]atomic.Uint64, size)})
		case KindBool:
			c.storageIdx[i] = len(c.bools)
			c.bools = append(c.bools, &boolCol{data: make([]atomic.Uint32, size)})
		case KindString, KindBinary:
			c.storageIdx[i] = len(c.bytes)
			c.bytes = append(c.bytes, &bytesCol{data: make([]atomic.Pointer[[]byte], size)})
		case KindEnum:
			c.storageIdx[i] = len(c.enums)
			c.enums = append(c.enums, &enumCol{data: make([]atomic.Uint32, size)})
		case KindArray:
			c.storageIdx[i] = len(c.arrays)
			c.arrays = append(c.arrays, &arrayCol{data: make([]atomic.Pointer[arrayValue], size)})
		case KindTuple:
			c.storageIdx[i] = len(c.tuples)
			c.tuples = append(c.tuples, &tupleCol{
				data:   make([]atomic.Uint64, size*f.TupleLen),
				length: f.TupleLen,
			})
		case KindBuffer:
			c.storageIdx[i] = len(c.buffers)
			c.buffers = append(c.buffers, &bufferCol{
				data:    make([]atomic.Uint64, size*f.MaxLength),
				lengths: make([]atomic.Uint32, size),
				maxLen:  f.MaxLength,
			})
		case KindRef:
			c.storageIdx[i] = len(c.refs)
			c.refs = append(c.refs, &refCol{data: make([]atomic.Uint32, size)})
		}
	}
	return c
}

// slot maps a caller-given entity id to its storage index: the identity
// for an ordinary column, always 0 for a singleton column (whose storage
// has exactly one slot, regardless of what entity id the caller passes).
func (c *Column) slot(entity EntityID) EntityID {
	if c.schema.IsSingleton {
		return 0
	}
	return entity
}

func (c *Column) fieldDef(fieldName string) (FieldDef, int, error) {
	idx, ok := c.schema.Index(fieldName)
	if !ok {
		return FieldDef{}, 0, NewErrNotRegistered(c.name + "." + fieldName)
	}
	return c.schema.Fields[idx], idx, nil
}

// emitChanged pushes a CHANGED event for entity, or for SingletonEntityID
// regardless of entity when the column is a singleton (the caller may not
// even have passed the sentinel, since singleton ops ignore their id arg).
func (c *Column) emitChanged(entity EntityID) {
	if c.world == nil {
		return
	}
	e := entity
	if c.schema.IsSingleton {
		e = SingletonEntityID
	}
	c.world.events.push(Event{Entity: e, Type: EventChanged, ComponentID: c.componentID})
}

// Read returns the current value of fieldName for entity. The returned
// value is always an owned copy or a value type, never a view into live
// storage, so the caller can never observe a torn write.
func (c *Column) Read(entity EntityID, fieldName string) (interface{}, error) {
	f, idx, err := c.fieldDef(fieldName)
	if err != nil {
		return nil, err
	}
	si := c.storageIdx[idx]
	e := c.slot(entity)
	switch f.Kind {
	case KindNumber:
		return decodeNumber(f.BType, c.numbers[si].data[e].Load()), nil
	case KindBool:
		return c.bools[si].data[e].Load() != 0, nil
	case KindString:
		p := c.bytes[si].data[e].Load()
		if p == nil {
			return "", nil
		}
		return string(*p), nil
	case KindBinary:
		p := c.bytes[si].data[e].Load()
		if p == nil {
			return []byte{}, nil
		}
		out := make([]byte, len(*p))
		copy(out, *p)
		return out, nil
	case KindEnum:
		idx := c.enums[si].data[e].Load()
		if int(idx) < len(f.enumSorted) {
			return f.enumSorted[idx], nil
		}
		return f.enumSorted[0], nil
	case KindArray:
		return c.readArray(si, e, f), nil
	case KindTuple:
		t := c.tuples[si]
		out := make([]uint64, t.length)
		base := int(e) * t.length
		for i := 0; i < t.length; i++ {
			out[i] = t.data[base+i].Load()
		}
		return out, nil
	case KindBuffer:
		b := c.buffers[si]
		n := int(b.lengths[e].Load())
		out := make([]uint64, n)
		base := int(e) * b.maxLen
		for i := 0; i < n; i++ {
			out[i] = b.data[base+i].Load()
		}
		return out, nil
	case KindRef:
		return c.readRef(si, e), nil
	}
	return nil, NewErrInternal("Column.Read", nil)
}

// readArray decodes an array slot into its Go representation: []uint64 for
// numeric/boolean elements (boolean packed as 0/1), []string for string
// elements, [][]byte for binary elements.
func (c *Column) readArray(si int, slot EntityID, f FieldDef) interface{} {
	p := c.arrays[si].data[slot].Load()
	switch f.Elem {
	case KindString:
		if p == nil {
			return []string{}
		}
		out := make([]string, len(p.bytes))
		for i, b := range p.bytes {
			out[i] = string(b)
		}
		return out
	case KindBinary:
		if p == nil {
			return [][]byte{}
		}
		out := make([][]byte, len(p.bytes))
		for i, b := range p.bytes {
			cp := make([]byte, len(b))
			copy(cp, b)
			out[i] = cp
		}
		return out
	default: // KindNumber, KindBool
		if p == nil {
			return []uint64{}
		}
		out := make([]uint64, len(p.nums))
		copy(out, p.nums)
		return out
	}
}

// readRef loads a packed ref and lazily self-heals it to NullRef if the
// referenced entity is no longer alive or its generation has moved on.
func (c *Column) readRef(storageIdx int, entity EntityID) EntityID {
	slot := c.slot(entity)
	raw := c.refs[storageIdx].data[slot].Load()
	gen, idx, isNull := unpackRef(raw)
	if isNull {
		return EntityID(NullRef)
	}
	if c.world == nil || !c.world.entities.isAlive(EntityID(idx)) || c.world.entities.getGeneration(EntityID(idx)) != gen {
		c.refs[storageIdx].data[slot].CompareAndSwap(raw, NullRef)
		return EntityID(NullRef)
	}
	return EntityID(idx)
}

// Write sets fieldName on entity and emits a CHANGED event.
func (c *Column) Write(entity EntityID, fieldName string, value interface{}) error {
	f, idx, err := c.fieldDef(fieldName)
	if err != nil {
		return err
	}
	si := c.storageIdx[idx]
	e := c.slot(entity)
	switch f.Kind {
	case KindNumber:
		c.numbers[si].data[e].Store(encodeNumber(f.BType, value))
	case KindBool:
		var v uint32
		if value.(bool) {
			v = 1
		}
		c.bools[si].data[e].Store(v)
	case KindString:
		s := value.(string)
		if len(s) > f.MaxLength {
			s = s[:f.MaxLength]
		}
		b := []byte(s)
		c.bytes[si].data[e].Store(&b)
	case KindBinary:
		b := value.([]byte)
		if len(b) > f.MaxLength {
			b = b[:f.MaxLength]
		}
		cp := make([]byte, len(b))
		copy(cp, b)
		c.bytes[si].data[e].Store(&cp)
	case KindEnum:
		name := value.(string)
		idx, ok := f.enumIndex[name]
		if !ok {
			return NewErrInvalidSchema(c.name, "unknown enum value: "+name)
		}
		c.enums[si].data[e].Store(uint32(idx))
	case KindArray:
		if err := c.writeArray(si, e, f, value); err != nil {
			return err
		}
	case KindTuple:
		t := c.tuples[si]
		raw := value.([]uint64)
		base := int(e) * t.length
		n := t.length
		if len(raw) < n {
			n = len(raw)
		}
		for i := 0; i < n; i++ {
			t.data[base+i].Store(raw[i])
		}
	case KindBuffer:
		b := c.buffers[si]
		raw := value.([]uint64)
		if len(raw) > b.maxLen {
			raw = raw[:b.maxLen]
		}
		base := int(e) * b.maxLen
		for i, v := range raw {
			b.data[base+i].Store(v)
		}
		b.lengths[e].Store(uint32(len(raw)))
	case KindRef:
		ref := value.(EntityID)
		if ref == EntityID(NullRef) {
			c.refs[si].data[e].Store(NullRef)
		} else {
			gen := c.world.entities.getGeneration(ref)
			c.refs[si].data[e].Store(packRef(gen, uint32(ref)))
		}
	}
	c.emitChanged(entity)
	return nil
}

// writeArray stores value into an array slot, clamping element count to
// f.MaxLength, dispatching on f.Elem to pick the Go type value must carry:
// []uint64 for number, []bool for boolean, []string for string, [][]byte
// for binary.
func (c *Column) writeArray(si int, slot EntityID, f FieldDef, value interface{}) error {
	switch f.Elem {
	case KindBool:
		vals, ok := value.([]bool)
		if !ok {
			return NewErrInvalidSchema(c.name, "array field expects []bool")
		}
		if len(vals) > f.MaxLength {
			vals = vals[:f.MaxLength]
		}
		nums := make([]uint64, len(vals))
		for i, b := range vals {
			if b {
				nums[i] = 1
			}
		}
		c.arrays[si].data[slot].Store(&arrayValue{nums: nums})
	case KindString:
		vals, ok := value.([]string)
		if !ok {
			return NewErrInvalidSchema(c.name, "array field expects []string")
		}
		if len(vals) > f.MaxLength {
			vals = vals[:f.MaxLength]
		}
		raw := make([][]byte, len(vals))
		for i, s := range vals {
			raw[i] = []byte(s)
		}
		c.arrays[si].data[slot].Store(&arrayValue{bytes: raw})
	case KindBinary:
		vals, ok := value.([][]byte)
		if !ok {
			return NewErrInvalidSchema(c.name, "array field expects [][]byte")
		}
		if len(vals) > f.MaxLength {
			vals = vals[:f.MaxLength]
		}
		raw := make([][]byte, len(vals))
		for i, b := range vals {
			cp := make([]byte, len(b))
			copy(cp, b)
			raw[i] = cp
		}
		c.arrays[si].data[slot].Store(&arrayValue{bytes: raw})
	default: // KindNumber
		raw, ok := value.([]uint64)
		if !ok {
			return NewErrInvalidSchema(c.name, "array field expects []uint64")
		}
		if len(raw) > f.MaxLength {
			raw = raw[:f.MaxLength]
		}
		cp := make([]uint64, len(raw))
		copy(cp, raw)
		c.arrays[si].data[slot].Store(&arrayValue{nums: cp})
	}
	return nil
}

// Default resets every field of entity to its zero value without emitting
// per-field events beyond a single CHANGED for the whole component.
func (c *Column) Default(entity EntityID) error {
	e := c.slot(entity)
	for _, f := range c.schema.Fields {
		idx, _ := c.schema.Index(f.Name)
		si := c.storageIdx[idx]
		switch f.Kind {
		case KindNumber:
			c.numbers[si].data[e].Store(0)
		case KindBool:
			c.bools[si].data[e].Store(0)
		case KindString, KindBinary:
			c.bytes[si].data[e].Store(nil)
		case KindEnum:
			c.enums[si].data[e].Store(0)
		case KindArray:
			c.arrays[si].data[e].Store(nil)
		case KindTuple:
			t := c.tuples[si]
			base := int(e) * t.length
			for i := 0; i < t.length; i++ {
				t.data[base+i].Store(0)
			}
		case KindBuffer:
			b := c.buffers[si]
			b.lengths[e].Store(0)
		case KindRef:
			c.refs[si].data[e].Store(NullRef)
		}
	}
	c.emitChanged(entity)
	return nil
}

// Copy duplicates every field of src onto dst.
func (c *Column) Copy(src, dst EntityID) error {
	for _, f := range c.schema.Fields {
		v, err := c.Read(src, f.Name)
		if err != nil {
			return err
		}
		if f.Kind == KindRef {
			si := c.storageIdx[c.schema.MustIndex(f.Name)]
			raw := c.refs[si].data[c.slot(src)].Load()
			c.refs[si].data[c.slot(dst)].Store(raw)
			continue
		}
		if err := c.Write(dst, f.Name, v); err != nil {
			return err
		}
	}
	return nil
}

// Patch applies a partial set of field writes; fields not named in values
// are left untouched. Each field write emits its own CHANGED, matching
// Write's semantics field by field. The writes are not atomic as a group:
// the first failing field stops Patch, and fields already written stay
// written.
func (c *Column) Patch(entity EntityID, values map[string]interface{}) error {
	for name, v := range values {
		if err := c.Write(entity, name, v); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns every field of entity as a name->value map.
func (c *Column) Snapshot(entity EntityID) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(c.schema.Fields))
	for _, f := range c.schema.Fields {
		v, err := c.Read(entity, f.Name)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

// Singleton ops: the same column operations, but without an entity id —
// there is exactly one instance per world, stored at slot 0. The id
// argument these delegate to is discarded by Column.slot whenever the
// column is a singleton, so SingletonEntityID is just documentation here.

func (c *Column) ReadSingleton(fieldName string) (interface{}, error) {
	return c.Read(SingletonEntityID, fieldName)
}

func (c *Column) WriteSingleton(fieldName string, value interface{}) error {
	return c.Write(SingletonEntityID, fieldName, value)
}

func (c *Column) DefaultSingleton() error {
	return c.Default(SingletonEntityID)
}

func (c *Column) PatchSingleton(values map[string]interface{}) error {
	return c.Patch(SingletonEntityID, values)
}

func (c *Column) SnapshotSingleton() (map[string]interface{}, error) {
	return c.Snapshot(SingletonEntityID)
}
