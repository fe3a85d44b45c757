// entity.go: entity liveness, generation and component bitmask table (C2)
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package loom

import "sync/atomic"

// entityTable is a flat record array indexed by entity id. Each record
// occupies 1 + ceil(componentCount/8) logical bytes: byte 0 is metadata
// (bit 0 alive, bits 1-7 generation), the rest is the component bitmask.
//
// Go has no single-byte CAS, so the logical byte layout is backed by
// atomic.Uint32 words; every byte-level op is a load-compute-CAS-retry
// loop over the enclosing word, the same shape the teacher's frequency
// sketch uses to update a packed 4-bit counter inside a uint64 word.
type entityTable struct {
	words          []atomic.Uint32
	recordBytes    int // 1 + ceil(componentCount/8)
	maskBytes      int // recordBytes - 1
	maxEntities    int
	componentCount int
}

func newEntityTable(maxEntities, componentCount int) *entityTable {
	maskBytes := (componentCount + 7) / 8
	recordBytes := 1 + maskBytes
	wordsPerRecord := (recordBytes + 3) / 4
	t := &entityTable{
		words:          make([]atomic.Uint32, maxEntities*wordsPerRecord),
		recordBytes:    recordBytes,
		maskBytes:      maskBytes,
		maxEntities:    maxEntities,
		componentCount: componentCount,
	}
	return t
}

func (t *entityTable) wordsPerRecord() int {
	return (t.recordBytes + 3) / 4
}

func (t *entityTable) byteLoc(id EntityID, localByte int) (wordIdx int, shift uint) {
	recordStart := int(id) * t.wordsPerRecord()
	wordOffset := localByte / 4
	byteInWord := localByte % 4
	return recordStart + wordOffset, uint(byteInWord) * 8
}

func (t *entityTable) loadByte(id EntityID, localByte int) byte {
	wordIdx, shift := t.byteLoc(id, localByte)
	word := t.words[wordIdx].Load()
	return byte(word >> shift)
}

func (t *entityTable) storeByte(id EntityID, localByte int, value byte) {
	wordIdx, shift := t.byteLoc(id, localByte)
	for {
		word := t.words[wordIdx].Load()
		newWord := (word &^ (uint32(0xFF) << shift)) | (uint32(value) << shift)
		if t.words[wordIdx].CompareAndSwap(word, newWord) {
			return
		}
	}
}

// casByte attempts old -> new, retrying on spurious CAS failure from
// bytes sharing the same word as long as the target byte still equals
// old. Returns false if the target byte no longer equals old.
func (t *entityTable) casByte(id EntityID, localByte int, old, new byte) bool {
	wordIdx, shift := t.byteLoc(id, localByte)
	for {
		word := t.words[wordIdx].Load()
		cur := byte(word >> shift)
		if cur != old {
			return false
		}
		newWord := (word &^ (uint32(0xFF) << shift)) | (uint32(new) << shift)
		if t.words[wordIdx].CompareAndSwap(word, newWord) {
			return true
		}
	}
}

// orByte atomically ORs mask into the target byte, returning the byte's
// prior value.
func (t *entityTable) orByte(id EntityID, localByte int, mask byte) byte {
	wordIdx, shift := t.byteLoc(id, localByte)
	for {
		word := t.words[wordIdx].Load()
		cur := byte(word >> shift)
		newWord := (word &^ (uint32(0xFF) << shift)) | (uint32(cur|mask) << shift)
		if t.words[wordIdx].CompareAndSwap(word, newWord) {
			return cur
		}
	}
}

// andNotByte atomically clears mask bits from the target byte, returning
// the byte's prior value.
func (t *entityTable) andNotByte(id EntityID, localByte int, mask byte) byte {
	wordIdx, shift := t.byteLoc(id, localByte)
	for {
		word := t.words[wordIdx].Load()
		cur := byte(word >> shift)
		newWord := (word &^ (uint32(0xFF) << shift)) | (uint32(cur&^mask) << shift)
		if t.words[wordIdx].CompareAndSwap(word, newWord) {
			return cur
		}
	}
}

// create marks id alive, advancing its generation by one (mod 128) and
// clearing its component mask. Precondition: the caller just acquired id
// from the Id Pool.
func (t *entityTable) create(id EntityID) (generation uint8) {
	for {
		old := t.loadByte(id, 0)
		oldGen := old >> 1
		newGen := (oldGen + 1) % 128
		newMeta := (newGen << 1) | 1
		if t.casByte(id, 0, old, newMeta) {
			for b := 1; b < t.recordBytes; b++ {
				t.storeByte(id, b, 0)
			}
			return newGen
		}
	}
}

// markDead clears the alive bit without touching generation or mask
// bytes, so removed() queries can still read the entity's last data.
func (t *entityTable) markDead(id EntityID) {
	t.andNotByte(id, 0, 0x01)
}

// delete clears id's component mask, called only during reclamation after
// the watermark has passed. The generation byte is left untouched: create
// reads and advances it, so a reclaimed id keeps handing out fresh
// generations instead of resetting to a value a stale ref might still hold.
func (t *entityTable) delete(id EntityID) {
	for b := 1; b < t.recordBytes; b++ {
		t.storeByte(id, b, 0)
	}
}

// addComponent sets cid's bit, returning whether it was already set
// (DuplicateComponent territory for the caller).
func (t *entityTable) addComponent(id EntityID, cid uint16) (alreadySet bool) {
	localByte := 1 + int(cid)/8
	bit := byte(1) << uint(cid%8)
	prev := t.orByte(id, localByte, bit)
	return prev&bit != 0
}

// removeComponent clears cid's bit.
func (t *entityTable) removeComponent(id EntityID, cid uint16) {
	localByte := 1 + int(cid)/8
	bit := byte(1) << uint(cid%8)
	t.andNotByte(id, localByte, bit)
}

func (t *entityTable) hasComponent(id EntityID, cid uint16) bool {
	localByte := 1 + int(cid)/8
	bit := byte(1) << uint(cid%8)
	return t.loadByte(id, localByte)&bit != 0
}

func (t *entityTable) isAlive(id EntityID) bool {
	return t.loadByte(id, 0)&0x01 != 0
}

func (t *entityTable) getGeneration(id EntityID) uint8 {
	return t.loadByte(id, 0) >> 1
}

// masks holds precomputed bitmasks for a query's with/without/any
// component sets plus "has any non-zero byte" fast-path flags. track is a
// separate component-id bitmask: not a structural predicate, but the
// subset of components whose CHANGED events this query's reader wants to
// see reported (spec's "tracking ⊆ with" changed-filter mask).
type masks struct {
	with, without, any, track       []byte
	withNZ, withoutNZ, anyNZ, trackNZ bool
}

func newMasks(maskBytes int) *masks {
	return &masks{
		with:    make([]byte, maskBytes),
		without: make([]byte, maskBytes),
		any:     make([]byte, maskBytes),
		track:   make([]byte, maskBytes),
	}
}

func (m *masks) setWith(cid uint16)    { m.with[cid/8] |= 1 << (cid % 8); m.withNZ = true }
func (m *masks) setWithout(cid uint16) { m.without[cid/8] |= 1 << (cid % 8); m.withoutNZ = true }
func (m *masks) setAny(cid uint16)     { m.any[cid/8] |= 1 << (cid % 8); m.anyNZ = true }
func (m *masks) setTrack(cid uint16)   { m.track[cid/8] |= 1 << (cid % 8); m.trackNZ = true }

// hasTrack reports whether cid is in the query's changed-tracking mask.
func (m *masks) hasTrack(cid uint16) bool {
	if !m.trackNZ || int(cid)/8 >= len(m.track) {
		return false
	}
	return m.track[cid/8]&(1<<(cid%8)) != 0
}

// matches reports whether id is alive and satisfies with/without/any.
func (t *entityTable) matches(id EntityID, m *masks) bool {
	if t.loadByte(id, 0)&0x01 == 0 {
		return false
	}
	if m.withNZ {
		for i, b := range m.with {
			if b == 0 {
				continue
			}
			if t.loadByte(id, 1+i)&b != b {
				return false
			}
		}
	}
	if m.withoutNZ {
		for i, b := range m.without {
			if b == 0 {
				continue
			}
			if t.loadByte(id, 1+i)&b != 0 {
				return false
			}
		}
	}
	if m.anyNZ {
		found := false
		for i, b := range m.any {
			if b == 0 {
				continue
			}
			if t.loadByte(id, 1+i)&b != 0 {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
