// context.go: per-system entity and component operations
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package loom

// Context is a thin, cheaply-constructed handle systems use to create and
// mutate entities. Every Context for a given World shares the same
// underlying tables; systemID only scopes logging/metrics attribution.
type Context struct {
	world    *World
	systemID string
}

// CreateEntity acquires a fresh id from the pool and marks it alive with an
// advanced generation, emitting an Added event.
func (c *Context) CreateEntity() (EntityID, error) {
	id, err := c.world.ids.acquire()
	if err != nil {
		return 0, err
	}
	c.world.entities.create(id)
	c.world.events.push(Event{Entity: id, Type: EventAdded})
	return id, nil
}

// RemoveEntity marks id dead and emits a Removed event. The id is not
// returned to the pool until the reclamation watermark passes; reads
// against id remain valid (IsAlive reports false) until then.
func (c *Context) RemoveEntity(id EntityID) error {
	if !c.world.entities.isAlive(id) {
		return NewErrEntityDead(id, "RemoveEntity")
	}
	c.world.entities.markDead(id)
	c.world.events.push(Event{Entity: id, Type: EventRemoved})
	c.world.history.scheduleReclaim(id, c.world.events.head())
	return nil
}

// IsAlive reports whether id currently denotes a live entity.
func (c *Context) IsAlive(id EntityID) bool {
	return c.world.entities.isAlive(id)
}

// AddComponent attaches column's component to entity, defaulting its
// fields, and emits a ComponentAdded event. Fails with DuplicateComponent
// if entity already owns the component, or EntityDead if entity is dead.
func (c *Context) AddComponent(entity EntityID, col *Column) error {
	if !c.world.entities.isAlive(entity) {
		return NewErrEntityDead(entity, "AddComponent")
	}
	if c.world.entities.addComponent(entity, col.componentID) {
		return NewErrDuplicateComponent(entity, col.name)
	}
	_ = col.Default(entity)
	c.world.events.push(Event{Entity: entity, Type: EventComponentAdded, ComponentID: col.componentID})
	return nil
}

// RemoveComponent detaches column's component from entity and emits a
// ComponentRemoved event. A no-op if entity did not own the component.
func (c *Context) RemoveComponent(entity EntityID, col *Column) error {
	if !c.world.entities.isAlive(entity) {
		return NewErrEntityDead(entity, "RemoveComponent")
	}
	if !c.world.entities.hasComponent(entity, col.componentID) {
		return nil
	}
	c.world.entities.removeComponent(entity, col.componentID)
	c.world.events.push(Event{Entity: entity, Type: EventComponentRemoved, ComponentID: col.componentID})
	return nil
}

// HasComponent reports whether entity currently owns column's component.
func (c *Context) HasComponent(entity EntityID, col *Column) bool {
	return c.world.entities.hasComponent(entity, col.componentID)
}

// GetBackrefs scans refCol's ref field named fieldName for every entity
// whose value points at target. This is an O(maxEntities) scan; the spec
// treats back-reference lookup as a diagnostic/rare-path operation, not a
// per-frame one, so no reverse index is maintained.
func (c *Context) GetBackrefs(refCol *Column, fieldName string, target EntityID) ([]EntityID, error) {
	f, idx, err := refCol.fieldDef(fieldName)
	if err != nil {
		return nil, err
	}
	if f.Kind != KindRef {
		return nil, NewErrInvalidSchema(refCol.name, "field "+fieldName+" is not a ref")
	}
	si := refCol.storageIdx[idx]
	var out []EntityID
	for id := 0; id < refCol.maxEntities; id++ {
		eid := EntityID(id)
		if !c.world.entities.isAlive(eid) {
			continue
		}
		if refCol.readRef(si, eid) == target {
			out = append(out, eid)
		}
	}
	return out, nil
}
