package store

import "go.trai.ch/gqlstore/internal/core/domain"

var _ domain.FieldReader = (*Entity)(nil)

// Entity is the canonical record for one (typename, identifier) pair.
// Its fields are only written by Store routines; holders share the same pointer
// and observe every merge without re-traversal.
type Entity struct {
	store    *Store
	model    *domain.Model
	typename string
	id       string
	source   domain.Source
	seq      uint64
	fields   map[string]any
}

// Typename returns the discriminator of the entity.
func (e *Entity) Typename() string {
	return e.typename
}

// ID returns the identifier of the entity.
func (e *Entity) ID() string {
	return e.id
}

// Source returns the provenance of the last write.
func (e *Entity) Source() domain.Source {
	e.store.mu.RLock()
	defer e.store.mu.RUnlock()
	return e.source
}

// Get returns the value of field. Computed fields are evaluated on each call.
// Plain objects and arrays are returned as copies, since the store merges into them
// in place; entities inside them are the canonical instances.
func (e *Entity) Get(field string) any {
	if fn, ok := e.model.Computed[field]; ok {
		return fn(e)
	}
	e.store.mu.RLock()
	defer e.store.mu.RUnlock()
	return cloneValue(e.fields[field])
}

// Has reports whether field holds a value.
func (e *Entity) Has(field string) bool {
	if _, ok := e.model.Computed[field]; ok {
		return true
	}
	e.store.mu.RLock()
	defer e.store.mu.RUnlock()
	_, ok := e.fields[field]
	return ok
}

// Fields returns a copy of the stored fields, with plain objects and arrays copied as in Get.
func (e *Entity) Fields() map[string]any {
	e.store.mu.RLock()
	defer e.store.mu.RUnlock()
	return cloneValue(e.fields).(map[string]any)
}

// String returns "Typename:id".
func (e *Entity) String() string {
	return e.typename + ":" + e.id
}

// lockedReader reads an entity while the store lock is already held.
type lockedReader struct {
	e *Entity
}

func (r lockedReader) Typename() string { return r.e.typename }

func (r lockedReader) ID() string { return r.e.id }

func (r lockedReader) Get(field string) any {
	if fn, ok := r.e.model.Computed[field]; ok {
		return fn(r)
	}
	return r.e.fields[field]
}
