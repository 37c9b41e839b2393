package store

import (
	"fmt"
	"maps"
	"slices"

	"go.trai.ch/gqlstore/internal/core/domain"
	"go.trai.ch/zerr"
)

// Create constructs and registers a new entity without going through Resolve.
// The identifier is taken from fields or generated; generated identifiers mark
// the entity local.
func (s *Store) Create(typename string, fields map[string]any, source domain.Source) (*Entity, error) {
	s.mu.Lock()

	m, err := s.model(typename)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	id, generated := s.identify(typename, fields)
	if _, exists := s.partitions[typename][id]; exists {
		s.mu.Unlock()
		err := zerr.With(zerr.Wrap(domain.ErrAlreadyExists, "create"), "typename", typename)
		return nil, zerr.With(err, "id", id)
	}
	if generated {
		source = domain.SourceLocal
	}

	var events []Event
	resolved := s.resolveChildren(fields, source, &events)
	e := s.construct(m, id, resolved, source)
	s.insert(e)
	events = append(events, Event{Name: AfterCreate, Entity: e})
	s.release(events)
	return e, nil
}

// Build constructs an entity without registering it, for use as a Replace replacement.
func (s *Store) Build(typename string, fields map[string]any, source domain.Source) (*Entity, error) {
	s.mu.Lock()

	m, err := s.model(typename)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	id, generated := s.identify(typename, fields)
	if generated {
		source = domain.SourceLocal
	}

	var events []Event
	resolved := s.resolveChildren(fields, source, &events)
	e := s.construct(m, id, resolved, source)
	s.release(events)
	return e, nil
}

// Update deep-merges fields into the stored entity (typename, id) and re-tags its provenance.
func (s *Store) Update(typename, id string, fields map[string]any, source domain.Source) (*Entity, error) {
	s.mu.Lock()

	if _, err := s.model(typename); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	e, ok := s.partitions[typename][id]
	if !ok {
		s.mu.Unlock()
		return nil, errNotStored("update", typename, id)
	}

	var events []Event
	resolved := s.resolveChildren(fields, source, &events)
	s.mergeInto(e, "", e.fields, resolved, true)
	e.source = source
	events = append(events, Event{Name: AfterUpdate, Entity: e})
	s.release(events)
	return e, nil
}

// Merge deep-merges data into target, which must be an *Entity or a plain map.
func (s *Store) Merge(target any, data map[string]any) error {
	s.mu.Lock()

	var events []Event
	switch t := target.(type) {
	case *Entity:
		resolved := s.resolveChildren(data, t.source, &events)
		s.mergeInto(t, "", t.fields, resolved, true)
		if s.partitions[t.typename][t.id] == t {
			events = append(events, Event{Name: AfterUpdate, Entity: t})
		}
	case map[string]any:
		resolved := s.resolveChildren(data, domain.SourceLocal, &events)
		s.mergeInto(nil, "", t, resolved, false)
	default:
		s.mu.Unlock()
		return zerr.With(zerr.Wrap(domain.ErrAssignNotSupported, "merge"), "target", fmt.Sprintf("%T", target))
	}
	s.release(events)
	return nil
}

// mergeInto assigns data into dst, which is owner's fields at path (or a plain map when
// owner is nil). Undefined values are skipped, non-writable top-level fields are skipped,
// plain objects merge into the existing object in place, everything else is assigned.
func (s *Store) mergeInto(owner *Entity, path string, dst, data map[string]any, top bool) {
	for _, k := range slices.Sorted(maps.Keys(data)) {
		v := data[k]
		if domain.IsUndefined(v) {
			continue
		}
		if top && owner != nil && !s.writable(owner, k) {
			continue
		}

		field := joinPath(path, k)
		if next, ok := v.(map[string]any); ok {
			if cur, ok := dst[k].(map[string]any); ok {
				s.mergeInto(owner, field, cur, next, false)
				continue
			}
		}
		s.assign(owner, dst, field, k, v)
	}
}

// writable reports whether a merge may assign field on e.
func (s *Store) writable(e *Entity, field string) bool {
	if field == s.conventions.IdentifierField || field == s.conventions.TypenameField {
		return false
	}
	return e.model.Writable(field)
}

// assign is the single write seam: every field the store writes goes through here.
// The write is reported to the notifier once the lock is released.
func (s *Store) assign(owner *Entity, dst map[string]any, field, key string, v any) {
	dst[key] = v
	s.queueWrite(owner, field)
}

// unset removes key from dst through the same seam as assign.
func (s *Store) unset(owner *Entity, dst map[string]any, field, key string) {
	delete(dst, key)
	s.queueWrite(owner, field)
}

func (s *Store) queueWrite(owner *Entity, field string) {
	if owner == nil {
		return
	}
	s.writes = append(s.writes, write{typename: owner.typename, id: owner.id, field: field})
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
