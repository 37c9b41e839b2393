package store

import (
	"maps"
	"slices"

	"go.trai.ch/gqlstore/internal/core/domain"
	"go.trai.ch/zerr"
)

// Resolve normalizes payload into canonical entities.
//
// Objects carrying a registered typename and an identifier resolve to the stored
// entity for that pair, merged with the payload, or to a newly registered entity.
// Other objects and arrays are rebuilt with their children resolved. Scalars are
// returned unchanged.
func (s *Store) Resolve(payload any, source domain.Source) (any, error) {
	s.mu.Lock()
	if s.strict {
		if err := s.validate(payload); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}
	var events []Event
	out := s.resolveValue(payload, source, &events)
	s.release(events)
	return out, nil
}

// validate rejects payloads naming unregistered typenames before anything is written.
func (s *Store) validate(v any) error {
	switch t := v.(type) {
	case map[string]any:
		if name, ok := s.conventions.Typename(t); ok {
			if _, err := s.model(name); err != nil {
				return err
			}
		}
		for _, child := range t {
			if err := s.validate(child); err != nil {
				return err
			}
		}
	case []any:
		for _, child := range t {
			if err := s.validate(child); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) resolveValue(v any, source domain.Source, events *[]Event) any {
	switch t := v.(type) {
	case map[string]any:
		return s.resolveObject(t, source, events)
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = s.resolveValue(el, source, events)
		}
		return out
	default:
		return v
	}
}

// resolveChildren resolves every selected field of obj into a new map.
func (s *Store) resolveChildren(obj map[string]any, source domain.Source, events *[]Event) map[string]any {
	resolved := make(map[string]any, len(obj))
	for _, k := range slices.Sorted(maps.Keys(obj)) {
		v := obj[k]
		if domain.IsUndefined(v) {
			continue
		}
		resolved[k] = s.resolveValue(v, source, events)
	}
	return resolved
}

func (s *Store) resolveObject(obj map[string]any, source domain.Source, events *[]Event) any {
	resolved := s.resolveChildren(obj, source, events)

	typename, ok := s.conventions.Typename(obj)
	if !ok {
		return resolved
	}
	m, ok := s.models[typename]
	if !ok {
		return resolved
	}
	id, ok := s.conventions.Identifier(obj)
	if !ok {
		return resolved
	}

	if e, exists := s.partitions[typename][id]; exists {
		s.mergeInto(e, "", e.fields, resolved, true)
		e.source = source
		*events = append(*events, Event{Name: AfterUpdate, Entity: e})
		return e
	}

	e := s.construct(m, id, resolved, source)
	s.insert(e)
	*events = append(*events, Event{Name: AfterCreate, Entity: e})
	return e
}

// construct builds an unregistered entity from already resolved fields.
func (s *Store) construct(m *domain.Model, id string, fields map[string]any, source domain.Source) *Entity {
	e := &Entity{
		store:    s,
		model:    m,
		typename: m.Name,
		id:       id,
		source:   source,
		fields:   make(map[string]any, len(fields)+len(m.Defaults)+2),
	}
	s.assign(e, e.fields, s.conventions.TypenameField, s.conventions.TypenameField, m.Name)
	s.assign(e, e.fields, s.conventions.IdentifierField, s.conventions.IdentifierField, id)
	for _, k := range slices.Sorted(maps.Keys(m.Defaults)) {
		if m.Writable(k) {
			s.assign(e, e.fields, k, k, cloneValue(m.Defaults[k]))
		}
	}
	s.mergeInto(e, "", e.fields, fields, true)
	return e
}

// cloneValue deep-copies plain maps and slices. Entities are kept by reference.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = cloneValue(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = cloneValue(child)
		}
		return out
	default:
		return v
	}
}

// identify returns the identifier carried by fields, or a freshly generated one.
func (s *Store) identify(typename string, fields map[string]any) (id string, generated bool) {
	if id, ok := s.conventions.Identifier(fields); ok {
		return id, false
	}
	return s.generateID(typename), true
}

// errNotStored builds ErrInstanceNotFound with the entity coordinates attached.
func errNotStored(op, typename, id string) error {
	err := zerr.With(zerr.Wrap(domain.ErrInstanceNotFound, op), "typename", typename)
	return zerr.With(err, "id", id)
}
