package store

import (
	"maps"
	"reflect"
	"slices"

	"go.trai.ch/gqlstore/internal/core/domain"
	"go.trai.ch/zerr"
)

// Replace swaps target for replacement in the store slot and in every structural
// reference held by stored entities. Both must share typename and identifier.
func (s *Store) Replace(target, replacement *Entity) error {
	if target == nil || replacement == nil {
		return zerr.Wrap(domain.ErrInstanceNotFound, "replace with nil entity")
	}

	s.mu.Lock()

	m, err := s.model(target.typename)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if target.typename != replacement.typename || target.id != replacement.id {
		s.mu.Unlock()
		err := zerr.With(zerr.Wrap(domain.ErrReplacementIdentityMismatch, "replace"), "target", target.String())
		return zerr.With(err, "replacement", replacement.String())
	}
	if s.partitions[target.typename][target.id] != target {
		s.mu.Unlock()
		return errNotStored("replace", target.typename, target.id)
	}

	replacement.store = s
	replacement.model = m
	replacement.seq = target.seq
	s.partitions[target.typename][target.id] = replacement
	s.rewriteAll(target, replacement)
	s.release([]Event{{Name: AfterReplace, Entity: replacement, Previous: target}})
	return nil
}

// Remove deletes instance from its slot and scrubs every structural reference to it:
// fields holding it are unset and arrays holding it shrink.
func (s *Store) Remove(instance *Entity) error {
	if instance == nil {
		return zerr.Wrap(domain.ErrInstanceNotFound, "remove nil entity")
	}

	s.mu.Lock()

	if s.partitions[instance.typename][instance.id] != instance {
		s.mu.Unlock()
		return errNotStored("remove", instance.typename, instance.id)
	}

	delete(s.partitions[instance.typename], instance.id)
	s.rewriteAll(instance, nil)
	s.release([]Event{{Name: AfterRemove, Entity: instance}})
	return nil
}

// Rewrite applies the replace/remove substitution to an arbitrary root value, such as a
// cached response, and returns the rewritten root. A nil to removes references; a root
// that is from itself is then removed too, and Rewrite returns nil.
func (s *Store) Rewrite(root any, from, to *Entity) any {
	s.mu.Lock()
	out := s.rewriteRoot(root, from, to)
	s.release(nil)
	return out
}

func (s *Store) rewriteRoot(root any, from, to *Entity) any {
	r := newRewriter(s, from, to)
	switch t := root.(type) {
	case *Entity:
		if t == from {
			if to == nil {
				return nil
			}
			return to
		}
		r.entity(t)
	case map[string]any:
		r.fields(nil, "", t)
	case []any:
		if out, changed := r.slice(nil, "", t); changed {
			return out
		}
	}
	return root
}

// rewriteAll visits every stored entity across all partitions.
func (s *Store) rewriteAll(from, to *Entity) {
	r := newRewriter(s, from, to)
	for _, name := range slices.Sorted(maps.Keys(s.partitions)) {
		for _, e := range s.partitions[name] {
			r.entity(e)
		}
	}
}

// rewriter substitutes references to from with to, or drops them when to is nil.
// The stored graph may be cyclic, so every entity and map is visited at most once.
type rewriter struct {
	s        *Store
	from     *Entity
	to       *Entity
	entities map[*Entity]struct{}
	seenMaps map[uintptr]struct{}
}

func newRewriter(s *Store, from, to *Entity) *rewriter {
	return &rewriter{
		s:        s,
		from:     from,
		to:       to,
		entities: make(map[*Entity]struct{}),
		seenMaps: make(map[uintptr]struct{}),
	}
}

func (r *rewriter) entity(e *Entity) {
	if e == r.from {
		return
	}
	if _, seen := r.entities[e]; seen {
		return
	}
	r.entities[e] = struct{}{}
	r.fields(e, "", e.fields)
}

func (r *rewriter) fields(owner *Entity, path string, m map[string]any) {
	ptr := reflect.ValueOf(m).Pointer()
	if _, seen := r.seenMaps[ptr]; seen {
		return
	}
	r.seenMaps[ptr] = struct{}{}

	for _, k := range slices.Sorted(maps.Keys(m)) {
		field := joinPath(path, k)
		switch v := m[k].(type) {
		case *Entity:
			if v != r.from {
				r.entity(v)
				continue
			}
			if r.to == nil {
				r.s.unset(owner, m, field, k)
			} else {
				r.s.assign(owner, m, field, k, r.to)
			}
		case map[string]any:
			r.fields(owner, field, v)
		case []any:
			if out, changed := r.slice(owner, field, v); changed {
				r.s.assign(owner, m, field, k, out)
			}
		}
	}
}

// slice returns a rewritten copy of xs and true when any element changed.
func (r *rewriter) slice(owner *Entity, path string, xs []any) ([]any, bool) {
	changed := false
	out := make([]any, 0, len(xs))
	for _, el := range xs {
		switch v := el.(type) {
		case *Entity:
			if v == r.from {
				changed = true
				if r.to != nil {
					out = append(out, r.to)
				}
				continue
			}
			r.entity(v)
		case map[string]any:
			r.fields(owner, path, v)
		case []any:
			if nested, ok := r.slice(owner, path, v); ok {
				changed = true
				out = append(out, nested)
				continue
			}
		}
		out = append(out, el)
	}
	if !changed {
		return xs, false
	}
	return out, true
}
