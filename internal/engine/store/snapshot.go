package store

import "math"

// Snapshot converts a resolved value into a plain tree of maps, slices, and scalars.
// Entities already being expanded higher up the same path are emitted as
// {typename, id} references, so cyclic graphs produce finite output. An entity
// reached through several paths is expanded once and its output map is shared,
// unless its expansion refers back to an entity above it.
func (s *Store) Snapshot(v any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sn := &snapshotter{
		s:     s,
		depth: make(map[*Entity]int),
		done:  make(map[*Entity]map[string]any),
	}
	out, _ := sn.value(v)
	return out
}

type snapshotter struct {
	s *Store
	// depth holds the entities on the current path.
	depth map[*Entity]int
	// done holds finished expansions that do not depend on the path they were reached by.
	done map[*Entity]map[string]any
}

// value returns the snapshot of v and the smallest path depth it refers back to,
// or math.MaxInt when it refers to nothing on the path.
func (sn *snapshotter) value(v any) (any, int) {
	switch t := v.(type) {
	case *Entity:
		return sn.entity(t)
	case map[string]any:
		low := math.MaxInt
		out := make(map[string]any, len(t))
		for k, child := range t {
			var l int
			out[k], l = sn.value(child)
			low = min(low, l)
		}
		return out, low
	case []any:
		low := math.MaxInt
		out := make([]any, len(t))
		for i, child := range t {
			var l int
			out[i], l = sn.value(child)
			low = min(low, l)
		}
		return out, low
	default:
		return v, math.MaxInt
	}
}

func (sn *snapshotter) entity(e *Entity) (any, int) {
	if d, open := sn.depth[e]; open {
		return map[string]any{
			sn.s.conventions.TypenameField:   e.typename,
			sn.s.conventions.IdentifierField: e.id,
		}, d
	}
	if out, ok := sn.done[e]; ok {
		return out, math.MaxInt
	}

	d := len(sn.depth)
	sn.depth[e] = d

	low := math.MaxInt
	out := make(map[string]any, len(e.fields)+len(e.model.Computed))
	for k, child := range e.fields {
		var l int
		out[k], l = sn.value(child)
		low = min(low, l)
	}
	for k, fn := range e.model.Computed {
		var l int
		out[k], l = sn.value(fn(lockedReader{e: e}))
		low = min(low, l)
	}
	delete(sn.depth, e)

	if low < d {
		return out, low
	}
	sn.done[e] = out
	return out, math.MaxInt
}
