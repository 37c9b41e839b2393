package store

import "slices"

// EventName names a store lifecycle event.
type EventName string

const (
	// AfterCreate fires when an entity is registered.
	AfterCreate EventName = "afterCreate"
	// AfterUpdate fires when a stored entity is merged into.
	AfterUpdate EventName = "afterUpdate"
	// AfterReplace fires when a stored entity is replaced; Previous holds the old instance.
	AfterReplace EventName = "afterReplace"
	// AfterRemove fires when an entity is removed.
	AfterRemove EventName = "afterRemove"
)

// Event describes one lifecycle change.
type Event struct {
	Name     EventName
	Entity   *Entity
	Previous *Entity
}

// Hook receives store events. Hooks run after the store lock is released.
type Hook func(Event)

type hook struct {
	id uint64
	fn Hook
}

// On registers fn for events named name and returns a func removing that registration.
func (s *Store) On(name EventName, fn Hook) func() {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()

	s.hookSeq++
	id := s.hookSeq
	s.hooks[name] = append(s.hooks[name], hook{id: id, fn: fn})

	return func() {
		s.hookMu.Lock()
		defer s.hookMu.Unlock()
		s.hooks[name] = slices.DeleteFunc(s.hooks[name], func(h hook) bool {
			return h.id == id
		})
	}
}

// emit delivers events in order.
func (s *Store) emit(events []Event) {
	for _, ev := range events {
		s.hookMu.Lock()
		hooks := slices.Clone(s.hooks[ev.Name])
		s.hookMu.Unlock()

		for _, h := range hooks {
			h.fn(ev)
		}
	}
}
