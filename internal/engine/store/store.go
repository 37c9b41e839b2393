// Package store implements the entity normalization store.
//
// The store turns tree-shaped response payloads into canonical entities, one per
// (typename, identifier) pair, and keeps every structural reference to an entity
// consistent while it is merged, replaced, or removed. Every mutating routine runs
// under a single lock, so no reader observes a partially merged or rewritten graph.
package store

import (
	"cmp"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.trai.ch/gqlstore/internal/core/domain"
	"go.trai.ch/gqlstore/internal/core/ports"
	"go.trai.ch/zerr"
)

// Store owns per-typename partitions of canonical entities.
type Store struct {
	mu          sync.RWMutex
	conventions domain.Conventions
	strict      bool
	models      map[string]*domain.Model
	partitions  map[string]map[string]*Entity
	seq         uint64
	notifier    ports.WriteNotifier
	writes      []write
	newID       func() string

	hookMu  sync.Mutex
	hookSeq uint64
	hooks   map[EventName][]hook
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier sets the seam told about every field assignment.
func WithNotifier(n ports.WriteNotifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithConventions overrides the identifier and typename field names.
func WithConventions(c domain.Conventions) Option {
	return func(s *Store) {
		s.conventions = c.WithDefaults()
	}
}

// WithStrict makes Resolve fail on typenames without a registered model.
func WithStrict(strict bool) Option {
	return func(s *Store) {
		s.strict = strict
	}
}

// WithIDGenerator replaces the generator of local identifiers.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New creates a Store with the given models registered.
func New(models []domain.Model, opts ...Option) (*Store, error) {
	s := &Store{
		conventions: domain.DefaultConventions(),
		models:      make(map[string]*domain.Model, len(models)),
		partitions:  make(map[string]map[string]*Entity, len(models)),
		notifier:    noopNotifier{},
		newID:       func() string { return domain.LocalIDPrefix + uuid.NewString() },
		hooks:       make(map[EventName][]hook),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, m := range models {
		if err := s.Register(m); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewFromConfig creates a Store from a resolved configuration.
func NewFromConfig(cfg domain.Config, opts ...Option) (*Store, error) {
	base := []Option{WithConventions(cfg.Conventions), WithStrict(cfg.Strict)}
	return New(cfg.Models, append(base, opts...)...)
}

// Register adds a model to the discriminator registry.
func (s *Store) Register(m domain.Model) error {
	if m.Name == "" {
		return zerr.Wrap(domain.ErrInvalidModelName, "model name is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.models[m.Name]; exists {
		return zerr.With(zerr.Wrap(domain.ErrInvalidModelName, "model registered twice"), "typename", m.Name)
	}
	model := m
	s.models[m.Name] = &model
	s.partitions[m.Name] = make(map[string]*Entity)
	return nil
}

// Conventions returns the identifier and typename field names in use.
func (s *Store) Conventions() domain.Conventions {
	return s.conventions
}

// Models returns the registered typenames in lexical order.
func (s *Store) Models() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.models))
}

// Find returns the entity stored for (typename, id), or nil.
func (s *Store) Find(typename, id string) *Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.partitions[typename][id]
}

// FindAll returns every entity of typename in creation order.
func (s *Store) FindAll(typename string) []*Entity {
	s.mu.RLock()
	partition := s.partitions[typename]
	all := make([]*Entity, 0, len(partition))
	for _, e := range partition {
		all = append(all, e)
	}
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b *Entity) int {
		return cmp.Compare(a.seq, b.seq)
	})
	return all
}

// FindBy returns the first entity of typename, in creation order, matching pred.
func (s *Store) FindBy(typename string, pred func(*Entity) bool) *Entity {
	for _, e := range s.FindAll(typename) {
		if pred(e) {
			return e
		}
	}
	return nil
}

// Where returns every entity of typename matching pred.
func (s *Store) Where(typename string, pred func(*Entity) bool) []*Entity {
	var matched []*Entity
	for _, e := range s.FindAll(typename) {
		if pred(e) {
			matched = append(matched, e)
		}
	}
	return matched
}

// Len returns the number of entities stored for typename.
func (s *Store) Len(typename string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.partitions[typename])
}

// model returns the registered model for typename or ErrModelNotRecognized.
func (s *Store) model(typename string) (*domain.Model, error) {
	m, ok := s.models[typename]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrModelNotRecognized, "lookup model"), "typename", typename)
	}
	return m, nil
}

// insert registers e in its partition and stamps its creation order.
func (s *Store) insert(e *Entity) {
	s.seq++
	e.seq = s.seq
	s.partitions[e.typename][e.id] = e
}

// generateID draws local identifiers until one is free in the partition of typename.
func (s *Store) generateID(typename string) string {
	for {
		id := s.newID()
		if _, taken := s.partitions[typename][id]; !taken {
			return id
		}
	}
}

// write is one field assignment queued for the notifier.
type write struct {
	typename string
	id       string
	field    string
}

// release unlocks s, then reports the queued writes and delivers events.
// The notifier and hooks may read from the store, so they run without the lock.
func (s *Store) release(events []Event) {
	writes := s.writes
	s.writes = nil
	s.mu.Unlock()

	for _, w := range writes {
		s.notifier.FieldWritten(w.typename, w.id, w.field)
	}
	s.emit(events)
}

type noopNotifier struct{}

func (noopNotifier) FieldWritten(string, string, string) {}
