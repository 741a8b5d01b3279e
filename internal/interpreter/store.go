package interpreter

import (
	"slices"

	"golang.org/x/exp/maps"

	"ember/internal/value"
)

// Store is the single global name-to-value mapping of one evaluation run.
// It is not safe for concurrent use; each Session owns its own.
type Store struct {
	vars map[string]value.Value
}

func NewStore() *Store {
	return &Store{vars: make(map[string]value.Value)}
}

// Get returns the bound value and whether the name was ever assigned.
func (s *Store) Get(name string) (value.Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Set binds name, replacing any earlier binding.
func (s *Store) Set(name string, v value.Value) {
	if v == nil {
		v = value.Nil{}
	}
	s.vars[name] = v
}

func (s *Store) Len() int {
	return len(s.vars)
}

// Names returns the bound names in sorted order.
func (s *Store) Names() []string {
	names := maps.Keys(s.vars)
	slices.Sort(names)
	return names
}

// Snapshot copies the current bindings.
func (s *Store) Snapshot() map[string]value.Value {
	return maps.Clone(s.vars)
}

// Restore replaces every binding with the given ones.
func (s *Store) Restore(vars map[string]value.Value) {
	s.Reset()
	for name, v := range vars {
		s.Set(name, v)
	}
}

func (s *Store) Reset() {
	maps.Clear(s.vars)
}
