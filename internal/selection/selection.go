// Package selection holds the ordered set of templates a user has picked.
package selection

import (
	"sync"

	"ui-kit-catalog/internal/model"
)

// Set is an ordered collection of templates, unique by name.
// Membership is decided by name, never by identity.
type Set struct {
	mu    sync.RWMutex
	items []model.Template
}

// New returns an empty Set.
func New() *Set {
	return &Set{}
}

// Toggle removes every entry named name when one is present; otherwise it
// appends every catalog entry with that name, keeping catalog order.
// It reports whether name is selected afterwards.
func (s *Set) Toggle(name string, catalog []model.Template) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.containsLocked(name) {
		kept := make([]model.Template, 0, len(s.items))
		for _, t := range s.items {
			if t.Name != name {
				kept = append(kept, t)
			}
		}
		s.items = kept
		return false
	}

	for _, t := range catalog {
		if t.Name == name {
			s.items = append(s.items, t)
		}
	}
	return s.containsLocked(name)
}

// IsSelected reports whether some entry in the set has the given name.
func (s *Set) IsSelected(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.containsLocked(name)
}

func (s *Set) containsLocked(name string) bool {
	for _, t := range s.items {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Items returns a copy of the selected templates in selection order.
func (s *Set) Items() []model.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Template, len(s.items))
	copy(out, s.items)
	return out
}

// Names returns the selected template names in selection order.
func (s *Set) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.items))
	for _, t := range s.items {
		names = append(names, t.Name)
	}
	return names
}

// Len returns the number of selected templates.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
