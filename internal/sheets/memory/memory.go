// Package memory is an in-process mirror used in tests and local development.
package memory

import (
	"context"
	"sync"

	"finanzas/internal/core"
	"finanzas/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	items map[string]core.Transaction
	fail  error
}

var _ sheets.Mirror = (*Store)(nil)

func New() *Store {
	return &Store{items: make(map[string]core.Transaction)}
}

// Fail makes subsequent calls return err; nil restores normal behavior.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *Store) Upsert(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.items[t.ID] = t
	return nil
}

func (s *Store) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	delete(s.items, id)
	return nil
}

// Get returns the mirrored row for id.
func (s *Store) Get(id string) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.items[id]
	return t, ok
}

// Len returns the number of mirrored rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
