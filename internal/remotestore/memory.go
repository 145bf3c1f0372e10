package remotestore

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store used by tests. A single mutex gives
// it the same all-or-nothing transaction semantics as the real store.
// The Fail* hooks let tests inject transport failures per path.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]any

	FailGet    func(path string) error
	FailSet    func(path string) error
	FailUpdate func(path string) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]any)}
}

// Seed writes a value without going through the transactional path.
func (s *MemoryStore) Seed(path string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[path] = value
}

// Value reads a raw value for assertions, reporting whether it exists.
func (s *MemoryStore) Value(path string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[path]
	return v, ok
}

func (s *MemoryStore) Get(ctx context.Context, path string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailGet != nil {
		if err := s.FailGet(path); err != nil {
			return nil, fmt.Errorf("%w: get %s: %v", ErrUnreachable, path, err)
		}
	}
	v, ok := s.data[path]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(ctx context.Context, path string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSet != nil {
		if err := s.FailSet(path); err != nil {
			return fmt.Errorf("%w: set %s: %v", ErrUnreachable, path, err)
		}
	}
	s.data[path] = value
	return nil
}

func (s *MemoryStore) AtomicUpdate(ctx context.Context, path string, fn UpdateFunc) (bool, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpdate != nil {
		if err := s.FailUpdate(path); err != nil {
			return false, nil, fmt.Errorf("%w: update %s: %v", ErrUnreachable, path, err)
		}
	}

	current, ok := s.data[path]
	if !ok {
		current = nil
	}

	next, err := fn(current)
	if err != nil {
		if errors.Is(err, ErrAbort) {
			return false, current, nil
		}
		return false, nil, err
	}

	s.data[path] = next
	return true, next, nil
}
