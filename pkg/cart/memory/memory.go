// Package memory implements an in-memory cart storage.
package memory

import (
	"context"
	"sync"
)

// Storage keeps values in a map. It satisfies cart.Storage.
type Storage struct {
	mu     sync.RWMutex
	values map[string]string
	writes int
}

// New creates an empty in-memory storage.
func New() *Storage {
	return &Storage{values: make(map[string]string)}
}

// Get returns the value stored at key.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set overwrites the value at key.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.writes++
	return nil
}

// Writes returns how many times Set succeeded.
func (s *Storage) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
