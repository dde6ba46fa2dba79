// Package memkv is an in-process KV backend. State lives for the process
// lifetime only; it backs tests and the dev store mode.
package memkv

import (
	"context"
	"sync"
)

type Store struct {
	mu      sync.RWMutex
	strings map[string]string
	lists   map[string][]string
}

func New() *Store {
	return &Store{
		strings: make(map[string]string),
		lists:   make(map[string][]string),
	}
}

func (s *Store) GetString(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.strings[key]
	return v, ok, nil
}

func (s *Store) SetString(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strings[key] = value
	return nil
}

func (s *Store) GetStringList(ctx context.Context, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.lists[key]
	out := make([]string, len(src))
	copy(out, src)
	return out, nil
}

func (s *Store) SetStringList(ctx context.Context, key string, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]string, len(values))
	copy(cp, values)
	s.lists[key] = cp
	return nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.strings, k)
		delete(s.lists, k)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }
