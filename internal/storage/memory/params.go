// Package memory provides in-memory implementations of the external
// collaborator contracts, used as DI defaults and in tests.
package memory

import (
	"context"
	"iter"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-stageconfig/pkg/interfaces/paramstore"
)

// ParameterStore keeps parameters in a map guarded by a RWMutex.
type ParameterStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ paramstore.Store = (*ParameterStore)(nil)

// NewParameterStore builds an empty in-memory store.
func NewParameterStore() *ParameterStore {
	return &ParameterStore{values: make(map[string]string)}
}

// Seed loads the provided paths without going through Put.
func (s *ParameterStore) Seed(values map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for path, value := range values {
		s.values[path] = value
	}
}

// Scan yields every parameter under prefix in lexical order.
func (s *ParameterStore) Scan(ctx context.Context, prefix string) iter.Seq2[paramstore.RawParameter, error] {
	return func(yield func(paramstore.RawParameter, error) bool) {
		s.mu.RLock()
		names := make([]string, 0, len(s.values))
		for name := range s.values {
			if strings.HasPrefix(name, prefix) {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		snapshot := make(map[string]string, len(names))
		for _, name := range names {
			snapshot[name] = s.values[name]
		}
		s.mu.RUnlock()

		for _, name := range names {
			if ctx.Err() != nil {
				yield(paramstore.RawParameter{}, ctx.Err())
				return
			}
			if !yield(paramstore.RawParameter{Name: name, Value: snapshot[name]}, nil) {
				return
			}
		}
	}
}

func (s *ParameterStore) Get(ctx context.Context, path string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[path]
	return value, ok, nil
}

func (s *ParameterStore) Put(ctx context.Context, path, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[path] = value
	return nil
}

func (s *ParameterStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, path)
	return nil
}

// Len reports the number of stored parameters.
func (s *ParameterStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
