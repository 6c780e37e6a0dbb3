package storage

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// DefaultMemoryCapacity is how many renders a MemoryStore keeps by default.
const DefaultMemoryCapacity = 100

// MemoryStore keeps the newest renders in memory. Once full, each Save
// evicts the oldest render.
type MemoryStore struct {
	mu       sync.RWMutex
	renders  map[string]Render
	capacity int
}

// NewMemoryStore creates an empty store holding up to DefaultMemoryCapacity
// renders.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithCapacity(DefaultMemoryCapacity)
}

// NewMemoryStoreWithCapacity creates an empty store holding up to capacity
// renders. A non-positive capacity means DefaultMemoryCapacity.
func NewMemoryStoreWithCapacity(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{renders: make(map[string]Render), capacity: capacity}
}

func (s *MemoryStore) Save(ctx context.Context, r *Render) error {
	if err := ValidateID(r.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *r
	c.Artifacts = maps.Clone(r.Artifacts)
	s.renders[r.ID] = c
	for len(s.renders) > s.capacity {
		s.evictOldest()
	}
	return nil
}

// evictOldest drops the render that List would return last. Callers hold mu.
func (s *MemoryStore) evictOldest() {
	var oldest *Render
	for _, r := range s.renders {
		if oldest == nil || newestFirst(r, *oldest) > 0 {
			oldest = &r
		}
	}
	if oldest != nil {
		delete(s.renders, oldest.ID)
	}
}

// Len returns the number of stored renders.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.renders)
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Render, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.renders[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.Artifacts = maps.Clone(r.Artifacts)
	return &r, nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Render, error) {
	s.mu.RLock()
	out := make([]Render, 0, len(s.renders))
	for _, r := range s.renders {
		out = append(out, r.Summary())
	}
	s.mu.RUnlock()

	slices.SortFunc(out, newestFirst)
	return out[:min(len(out), listLimit(limit))], nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
