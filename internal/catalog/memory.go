package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemStore keeps the ledger in memory. Used by tests and local runs
// without a database.
type MemStore struct {
	mu       sync.Mutex
	products map[string]Product
}

func NewMemStore() *MemStore {
	return &MemStore{products: make(map[string]Product)}
}

func (s *MemStore) Put(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *MemStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

func (s *MemStore) Get(_ context.Context, id string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemStore) List(_ context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemStore) Decrement(_ context.Context, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return ErrNotFound
	}
	if p.CountInStock < qty {
		return ErrShortStock
	}
	p.CountInStock -= qty
	s.products[id] = p
	return nil
}

func (s *MemStore) Increment(_ context.Context, id string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return ErrNotFound
	}
	p.CountInStock += qty
	s.products[id] = p
	return nil
}
