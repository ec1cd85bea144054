package orders

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemStore holds orders in memory, newest first on listing. Used by
// tests and local runs without a database.
type MemStore struct {
	mu     sync.Mutex
	orders map[string]Order
}

func NewMemStore() *MemStore {
	return &MemStore{orders: make(map[string]Order)}
}

func (s *MemStore) Insert(_ context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (s *MemStore) Get(_ context.Context, id string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	c := cloneOrder(o)
	return &c, nil
}

func (s *MemStore) Update(_ context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; !ok {
		return ErrOrderNotFound
	}
	s.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (s *MemStore) List(_ context.Context) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(func(Order) bool { return true }), nil
}

func (s *MemStore) ListByUser(_ context.Context, userID string) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(func(o Order) bool { return o.UserID == userID }), nil
}

func (s *MemStore) ListSince(_ context.Context, t time.Time) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(func(o Order) bool { return !o.CreatedAt.Before(t) }), nil
}

func (s *MemStore) listLocked(keep func(Order) bool) []Order {
	var out []Order
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func cloneOrder(o Order) Order {
	o.Items = append([]LineItem(nil), o.Items...)
	if o.PaidAt != nil {
		t := *o.PaidAt
		o.PaidAt = &t
	}
	if o.DeliveredAt != nil {
		t := *o.DeliveredAt
		o.DeliveredAt = &t
	}
	if o.PaymentResult != nil {
		pr := *o.PaymentResult
		o.PaymentResult = &pr
	}
	return o
}
