package cart

import (
	"errors"
	"fmt"
	"sync"

	"github.com/autogear/storefront/internal/catalog"
)

var ErrNotInCart = errors.New("item not in cart")

// StockLimitError rejects a quantity above the line's cached stock.
// Advisory only: the cached count may be stale, the server re-validates
// at order time.
type StockLimitError struct {
	Name      string
	Requested int
	Available int
}

func (e *StockLimitError) Error() string {
	return fmt.Sprintf("Cannot set quantity to %d for %s. Available stock: %d",
		e.Requested, e.Name, e.Available)
}

type Line struct {
	ProductID    string  `json:"_id"`
	Name         string  `json:"name"`
	Image        string  `json:"image,omitempty"`
	Price        float64 `json:"price"`
	Qty          int     `json:"qty"`
	CountInStock int     `json:"countInStock"` // last-known, advisory
}

type Address struct {
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// State is the persisted document, shaped like the browser's cart entry.
type State struct {
	UserID          string  `json:"user_id"`
	Items           []Line  `json:"cartItems"`
	ShippingAddress Address `json:"shippingAddress"`
	PaymentMethod   string  `json:"paymentMethod"`
}

// Store holds the client-local cart and writes it through Storage on
// every mutation so it survives reloads.
type Store struct {
	mu      sync.Mutex
	st      State
	storage Storage
}

func NewStore(storage Storage) (*Store, error) {
	s := &Store{storage: storage}
	st, err := storage.Load()
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if st != nil {
		s.st = *st
	}
	return s, nil
}

// Add merges by product id. The combined quantity must fit the incoming
// advisory stock count.
func (s *Store) Add(item Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.CountInStock < item.Qty {
		return &StockLimitError{Name: item.Name, Requested: item.Qty, Available: item.CountInStock}
	}
	for i, l := range s.st.Items {
		if l.ProductID == item.ProductID {
			newQty := l.Qty + item.Qty
			if newQty > item.CountInStock {
				return &StockLimitError{Name: item.Name, Requested: newQty, Available: item.CountInStock}
			}
			s.st.Items[i].Qty = newQty
			return s.persist()
		}
	}
	s.st.Items = append(s.st.Items, item)
	return s.persist()
}

func (s *Store) Remove(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.st.Items[:0]
	for _, l := range s.st.Items {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	s.st.Items = kept
	return s.persist()
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Items = nil
	return s.persist()
}

func (s *Store) SetQty(productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.st.Items {
		if l.ProductID == productID {
			if qty > l.CountInStock {
				return &StockLimitError{Name: l.Name, Requested: qty, Available: l.CountInStock}
			}
			s.st.Items[i].Qty = qty
			return s.persist()
		}
	}
	return ErrNotInCart
}

// ApplyStockCorrection overwrites the line's cached stock from fresh
// catalog data, clamping the quantity down when it now exceeds stock.
// Reports whether the quantity was clamped.
func (s *Store) ApplyStockCorrection(productID string, newStock int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.st.Items {
		if l.ProductID == productID {
			s.st.Items[i].CountInStock = newStock
			clamped := false
			if l.Qty > newStock {
				s.st.Items[i].Qty = newStock
				clamped = true
			}
			return clamped, s.persist()
		}
	}
	return false, ErrNotInCart
}

// SyncCatalog refreshes stock, price, name and image for every line
// whose product is present in the fetched catalog, clamping quantities.
// Lines for products missing from the snapshot are left untouched.
func (s *Store) SyncCatalog(products []catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for i, l := range s.st.Items {
		p, ok := byID[l.ProductID]
		if !ok {
			continue
		}
		s.st.Items[i].CountInStock = p.CountInStock
		s.st.Items[i].Price = p.Price
		s.st.Items[i].Name = p.Name
		s.st.Items[i].Image = p.Image
		if s.st.Items[i].Qty > p.CountInStock {
			s.st.Items[i].Qty = p.CountInStock
		}
	}
	return s.persist()
}

// EvictOutOfStock drops every line whose cached stock is zero and
// returns the removed lines.
func (s *Store) EvictOutOfStock() ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []Line
	kept := s.st.Items[:0]
	for _, l := range s.st.Items {
		if l.CountInStock == 0 {
			removed = append(removed, l)
			continue
		}
		kept = append(kept, l)
	}
	s.st.Items = kept
	if len(removed) == 0 {
		return nil, nil
	}
	return removed, s.persist()
}

func (s *Store) SetUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.UserID = id
	return s.persist()
}

func (s *Store) SetShippingAddress(a Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.ShippingAddress = a
	return s.persist()
}

func (s *Store) SetPaymentMethod(m string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.PaymentMethod = m
	return s.persist()
}

func (s *Store) Items() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Line(nil), s.st.Items...)
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.st
	st.Items = append([]Line(nil), s.st.Items...)
	return st
}

func (s *Store) persist() error {
	st := s.st
	st.Items = append([]Line(nil), s.st.Items...)
	return s.storage.Save(&st)
}
