package stocksync

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/autogear/storefront/internal/cart"
	"github.com/autogear/storefront/internal/catalog"
)

// Fetcher returns the current catalog snapshot.
type Fetcher interface {
	Fetch(ctx context.Context) ([]catalog.Product, error)
}

// Notifier surfaces non-blocking user-facing notices.
type Notifier interface {
	Warn(msg string)
	Error(msg string)
}

// Syncer keeps the client's view of stock fresh: it polls the catalog,
// pushes corrections into the cart and warns the user about shrinking
// availability. Advisory only — the server re-validates at order time,
// a positive answer here is never a guarantee.
type Syncer struct {
	Fetch  Fetcher
	Cart   *cart.Store
	Notify Notifier
	Log    *zap.Logger

	seq uint64 // stamped onto refetches

	mu        sync.Mutex
	applied   uint64
	lastStock map[string]int
	snapshot  map[string]catalog.Product
}

func New(f Fetcher, c *cart.Store, n Notifier, log *zap.Logger) *Syncer {
	return &Syncer{
		Fetch:     f,
		Cart:      c,
		Notify:    n,
		Log:       log,
		lastStock: make(map[string]int),
		snapshot:  make(map[string]catalog.Product),
	}
}

// Run polls until the context is cancelled. One refetch happens
// immediately so the first page view sees fresh stock.
func (s *Syncer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.refetch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refetch(ctx)
		}
	}
}

func (s *Syncer) refetch(ctx context.Context) {
	seq := s.NextSeq()
	products, err := s.Fetch.Fetch(ctx)
	if err != nil {
		s.Log.Warn("catalog refetch failed", zap.Error(err))
		return
	}
	s.Apply(products, seq)
}

// NextSeq stamps a refetch before it is issued; Apply uses the stamp to
// fence out a slow response that resolves after a newer one.
func (s *Syncer) NextSeq() uint64 { return atomic.AddUint64(&s.seq, 1) }

// Apply reconciles the cart against a fetched snapshot. Stale snapshots
// (sequence at or below the last applied one) are discarded.
func (s *Syncer) Apply(products []catalog.Product, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.applied {
		s.Log.Debug("discarding stale catalog snapshot",
			zap.Uint64("seq", seq), zap.Uint64("applied", s.applied))
		return false
	}
	s.applied = seq

	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	s.snapshot = byID

	// Push fresh stock/price/name/image into the cart (clamps quantities).
	if err := s.Cart.SyncCatalog(products); err != nil {
		s.Log.Warn("cart sync failed", zap.Error(err))
	}

	// Decrease detection against the previously observed stock.
	for _, l := range s.Cart.Items() {
		p, ok := byID[l.ProductID]
		if !ok {
			continue
		}
		last, seen := s.lastStock[l.ProductID]
		if seen && last != p.CountInStock {
			if last > p.CountInStock {
				s.Notify.Warn(fmt.Sprintf("%s stock decreased by %d. Current stock: %d",
					p.Name, last-p.CountInStock, p.CountInStock))
			}
			if p.CountInStock == 0 && last > 0 {
				s.Notify.Error(fmt.Sprintf("%s is now out of stock and has been removed from your cart", p.Name))
			}
		}
		s.lastStock[l.ProductID] = p.CountInStock
	}

	// Separate sweep: drop anything whose cached stock hit zero.
	removed, err := s.Cart.EvictOutOfStock()
	if err != nil {
		s.Log.Warn("cart eviction failed", zap.Error(err))
	}
	for _, l := range removed {
		s.Notify.Warn(fmt.Sprintf("%s is out of stock and has been removed from your cart", l.Name))
	}
	return true
}

// CurrentStock reports the stock from the last-fetched snapshot; ok is
// false when the product was not in it.
func (s *Syncer) CurrentStock(productID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.snapshot[productID]
	if !ok {
		return 0, false
	}
	return p.CountInStock, true
}

// IsInStock is false when the stock is unknown or below qty.
func (s *Syncer) IsInStock(productID string, qty int) bool {
	n, ok := s.CurrentStock(productID)
	return ok && n >= qty
}
