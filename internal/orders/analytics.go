package orders

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/autogear/storefront/internal/catalog"
)

type MonthlySale struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

type TopProduct struct {
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName"`
	QuantitySold int    `json:"quantitySold"`
}

type CategoryCount struct {
	Category   string `json:"category"`
	OrderCount int    `json:"orderCount"`
}

const topProductLimit = 5

// MonthlySales buckets revenue from the trailing ~6 months into a
// 12-entry calendar array, zero-filled, totals rounded to 2 decimals.
func (s *Service) MonthlySales(ctx context.Context, now time.Time) ([]MonthlySale, error) {
	since := now.Add(-6 * 30 * 24 * time.Hour)
	list, err := s.Orders.ListSince(ctx, since)
	if err != nil {
		s.Log.Error("sales query failed", zap.Error(err))
		return nil, &PersistenceError{Msg: genericFailure, Err: err}
	}

	totals := make(map[time.Month]float64, 12)
	for _, o := range list {
		totals[o.CreatedAt.Month()] += o.TotalPrice
	}

	out := make([]MonthlySale, 0, 12)
	for m := time.January; m <= time.December; m++ {
		out = append(out, MonthlySale{Month: m.String(), Value: round2(totals[m])})
	}
	return out, nil
}

// TopProducts ranks the trailing 30 days by cumulative quantity and
// resolves the top 5 against the current catalog. A product sold and
// since deleted is reported by id with a placeholder name, not omitted.
func (s *Service) TopProducts(ctx context.Context, now time.Time) ([]TopProduct, error) {
	list, err := s.Orders.ListSince(ctx, now.Add(-30*24*time.Hour))
	if err != nil {
		s.Log.Error("top products query failed", zap.Error(err))
		return nil, &PersistenceError{Msg: genericFailure, Err: err}
	}

	qty := map[string]int{}
	for _, o := range list {
		for _, it := range o.Items {
			qty[it.Product] += it.Qty
		}
	}

	ranked := make([]TopProduct, 0, len(qty))
	for id, n := range qty {
		ranked = append(ranked, TopProduct{ProductID: id, QuantitySold: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].QuantitySold != ranked[j].QuantitySold {
			return ranked[i].QuantitySold > ranked[j].QuantitySold
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})
	if len(ranked) > topProductLimit {
		ranked = ranked[:topProductLimit]
	}

	for i := range ranked {
		p, err := s.Products.Get(ctx, ranked[i].ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			ranked[i].ProductName = "Product not found"
			continue
		}
		if err != nil {
			s.Log.Error("product lookup failed", zap.String("product_id", ranked[i].ProductID), zap.Error(err))
			return nil, &PersistenceError{Msg: genericFailure, Err: err}
		}
		ranked[i].ProductName = p.Name
	}
	return ranked, nil
}

// CategoryPopularity sums 30-day quantities per product category,
// descending. Products gone from the catalog count as unknown.
func (s *Service) CategoryPopularity(ctx context.Context, now time.Time) ([]CategoryCount, error) {
	list, err := s.Orders.ListSince(ctx, now.Add(-30*24*time.Hour))
	if err != nil {
		s.Log.Error("category query failed", zap.Error(err))
		return nil, &PersistenceError{Msg: genericFailure, Err: err}
	}

	counts := map[string]int{}
	for _, o := range list {
		for _, it := range o.Items {
			category := "Unknown Category"
			if p, err := s.Products.Get(ctx, it.Product); err == nil && p.Category != "" {
				category = p.Category
			}
			counts[category] += it.Qty
		}
	}

	out := make([]CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, CategoryCount{Category: c, OrderCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderCount != out[j].OrderCount {
			return out[i].OrderCount > out[j].OrderCount
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
