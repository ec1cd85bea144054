package orders

import (
	"context"
	"testing"
	"time"

	"github.com/autogear/storefront/internal/catalog"
)

func TestMonthlySalesRoundingAndZeroFill(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

	march := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	seedOrder(t, svc.Orders, "o1", "u1", march, func(o *Order) { o.TotalPrice = 150.005 })
	seedOrder(t, svc.Orders, "o2", "u1", march.Add(time.Hour), func(o *Order) { o.TotalPrice = 20.00 })

	out, err := svc.MonthlySales(context.Background(), now)
	if err != nil {
		t.Fatalf("MonthlySales returned error: %v", err)
	}
	if len(out) != 12 {
		t.Fatalf("expected 12 month buckets, got %d", len(out))
	}

	byMonth := map[string]float64{}
	for _, m := range out {
		byMonth[m.Month] = m.Value
	}
	if byMonth["March"] != 170.01 {
		t.Fatalf("March total: got %v want 170.01", byMonth["March"])
	}
	if byMonth["February"] != 0 {
		t.Fatalf("empty month should report 0, got %v", byMonth["February"])
	}
}

func TestMonthlySalesIgnoresOrdersOlderThanWindow(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

	old := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	seedOrder(t, svc.Orders, "o1", "u1", old, func(o *Order) { o.TotalPrice = 999 })

	out, err := svc.MonthlySales(context.Background(), now)
	if err != nil {
		t.Fatalf("MonthlySales returned error: %v", err)
	}
	for _, m := range out {
		if m.Value != 0 {
			t.Fatalf("month %s should be empty, got %v", m.Month, m.Value)
		}
	}
}

func TestTopProductsResolvesDeletedProducts(t *testing.T) {
	svc, products, _, _ := newTestService(t)
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-48 * time.Hour)

	products.Put(floorMat(20))
	// p-cam sold but since removed from the catalog

	seedOrder(t, svc.Orders, "o1", "u1", recent, func(o *Order) {
		o.Items = []LineItem{
			{Product: "p-mat", Name: "All-Weather Floor Mats", Qty: 5},
			{Product: "p-cam", Name: "Dash Cam HD", Qty: 3},
		}
	})
	seedOrder(t, svc.Orders, "o2", "u2", recent.Add(time.Hour), func(o *Order) {
		o.Items = []LineItem{{Product: "p-cam", Name: "Dash Cam HD", Qty: 4}}
	})

	out, err := svc.TopProducts(context.Background(), now)
	if err != nil {
		t.Fatalf("TopProducts returned error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 ranked products, got %d", len(out))
	}
	if out[0].ProductID != "p-cam" || out[0].QuantitySold != 7 {
		t.Fatalf("rank 1: got %+v", out[0])
	}
	if out[0].ProductName != "Product not found" {
		t.Fatalf("deleted product should get a placeholder name, got %q", out[0].ProductName)
	}
	if out[1].ProductID != "p-mat" || out[1].ProductName != "All-Weather Floor Mats" {
		t.Fatalf("rank 2: got %+v", out[1])
	}
}

func TestTopProductsLimitsToFive(t *testing.T) {
	svc, products, _, _ := newTestService(t)
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-24 * time.Hour)

	items := make([]LineItem, 0, 6)
	for i, id := range []string{"a", "b", "c", "d", "e", "f"} {
		products.Put(floorMatWithID("p-"+id, 50))
		items = append(items, LineItem{Product: "p-" + id, Qty: i + 1})
	}
	seedOrder(t, svc.Orders, "o1", "u1", recent, func(o *Order) { o.Items = items })

	out, err := svc.TopProducts(context.Background(), now)
	if err != nil {
		t.Fatalf("TopProducts returned error: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("expected top 5, got %d", len(out))
	}
	if out[0].ProductID != "p-f" || out[0].QuantitySold != 6 {
		t.Fatalf("rank 1: got %+v", out[0])
	}
}

func TestCategoryPopularityRanking(t *testing.T) {
	svc, products, _, _ := newTestService(t)
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-24 * time.Hour)

	products.Put(floorMat(20)) // category Interior
	products.Put(dashCam(20))  // category Electronics

	seedOrder(t, svc.Orders, "o1", "u1", recent, func(o *Order) {
		o.Items = []LineItem{
			{Product: "p-mat", Qty: 2},
			{Product: "p-cam", Qty: 5},
			{Product: "p-gone", Qty: 1}, // no longer in the catalog
		}
	})

	out, err := svc.CategoryPopularity(context.Background(), now)
	if err != nil {
		t.Fatalf("CategoryPopularity returned error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(out))
	}
	if out[0].Category != "Electronics" || out[0].OrderCount != 5 {
		t.Fatalf("rank 1: got %+v", out[0])
	}
	if out[1].Category != "Interior" || out[1].OrderCount != 2 {
		t.Fatalf("rank 2: got %+v", out[1])
	}
	if out[2].Category != "Unknown Category" || out[2].OrderCount != 1 {
		t.Fatalf("rank 3: got %+v", out[2])
	}
}

func floorMatWithID(id string, stock int) catalog.Product {
	p := floorMat(stock)
	p.ID = id
	p.Name = "Accessory " + id
	return p
}
