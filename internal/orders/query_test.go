package orders

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seedOrder(t *testing.T, store Store, id, userID string, createdAt time.Time, mutate func(*Order)) {
	t.Helper()
	o := &Order{
		ID:        id,
		UserID:    userID,
		Items:     []LineItem{{Product: "p-mat", Name: "All-Weather Floor Mats", Price: 10.00, Qty: 1}},
		CreatedAt: createdAt,
	}
	if mutate != nil {
		mutate(o)
	}
	if err := store.Insert(context.Background(), o); err != nil {
		t.Fatalf("seed order %s: %v", id, err)
	}
}

func TestFilterPaidNewestFirst(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	seedOrder(t, svc.Orders, "o1", "u1", base, func(o *Order) { o.IsPaid = true })
	seedOrder(t, svc.Orders, "o2", "u1", base.Add(time.Hour), nil)
	seedOrder(t, svc.Orders, "o3", "u2", base.Add(2*time.Hour), func(o *Order) { o.IsPaid = true })

	out, err := svc.Filter(context.Background(), "paid")
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("paid filter: got %d orders, want 2", len(out))
	}
	if out[0].ID != "o3" || out[1].ID != "o1" {
		t.Fatalf("expected newest first [o3 o1], got [%s %s]", out[0].ID, out[1].ID)
	}
}

func TestFilterKeywords(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	seedOrder(t, svc.Orders, "o1", "u1", base, func(o *Order) { o.IsDelivered = true })
	seedOrder(t, svc.Orders, "o2", "u1", base.Add(time.Hour), func(o *Order) { o.IsCancelled = true })

	cases := map[string][]string{
		"delivered":    {"o1"},
		"notDelivered": {"o2"},
		"cancelled":    {"o2"},
		"notCancelled": {"o1"},
		"notPaid":      {"o2", "o1"},
	}
	for keyword, want := range cases {
		out, err := svc.Filter(context.Background(), keyword)
		if err != nil {
			t.Fatalf("filter %q: %v", keyword, err)
		}
		if len(out) != len(want) {
			t.Fatalf("filter %q: got %d orders, want %d", keyword, len(out), len(want))
		}
		for i, id := range want {
			if out[i].ID != id {
				t.Fatalf("filter %q: position %d got %s want %s", keyword, i, out[i].ID, id)
			}
		}
	}
}

func TestFilterUnknownKeyword(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Filter(context.Background(), "shipped")
	var bad *InvalidFilterError
	if !errors.As(err, &bad) {
		t.Fatalf("expected InvalidFilterError, got %v", err)
	}
	if bad.Error() != "Invalid filter" {
		t.Fatalf("unexpected message: %q", bad.Error())
	}
}

func TestFilterByUserScopesResults(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	seedOrder(t, svc.Orders, "o1", "u1", base, func(o *Order) { o.IsPaid = true })
	seedOrder(t, svc.Orders, "o2", "u2", base.Add(time.Hour), func(o *Order) { o.IsPaid = true })

	out, err := svc.FilterByUser(context.Background(), "u1", "paid")
	if err != nil {
		t.Fatalf("FilterByUser returned error: %v", err)
	}
	if len(out) != 1 || out[0].ID != "o1" {
		t.Fatalf("expected only u1's paid order, got %+v", out)
	}
}

func TestListByUserNewestFirst(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	seedOrder(t, svc.Orders, "o1", "u1", base, nil)
	seedOrder(t, svc.Orders, "o2", "u1", base.Add(time.Hour), nil)
	seedOrder(t, svc.Orders, "o3", "u2", base.Add(2*time.Hour), nil)

	out, err := svc.ListByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(out) != 2 || out[0].ID != "o2" || out[1].ID != "o1" {
		t.Fatalf("expected [o2 o1], got %+v", out)
	}
}
