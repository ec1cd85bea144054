package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap/zaptest"

	"github.com/autogear/storefront/internal/catalog"
	"github.com/autogear/storefront/internal/orders"
	"github.com/autogear/storefront/internal/users"
)

func newTestRouter(t *testing.T) (*chi.Mux, *orders.Service, *catalog.MemStore) {
	t.Helper()
	log := zaptest.NewLogger(t)
	products := catalog.NewMemStore()
	svc := &orders.Service{
		Orders:   orders.NewMemStore(),
		Products: products,
		Users:    users.NewMemStore(),
		Log:      log,
		Name:     "storefront-test",
	}
	r := NewRouter(log)
	(&OrdersHandler{Service: svc}).Register(r)
	(&CatalogHandler{Products: products, Service: svc, Log: log}).Register(r)
	return r, svc, products
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode message body %q: %v", rec.Body.String(), err)
	}
	return out["message"]
}

func createBody(qty int) map[string]any {
	return map[string]any{
		"orderItems": []map[string]any{
			{"_id": "p-mat", "name": "All-Weather Floor Mats", "price": 10.00, "qty": qty},
		},
		"paymentMethod": "PayPal",
		"itemsPrice":    10.00 * float64(qty),
		"totalPrice":    10.00 * float64(qty),
	}
}

func TestCreateOrderEndpoint(t *testing.T) {
	r, _, products := newTestRouter(t)
	products.Put(catalog.Product{ID: "p-mat", Name: "All-Weather Floor Mats", Price: 10.00, CountInStock: 5})

	rec := doJSON(t, r, http.MethodPost, "/api/orders", createBody(2), map[string]string{"X-User-Id": "u1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d want 201, body %s", rec.Code, rec.Body.String())
	}

	var o orders.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &o); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if o.ID == "" || o.UserID != "u1" || o.TotalPrice != 20.00 {
		t.Fatalf("unexpected order: %+v", o)
	}

	p, _ := products.Get(context.Background(), "p-mat")
	if p.CountInStock != 3 {
		t.Fatalf("stock after create: got %d want 3", p.CountInStock)
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	r, _, products := newTestRouter(t)
	products.Put(catalog.Product{ID: "p-mat", Name: "All-Weather Floor Mats", Price: 10.00, CountInStock: 1})

	rec := doJSON(t, r, http.MethodPost, "/api/orders", createBody(3), map[string]string{"X-User-Id": "u1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", rec.Code)
	}
	want := "Insufficient stock for All-Weather Floor Mats. Available: 1, Requested: 3"
	if got := message(t, rec); got != want {
		t.Fatalf("message: got %q want %q", got, want)
	}
}

func TestCreateOrderRequiresUser(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/orders", createBody(1), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", rec.Code)
	}
}

func TestCreateOrderEmptyItems(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/orders",
		map[string]any{"orderItems": []any{}}, map[string]string{"X-User-Id": "u1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", rec.Code)
	}
	if got := message(t, rec); got != "No order items" {
		t.Fatalf("message: got %q", got)
	}
}

func TestCancelEndpoint(t *testing.T) {
	r, _, products := newTestRouter(t)
	products.Put(catalog.Product{ID: "p-mat", Name: "All-Weather Floor Mats", Price: 10.00, CountInStock: 5})

	rec := doJSON(t, r, http.MethodPost, "/api/orders", createBody(2), map[string]string{"X-User-Id": "u1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d, body %s", rec.Code, rec.Body.String())
	}
	var o orders.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &o); err != nil {
		t.Fatalf("decode order: %v", err)
	}

	rec = doJSON(t, r, http.MethodPut, "/api/orders/cancel",
		map[string]string{"orderId": o.ID}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: got %d, body %s", rec.Code, rec.Body.String())
	}
	var cancelled orders.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &cancelled); err != nil {
		t.Fatalf("decode cancelled order: %v", err)
	}
	if !cancelled.IsCancelled {
		t.Fatal("order not cancelled in response")
	}
}

func TestCancelUnknownOrderEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPut, "/api/orders/cancel",
		map[string]string{"orderId": "nope"}, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d want 404", rec.Code)
	}
	if got := message(t, rec); got != "Order not found" {
		t.Fatalf("message: got %q", got)
	}
}

func TestPayEndpoint(t *testing.T) {
	r, _, products := newTestRouter(t)
	products.Put(catalog.Product{ID: "p-mat", Name: "All-Weather Floor Mats", Price: 10.00, CountInStock: 5})

	rec := doJSON(t, r, http.MethodPost, "/api/orders", createBody(1), map[string]string{"X-User-Id": "u1"})
	var o orders.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &o); err != nil {
		t.Fatalf("decode order: %v", err)
	}

	rec = doJSON(t, r, http.MethodPut, "/api/orders/"+o.ID+"/pay", map[string]any{
		"id":          "PAY-9",
		"status":      "COMPLETED",
		"update_time": "2026-03-01T10:00:00Z",
		"payer":       map[string]string{"email_address": "sam@example.com"},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pay: got %d, body %s", rec.Code, rec.Body.String())
	}
	var paid orders.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &paid); err != nil {
		t.Fatalf("decode paid order: %v", err)
	}
	if !paid.IsPaid || paid.PaymentResult == nil || paid.PaymentResult.ID != "PAY-9" {
		t.Fatalf("payment not recorded: %+v", paid)
	}
}

func TestInvalidFilterEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/orders/filter/shipped", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d want 404", rec.Code)
	}
	if got := message(t, rec); got != "Invalid filter" {
		t.Fatalf("message: got %q", got)
	}
}

func TestStockCheckEndpoint(t *testing.T) {
	r, _, products := newTestRouter(t)
	products.Put(catalog.Product{ID: "p-mat", Name: "All-Weather Floor Mats", Price: 10.00, CountInStock: 2})

	rec := doJSON(t, r, http.MethodPost, "/api/products/stock-check",
		map[string]any{"productId": "p-mat", "quantity": 3}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var res orders.StockCheckResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.IsAvailable || res.AvailableStock != 2 || res.RequestedQuantity != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}

	rec = doJSON(t, r, http.MethodPost, "/api/products/stock-check",
		map[string]any{"productId": "p-ghost", "quantity": 1}, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown product: got %d want 404", rec.Code)
	}
}

func TestCartStockCheckEndpoint(t *testing.T) {
	r, _, products := newTestRouter(t)
	products.Put(catalog.Product{ID: "p-mat", Name: "All-Weather Floor Mats", Price: 10.00, CountInStock: 2})

	rec := doJSON(t, r, http.MethodPost, "/api/products/cart-stock-check", map[string]any{
		"items": []map[string]any{
			{"product_id": "p-mat", "qty": 1},
			{"product_id": "p-ghost", "qty": 1},
		},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var report orders.CartStockReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.AllAvailable {
		t.Fatal("report should flag the missing product")
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %+v", report.Results)
	}
	if report.Results[0].Error != "" || !report.Results[0].IsAvailable {
		t.Fatalf("in-stock line flagged: %+v", report.Results[0])
	}
	if report.Results[1].Error != "Product not found" {
		t.Fatalf("missing line not flagged: %+v", report.Results[1])
	}
}

func TestProductListEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/products", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("empty catalog should serialize as [], got %q", body)
	}
}

func TestHealthz(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
	}
}
