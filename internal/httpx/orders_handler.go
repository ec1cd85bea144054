package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/autogear/storefront/internal/orders"
)

type OrdersHandler struct {
	Service *orders.Service
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.listAll)
		r.Put("/cancel", h.cancel)
		r.Get("/sales", h.monthlySales)
		r.Get("/topproducts", h.topProducts)
		r.Get("/categories", h.categories)
		r.Get("/filter/{filter}", h.filter)
		r.Get("/mine/{userId}", h.mine)
		r.Get("/mine/{userId}/{filter}", h.mineFiltered)
		r.Get("/{orderId}", h.get)
		r.Put("/{orderId}/pay", h.pay)
		r.Put("/{orderId}/deliver", h.deliver)
	})
}

func reqCtx(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}

// The auth layer in front of this service resolves the session and
// forwards the account id in this header.
func userID(r *http.Request) string { return r.Header.Get("X-User-Id") }

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var in orders.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	uid := userID(r)
	if uid == "" {
		writeMessage(w, http.StatusBadRequest, "missing user")
		return
	}

	ctx, cancel := reqCtx(r, 5*time.Second)
	defer cancel()

	o, err := h.Service.Create(ctx, uid, in)
	recordOrderOp("create", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r, 3*time.Second)
	defer cancel()

	o, err := h.Service.Get(ctx, chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"orderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
		writeMessage(w, http.StatusBadRequest, "missing orderId")
		return
	}

	ctx, cancel := reqCtx(r, 5*time.Second)
	defer cancel()

	o, err := h.Service.Cancel(ctx, req.OrderID)
	recordOrderOp("cancel", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) pay(w http.ResponseWriter, r *http.Request) {
	// shape of the payment provider's capture callback
	var req struct {
		ID         string `json:"id"`
		Status     string `json:"status"`
		UpdateTime string `json:"update_time"`
		Payer      struct {
			EmailAddress string `json:"email_address"`
		} `json:"payer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := reqCtx(r, 5*time.Second)
	defer cancel()

	o, err := h.Service.MarkPaid(ctx, chi.URLParam(r, "orderId"), orders.PaymentResult{
		ID:           req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.Payer.EmailAddress,
	})
	recordOrderOp("pay", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) deliver(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r, 5*time.Second)
	defer cancel()

	o, err := h.Service.MarkDelivered(ctx, chi.URLParam(r, "orderId"))
	recordOrderOp("deliver", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) listAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r, 5*time.Second)
	defer cancel()

	out, err := h.Service.ListAll(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) mine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r, 5*time.Second)
	defer cancel()

	out, err := h.Service.ListByUser(ctx, chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) filter(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r, 5*time.Second)
	defer cancel()

	out, err := h.Service.Filter(ctx, chi.URLParam(r, "filter"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) mineFiltered(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r, 5*time.Second)
	defer cancel()

	out, err := h.Service.FilterByUser(ctx, chi.URLParam(r, "userId"), chi.URLParam(r, "filter"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) monthlySales(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r, 5*time.Second)
	defer cancel()

	out, err := h.Service.MonthlySales(ctx, time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) topProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r, 5*time.Second)
	defer cancel()

	out, err := h.Service.TopProducts(ctx, time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r, 5*time.Second)
	defer cancel()

	out, err := h.Service.CategoryPopularity(ctx, time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
