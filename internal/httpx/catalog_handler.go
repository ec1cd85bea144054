package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/autogear/storefront/internal/catalog"
	"github.com/autogear/storefront/internal/orders"
	"github.com/autogear/storefront/internal/redisx"
)

type CatalogHandler struct {
	Products catalog.Store
	Service  *orders.Service
	Redis    *redis.Client // optional stock cache
	Log      *zap.Logger
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{productId}/stock", h.stock)
		r.Post("/stock-check", h.stockCheck)
		r.Post("/cart-stock-check", h.cartStockCheck)
	})
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r, 3*time.Second)
	defer cancel()

	ps, err := h.Products.List(ctx)
	if err != nil {
		h.Log.Error("product list failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}
	if ps == nil {
		ps = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

// stock serves the per-product counter from the redis cache when warm,
// falling back to the ledger and re-priming the cache.
func (h *CatalogHandler) stock(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	ctx, cancel := reqCtx(r, 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyProductStock, productID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil {
			if n, err := strconv.Atoi(s); err == nil {
				writeJSON(w, http.StatusOK, map[string]any{"productId": productID, "countInStock": n})
				return
			}
		}
	}

	p, err := h.Products.Get(ctx, productID)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Product not found")
		return
	}
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, p.CountInStock, redisx.TTLStockCache).Err()
	}
	writeJSON(w, http.StatusOK, map[string]any{"productId": productID, "countInStock": p.CountInStock})
}

func (h *CatalogHandler) stockCheck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" || req.Quantity == 0 {
		writeMessage(w, http.StatusBadRequest, "Product ID and quantity are required")
		return
	}

	ctx, cancel := reqCtx(r, 3*time.Second)
	defer cancel()

	res, err := h.Service.CheckStock(ctx, req.ProductID, req.Quantity)
	if err != nil {
		var nf *orders.ProductNotFoundError
		if errors.As(err, &nf) {
			writeMessage(w, http.StatusNotFound, "Product not found")
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *CatalogHandler) cartStockCheck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []orders.ItemQty `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Items) == 0 {
		writeMessage(w, http.StatusBadRequest, "Cart items are required")
		return
	}

	ctx, cancel := reqCtx(r, 3*time.Second)
	defer cancel()

	report, err := h.Service.CheckCartStock(ctx, req.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
