package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/autogear/storefront/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

// writeError maps the order error taxonomy to HTTP statuses. Validation
// errors are 400 with specific messages, not-found conditions 404, and
// persistence failures 500 with the generic message only.
func writeError(w http.ResponseWriter, err error) {
	var (
		notFound    *orders.ProductNotFoundError
		shortStock  *orders.InsufficientStockError
		badFilter   *orders.InvalidFilterError
		persistence *orders.PersistenceError
	)
	switch {
	case errors.Is(err, orders.ErrEmptyOrder),
		errors.As(err, &notFound),
		errors.As(err, &shortStock):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrOrderNotFound),
		errors.As(err, &badFilter):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.As(err, &persistence):
		writeMessage(w, http.StatusInternalServerError, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}
