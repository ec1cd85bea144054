package orders

import (
	"errors"
	"fmt"
)

// Error strings double as API response messages, hence the casing.
var (
	ErrEmptyOrder    = errors.New("No order items")
	ErrOrderNotFound = errors.New("Order not found")
)

type ProductNotFoundError struct {
	Ref string // product name if known, else id
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product %s not found", e.Ref)
}

type InsufficientStockError struct {
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Available: %d, Requested: %d",
		e.Name, e.Available, e.Requested)
}

type InvalidFilterError struct {
	Filter string
}

func (e *InvalidFilterError) Error() string { return "Invalid filter" }

// PersistenceError surfaces a generic message; the originating error is
// logged server-side, never returned to the caller.
type PersistenceError struct {
	Msg string
	Err error
}

func (e *PersistenceError) Error() string { return e.Msg }
func (e *PersistenceError) Unwrap() error { return e.Err }
