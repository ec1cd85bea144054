package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("product not found")

	// ErrShortStock is returned by Decrement when the conditional update
	// matches no row because the remaining stock is below qty.
	ErrShortStock = errors.New("insufficient stock")
)

// Store is the inventory ledger: count_in_stock is mutated only through
// Decrement and Increment.
type Store interface {
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Decrement(ctx context.Context, id string, qty int) error
	Increment(ctx context.Context, id string, qty int) error
}

type PGStore struct{ DB *pgxpool.Pool }

func (s *PGStore) Get(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := s.DB.QueryRow(ctx, `
		SELECT id, name, brand, category, image, price, count_in_stock, created_at, updated_at
		FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Image, &p.Price, &p.CountInStock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PGStore) List(ctx context.Context) ([]Product, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, name, brand, category, image, price, count_in_stock, created_at, updated_at
		FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Image, &p.Price, &p.CountInStock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Decrement reserves stock with a conditional update so the counter can
// never go negative even when two requests race past the pre-check.
func (s *PGStore) Decrement(ctx context.Context, id string, qty int) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE products SET count_in_stock = count_in_stock - $2, updated_at = now()
		WHERE id=$1 AND count_in_stock >= $2`, id, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		if _, err := s.Get(ctx, id); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrShortStock
	}
	return nil
}

func (s *PGStore) Increment(ctx context.Context, id string, qty int) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE products SET count_in_stock = count_in_stock + $2, updated_at = now()
		WHERE id=$1`, id, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}
