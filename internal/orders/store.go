package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists orders. Listing methods return newest first.
type Store interface {
	Insert(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, o *Order) error
	List(ctx context.Context) ([]Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListSince(ctx context.Context, t time.Time) ([]Order, error)
}

type PGStore struct{ DB *pgxpool.Pool }

const orderCols = `id, user_id, ship_address, ship_city, ship_postal_code, ship_country,
	payment_method, items_price, tax_price, shipping_price, total_price,
	is_paid, paid_at, payment_id, payment_status, payment_update_time, payment_email,
	is_delivered, delivered_at, is_cancelled, created_at`

func (s *PGStore) Insert(ctx context.Context, o *Order) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var pr PaymentResult
	if o.PaymentResult != nil {
		pr = *o.PaymentResult
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO orders(`+orderCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
		o.ID, o.UserID,
		o.ShippingAddress.Address, o.ShippingAddress.City, o.ShippingAddress.PostalCode, o.ShippingAddress.Country,
		o.PaymentMethod, o.ItemsPrice, o.TaxPrice, o.ShippingPrice, o.TotalPrice,
		o.IsPaid, o.PaidAt, pr.ID, pr.Status, pr.UpdateTime, pr.EmailAddress,
		o.IsDelivered, o.DeliveredAt, o.IsCancelled, o.CreatedAt)
	if err != nil {
		return err
	}

	for _, it := range o.Items {
		if _, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, name, image, price, qty)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			o.ID, it.Product, it.Name, it.Image, it.Price, it.Qty); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *PGStore) Get(ctx context.Context, id string) (*Order, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	out, err := s.scanOrders(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrOrderNotFound
	}
	return &out[0], nil
}

func (s *PGStore) Update(ctx context.Context, o *Order) error {
	var pr PaymentResult
	if o.PaymentResult != nil {
		pr = *o.PaymentResult
	}
	ct, err := s.DB.Exec(ctx, `
		UPDATE orders SET
			is_paid=$2, paid_at=$3, payment_id=$4, payment_status=$5,
			payment_update_time=$6, payment_email=$7,
			is_delivered=$8, delivered_at=$9, is_cancelled=$10
		WHERE id=$1`,
		o.ID, o.IsPaid, o.PaidAt, pr.ID, pr.Status, pr.UpdateTime, pr.EmailAddress,
		o.IsDelivered, o.DeliveredAt, o.IsCancelled)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrOrderNotFound
	}
	return nil
}

func (s *PGStore) List(ctx context.Context) ([]Order, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+orderCols+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return s.scanOrders(ctx, rows)
}

func (s *PGStore) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+orderCols+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return s.scanOrders(ctx, rows)
}

func (s *PGStore) ListSince(ctx context.Context, t time.Time) ([]Order, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+orderCols+` FROM orders WHERE created_at >= $1 ORDER BY created_at DESC`, t)
	if err != nil {
		return nil, err
	}
	return s.scanOrders(ctx, rows)
}

func (s *PGStore) scanOrders(ctx context.Context, rows pgx.Rows) ([]Order, error) {
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var pr PaymentResult
		if err := rows.Scan(&o.ID, &o.UserID,
			&o.ShippingAddress.Address, &o.ShippingAddress.City, &o.ShippingAddress.PostalCode, &o.ShippingAddress.Country,
			&o.PaymentMethod, &o.ItemsPrice, &o.TaxPrice, &o.ShippingPrice, &o.TotalPrice,
			&o.IsPaid, &o.PaidAt, &pr.ID, &pr.Status, &pr.UpdateTime, &pr.EmailAddress,
			&o.IsDelivered, &o.DeliveredAt, &o.IsCancelled, &o.CreatedAt); err != nil {
			return nil, err
		}
		if pr != (PaymentResult{}) {
			o.PaymentResult = &pr
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PGStore) attachItems(ctx context.Context, out []Order) error {
	if len(out) == 0 {
		return nil
	}
	idx := make(map[string]int, len(out))
	ids := make([]any, 0, len(out))
	params := ""
	for i := range out {
		if i > 0 {
			params += ","
		}
		params += fmt.Sprintf("$%d", i+1)
		ids = append(ids, out[i].ID)
		idx[out[i].ID] = i
	}
	rows, err := s.DB.Query(ctx, `
		SELECT order_id, product_id, name, image, price, qty
		FROM order_items WHERE order_id IN (`+params+`) ORDER BY id`, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var orderID string
		var it LineItem
		if err := rows.Scan(&orderID, &it.Product, &it.Name, &it.Image, &it.Price, &it.Qty); err != nil {
			return err
		}
		i := idx[orderID]
		out[i].Items = append(out[i].Items, it)
	}
	return rows.Err()
}
