package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/autogear/storefront/internal/catalog"
	kafkax "github.com/autogear/storefront/internal/kafka"
	"github.com/autogear/storefront/internal/users"
)

const genericCreateFailure = "Failed to create order. Please try again."
const genericFailure = "Something went wrong. Please try again."

// Publisher is satisfied by kafka.Producer; tests substitute a recorder.
type Publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

// Service owns the order lifecycle: it is the only component that
// mutates orders after creation and the only one that moves stock.
type Service struct {
	Orders   Store
	Products catalog.Store
	Users    users.Store
	Events   Publisher
	Log      *zap.Logger
	Name     string // producer name stamped on event envelopes
}

type ItemInput struct {
	ProductID string  `json:"_id"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
}

type CreateInput struct {
	Items           []ItemInput     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	ItemsPrice      float64         `json:"itemsPrice"`
	TaxPrice        float64         `json:"taxPrice"`
	ShippingPrice   float64         `json:"shippingPrice"`
	TotalPrice      float64         `json:"totalPrice"`
}

// Create validates stock for the whole item list before any mutation,
// then decrements each product individually and persists the order with
// client-supplied snapshots. The decrements and the insert are separate
// writes: a failed insert leaves the decrements applied (logged, surfaced
// as a generic failure). Totals are stored as supplied by the caller;
// payment capture verifies them downstream.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	// Pre-check pass over the entire list. Nothing is written until every
	// item has a product with enough stock.
	snaps := make(map[string]*catalog.Product, len(in.Items))
	for _, it := range in.Items {
		p, err := s.Products.Get(ctx, it.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			ref := it.Name
			if ref == "" {
				ref = it.ProductID
			}
			return nil, &ProductNotFoundError{Ref: ref}
		}
		if err != nil {
			s.Log.Error("product lookup failed", zap.String("product_id", it.ProductID), zap.Error(err))
			return nil, &PersistenceError{Msg: genericCreateFailure, Err: err}
		}
		if p.CountInStock < it.Qty {
			return nil, &InsufficientStockError{Name: p.Name, Available: p.CountInStock, Requested: it.Qty}
		}
		snaps[it.ProductID] = p
	}

	for _, it := range in.Items {
		if err := s.Products.Decrement(ctx, it.ProductID, it.Qty); err != nil {
			if errors.Is(err, catalog.ErrShortStock) {
				// lost a race after the pre-check; earlier decrements stay
				p := snaps[it.ProductID]
				return nil, &InsufficientStockError{Name: p.Name, Available: p.CountInStock, Requested: it.Qty}
			}
			s.Log.Error("stock decrement failed", zap.String("product_id", it.ProductID), zap.Error(err))
			return nil, &PersistenceError{Msg: genericCreateFailure, Err: err}
		}
		s.publishStockChanged(it.ProductID, snaps[it.ProductID].CountInStock-it.Qty)
	}

	o := &Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           make([]LineItem, 0, len(in.Items)),
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		ItemsPrice:      in.ItemsPrice,
		TaxPrice:        in.TaxPrice,
		ShippingPrice:   in.ShippingPrice,
		TotalPrice:      in.TotalPrice,
		CreatedAt:       time.Now().UTC(),
	}
	for _, it := range in.Items {
		o.Items = append(o.Items, LineItem{
			Product: it.ProductID,
			Name:    it.Name,
			Image:   it.Image,
			Price:   it.Price,
			Qty:     it.Qty,
		})
	}

	if err := s.Orders.Insert(ctx, o); err != nil {
		// Stock was already taken; there is no rollback here. Operators
		// reconcile from this log line plus the stock.changed events.
		s.Log.Error("order insert failed after stock decrement",
			zap.String("order_id", o.ID),
			zap.String("user_id", userID),
			zap.Int("items", len(o.Items)),
			zap.Error(err))
		return nil, &PersistenceError{Msg: genericCreateFailure, Err: err}
	}

	items := make([]ItemQty, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemQty{ProductID: it.Product, Qty: it.Qty})
	}
	s.publish(EventOrderCreated, TopicOrderCreated, o.ID, OrderCreatedPayload{
		OrderID: o.ID, UserID: userID, Items: items, TotalPrice: o.TotalPrice,
	})
	return o, nil
}

// Cancel restores stock for every line item best-effort: a product that
// no longer exists is collected and logged, not fatal. Cancelling the
// same order twice restores stock twice; callers must not repeat it.
func (s *Service) Cancel(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		s.Log.Error("order load failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, &PersistenceError{Msg: genericFailure, Err: err}
	}

	var restored []ItemQty
	var missing []string
	for _, it := range o.Items {
		err := s.Products.Increment(ctx, it.Product, it.Qty)
		if errors.Is(err, catalog.ErrNotFound) {
			missing = append(missing, it.Product)
			continue
		}
		if err != nil {
			s.Log.Error("stock restore failed", zap.String("product_id", it.Product), zap.Error(err))
			missing = append(missing, it.Product)
			continue
		}
		restored = append(restored, ItemQty{ProductID: it.Product, Qty: it.Qty})
		if p, err := s.Products.Get(ctx, it.Product); err == nil {
			s.publishStockChanged(it.Product, p.CountInStock)
		}
	}
	if len(missing) > 0 {
		s.Log.Warn("partial stock restore on cancel",
			zap.String("order_id", orderID),
			zap.Strings("missing_products", missing))
	}

	o.IsCancelled = true
	if err := s.Orders.Update(ctx, o); err != nil {
		s.Log.Error("order cancel update failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, &PersistenceError{Msg: genericFailure, Err: err}
	}

	s.publish(EventOrderCancelled, TopicOrderCancelled, o.ID, OrderCancelledPayload{
		OrderID: o.ID, Restored: restored, Missing: missing,
	})
	return o, nil
}

// MarkPaid records the payment provider's confirmation and awards the
// purchaser loyalty points worth totalPrice/100.
func (s *Service) MarkPaid(ctx context.Context, orderID string, pr PaymentResult) (*Order, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		s.Log.Error("order load failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, &PersistenceError{Msg: genericFailure, Err: err}
	}

	now := time.Now().UTC()
	o.IsPaid = true
	o.PaidAt = &now
	o.PaymentResult = &pr
	if err := s.Orders.Update(ctx, o); err != nil {
		s.Log.Error("order pay update failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, &PersistenceError{Msg: genericFailure, Err: err}
	}

	points := o.TotalPrice / 100
	if err := s.Users.AddPoints(ctx, o.UserID, points); err != nil {
		// order is paid either way; points are retried by support tooling
		s.Log.Warn("loyalty points not awarded",
			zap.String("order_id", orderID),
			zap.String("user_id", o.UserID),
			zap.Float64("points", points),
			zap.Error(err))
	}

	s.publish(EventOrderPaid, TopicOrderPaid, o.ID, OrderPaidPayload{OrderID: o.ID, PointsAwarded: points})
	return o, nil
}

func (s *Service) MarkDelivered(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		s.Log.Error("order load failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, &PersistenceError{Msg: genericFailure, Err: err}
	}

	now := time.Now().UTC()
	o.IsDelivered = true
	o.DeliveredAt = &now
	if err := s.Orders.Update(ctx, o); err != nil {
		s.Log.Error("order deliver update failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, &PersistenceError{Msg: genericFailure, Err: err}
	}

	s.publish(EventOrderDelivered, TopicOrderDelivered, o.ID, OrderDeliveredPayload{OrderID: o.ID})
	return o, nil
}

func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		s.Log.Error("order load failed", zap.String("order_id", orderID), zap.Error(err))
		return nil, &PersistenceError{Msg: genericFailure, Err: err}
	}
	return o, nil
}

func (s *Service) publish(eventType, topic, orderID string, payload any) {
	if s.Events == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Name,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	s.Events.Publish(topic, PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) publishStockChanged(productID string, count int) {
	if s.Events == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventStockChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Name,
		CorrelationID: productID,
		Payload:       kafkax.MustMarshal(StockChangedPayload{ProductID: productID, CountInStock: count}),
	}
	s.Events.Publish(TopicStockChanged, PartitionKey(productID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventStockChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
