package orders

import (
	"context"

	"go.uber.org/zap"
)

// The six filter keywords the listing endpoints accept.
var filterPredicates = map[string]func(Order) bool{
	"paid":         func(o Order) bool { return o.IsPaid },
	"notPaid":      func(o Order) bool { return !o.IsPaid },
	"delivered":    func(o Order) bool { return o.IsDelivered },
	"notDelivered": func(o Order) bool { return !o.IsDelivered },
	"cancelled":    func(o Order) bool { return o.IsCancelled },
	"notCancelled": func(o Order) bool { return !o.IsCancelled },
}

func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	out, err := s.Orders.List(ctx)
	if err != nil {
		s.Log.Error("order list failed", zap.Error(err))
		return nil, &PersistenceError{Msg: genericFailure, Err: err}
	}
	return out, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	out, err := s.Orders.ListByUser(ctx, userID)
	if err != nil {
		s.Log.Error("order list failed", zap.String("user_id", userID), zap.Error(err))
		return nil, &PersistenceError{Msg: genericFailure, Err: err}
	}
	return out, nil
}

func (s *Service) Filter(ctx context.Context, keyword string) ([]Order, error) {
	keep, ok := filterPredicates[keyword]
	if !ok {
		return nil, &InvalidFilterError{Filter: keyword}
	}
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return applyFilter(all, keep), nil
}

func (s *Service) FilterByUser(ctx context.Context, userID, keyword string) ([]Order, error) {
	keep, ok := filterPredicates[keyword]
	if !ok {
		return nil, &InvalidFilterError{Filter: keyword}
	}
	mine, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return applyFilter(mine, keep), nil
}

func applyFilter(in []Order, keep func(Order) bool) []Order {
	out := make([]Order, 0, len(in))
	for _, o := range in {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}
