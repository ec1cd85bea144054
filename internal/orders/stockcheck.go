package orders

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/autogear/storefront/internal/catalog"
)

// Advisory availability reports for the client. The authoritative check
// happens again inside Create; a positive result here is not a hold.

type StockCheckResult struct {
	ProductID         string `json:"productId"`
	ProductName       string `json:"productName,omitempty"`
	IsAvailable       bool   `json:"isAvailable"`
	AvailableStock    int    `json:"availableStock"`
	RequestedQuantity int    `json:"requestedQuantity"`
	Error             string `json:"error,omitempty"`
}

type CartStockReport struct {
	AllAvailable bool               `json:"allAvailable"`
	Results      []StockCheckResult `json:"results"`
}

func (s *Service) CheckStock(ctx context.Context, productID string, qty int) (*StockCheckResult, error) {
	p, err := s.Products.Get(ctx, productID)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, &ProductNotFoundError{Ref: productID}
	}
	if err != nil {
		s.Log.Error("product lookup failed", zap.String("product_id", productID), zap.Error(err))
		return nil, &PersistenceError{Msg: genericFailure, Err: err}
	}
	return &StockCheckResult{
		ProductID:         p.ID,
		ProductName:       p.Name,
		IsAvailable:       p.CountInStock >= qty,
		AvailableStock:    p.CountInStock,
		RequestedQuantity: qty,
	}, nil
}

func (s *Service) CheckCartStock(ctx context.Context, items []ItemQty) (*CartStockReport, error) {
	report := &CartStockReport{AllAvailable: true}
	for _, it := range items {
		p, err := s.Products.Get(ctx, it.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			report.AllAvailable = false
			report.Results = append(report.Results, StockCheckResult{
				ProductID:         it.ProductID,
				IsAvailable:       false,
				RequestedQuantity: it.Qty,
				Error:             "Product not found",
			})
			continue
		}
		if err != nil {
			s.Log.Error("product lookup failed", zap.String("product_id", it.ProductID), zap.Error(err))
			return nil, &PersistenceError{Msg: genericFailure, Err: err}
		}
		res := StockCheckResult{
			ProductID:         p.ID,
			ProductName:       p.Name,
			IsAvailable:       p.CountInStock >= it.Qty,
			AvailableStock:    p.CountInStock,
			RequestedQuantity: it.Qty,
		}
		if !res.IsAvailable {
			report.AllAvailable = false
			res.Error = fmt.Sprintf("Insufficient stock. Available: %d, Requested: %d", p.CountInStock, it.Qty)
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}
