package stockwatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/autogear/storefront/internal/kafka"
	"github.com/autogear/storefront/internal/orders"
	"github.com/autogear/storefront/internal/redisx"
)

// Service mirrors stock.changed events into the redis stock cache the
// API serves on its hot read path.
type Service struct {
	Redis *redis.Client
	Log   *zap.Logger
}

func (s *Service) HandleStockChanged(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventStockChanged {
		return nil
	}

	// dedup by event id
	dkey := fmt.Sprintf(redisx.KeyDedup, "stockwatch", env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafka.UnwrapPayload[orders.StockChangedPayload](env.Payload)
	if err != nil {
		return err
	}

	key := fmt.Sprintf(redisx.KeyProductStock, p.ProductID)
	if err := s.Redis.Set(ctx, key, p.CountInStock, redisx.TTLStockCache).Err(); err != nil {
		return err
	}
	s.Log.Debug("stock cache refreshed",
		zap.String("product_id", p.ProductID),
		zap.Int("count_in_stock", p.CountInStock))
	return nil
}
