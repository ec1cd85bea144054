package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/autogear/storefront/internal/config"
	kafkax "github.com/autogear/storefront/internal/kafka"
	"github.com/autogear/storefront/internal/orders"
	"github.com/autogear/storefront/internal/redisx"
	"github.com/autogear/storefront/internal/stockwatch"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &stockwatch.Service{Redis: rdb, Log: log}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, orders.TopicStockChanged, cfg.ConsumerWorkers, log)

	go func() {
		log.Info("stockwatch consumer started",
			zap.String("group", cfg.ConsumerGroup),
			zap.String("topic", orders.TopicStockChanged),
			zap.Int("workers", cfg.ConsumerWorkers))
		if err := cons.Start(ctx, svc.HandleStockChanged); err != nil {
			log.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumer...")
	cancel()
}
