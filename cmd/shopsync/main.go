package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/autogear/storefront/internal/cart"
	"github.com/autogear/storefront/internal/config"
	"github.com/autogear/storefront/internal/stocksync"
)

// shopsync is the client-side companion: it keeps a locally persisted
// cart reconciled against the storefront catalog.
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

	cartStore, err := cart.NewStore(&cart.FileStorage{Path: cfg.CartFile})
	if err != nil {
		log.Fatal("cart load", zap.Error(err))
	}

	syncer := stocksync.New(
		stocksync.NewHTTPFetcher(cfg.APIBaseURL),
		cartStore,
		&stocksync.LogNotifier{Log: log},
		log,
	)

	go func() {
		log.Info("stock sync started",
			zap.String("api", cfg.APIBaseURL),
			zap.String("cart_file", cfg.CartFile),
			zap.Duration("interval", cfg.SyncInterval))
		syncer.Run(ctx, cfg.SyncInterval)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down stock sync...")
	cancel()
}
