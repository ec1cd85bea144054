package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/autogear/storefront/internal/catalog"
	"github.com/autogear/storefront/internal/config"
	"github.com/autogear/storefront/internal/httpx"
	kafkax "github.com/autogear/storefront/internal/kafka"
	"github.com/autogear/storefront/internal/orders"
	"github.com/autogear/storefront/internal/postgres"
	"github.com/autogear/storefront/internal/redisx"
	"github.com/autogear/storefront/internal/users"
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

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024, log)
	prod.Start(ctx)

	svc := &orders.Service{
		Orders:   &orders.PGStore{DB: db},
		Products: &catalog.PGStore{DB: db},
		Users:    &users.PGStore{DB: db},
		Events:   prod,
		Log:      log,
		Name:     cfg.ServiceName,
	}

	router := httpx.NewRouter(log)
	oh := &httpx.OrdersHandler{Service: svc}
	oh.Register(router)
	ch := &httpx.CatalogHandler{
		Products: svc.Products,
		Service:  svc,
		Redis:    rdb,
		Log:      log,
	}
	ch.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // flush & close writer
	cancel()
	prod.WaitClosed()
}
