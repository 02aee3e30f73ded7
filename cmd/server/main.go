// Command server runs the shop HTTP API: products and carts over Postgres
// with a Redis cache in front.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/stDean/prod-ecom-backend/internal/httpapi"
	"github.com/stDean/prod-ecom-backend/pkg/di"
	"github.com/stDean/prod-ecom-backend/store"
)

func main() {
	cfg := di.DefaultConfig()

	addr := flag.String("addr", envOr("SHOP_ADDR", ":8080"), "HTTP listen address")
	createSchema := flag.Bool("create-schema", false, "create the database schema and exit")
	flag.StringVar(&cfg.DatabaseDSN, "database-dsn", envOr("SHOP_DATABASE_DSN", cfg.DatabaseDSN), "Postgres DSN")
	flag.StringVar(&cfg.Redis.Addr, "redis-addr", envOr("SHOP_REDIS_ADDR", cfg.Redis.Addr), "Redis host:port")
	flag.StringVar(&cfg.Redis.Password, "redis-password", os.Getenv("SHOP_REDIS_PASSWORD"), "Redis password")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()
	cfg.Logger = log

	container, err := di.NewContainer(cfg)
	if err != nil {
		log.Fatal("container init failed", zap.Error(err))
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *createSchema {
		if err := store.CreateSchema(ctx, container.DB()); err != nil {
			log.Fatal("schema creation failed", zap.Error(err))
		}
		log.Info("schema created")
		return
	}

	handler := httpapi.NewHandler(container.ProductService(), container.CartService(), log)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Info("server listening", zap.String("addr", *addr))

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
