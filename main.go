package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/handlers"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/consul"
	"storefront/internal/orders"
	"storefront/internal/stores/kafka"
	"storefront/internal/stores/kv"
	"storefront/pkg/logkey"

	"github.com/joho/godotenv"
)

const (
	defaultFeedURL  = "https://fakestoreapi.in/api/products"
	endpointPrefix  = "/v1/storefront"
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded", slog.String(logkey.ERROR, err.Error()))
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("service stopped", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	store, closeStore, err := openKV(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	cat := catalog.NewConf()
	feedURL, err := resolveFeedURL()
	if err != nil {
		return err
	}
	// One-shot fetch. A failure is not fatal: the API serves an empty-catalog
	// error state instead.
	if err := cat.Load(ctx, feedURL); err != nil {
		slog.Error("failed to load product catalog", slog.String(logkey.ERROR, err.Error()), slog.String("feed_url", feedURL))
	}

	cartConf, err := cart.NewConf(ctx, store, cat)
	if err != nil {
		return fmt.Errorf("failed to init cart store: %w", err)
	}
	ledger, err := orders.NewConf(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to init order ledger: %w", err)
	}

	var events *kafka.Conf
	if broker := os.Getenv("KAFKA_BROKER"); broker != "" {
		events, err = kafka.NewConf(broker)
		if err != nil {
			// Order events are best-effort; checkout works without a broker.
			slog.Error("failed to connect kafka, order events disabled", slog.String(logkey.ERROR, err.Error()))
			events = nil
		} else {
			defer events.Close()
		}
	}

	manager := checkout.NewManager(cat, cartConf, ledger, store, events)
	api := handlers.API(endpointPrefix, cat, cartConf, manager, ledger, store)

	port := os.Getenv("STOREFRONT_PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      api,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("storefront listening", slog.String("addr", server.Addr))
		serverErr <- server.ListenAndServe()
	}()

	stop, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-stop.Done():
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}

// openKV selects the storage driver. Redis is the default; postgres is for
// deployments that already run a database.
func openKV(ctx context.Context) (kv.Store, func(), error) {
	switch driver := os.Getenv("KV_DRIVER"); driver {
	case "postgres":
		store, err := kv.NewPostgres(ctx, os.Getenv("POSTGRES_DSN"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres kv store: %w", err)
		}
		return store, func() { store.Close() }, nil
	case "", "redis":
		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			addr = "localhost:6379"
		}
		store, err := kv.NewRedis(ctx, addr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open redis kv store: %w", err)
		}
		return store, func() { store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown KV_DRIVER %q", driver)
	}
}

// resolveFeedURL prefers consul discovery of a registered catalog service and
// falls back to a fixed URL.
func resolveFeedURL() (string, error) {
	if os.Getenv("CONSUL_HTTP_ADDR") != "" {
		client, err := consul.NewClient()
		if err != nil {
			return "", err
		}
		address, port, err := consul.GetServiceAddress(client, "catalog")
		if err != nil {
			return "", fmt.Errorf("failed to discover catalog service: %w", err)
		}
		return fmt.Sprintf("http://%s:%d/api/products", address, port), nil
	}
	if url := os.Getenv("CATALOG_URL"); url != "" {
		return url, nil
	}
	return defaultFeedURL, nil
}
