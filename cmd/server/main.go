package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/opticalmarket/storefront/internal"
	"github.com/opticalmarket/storefront/internal/cart"
	"github.com/opticalmarket/storefront/internal/checkout"
	"github.com/opticalmarket/storefront/internal/commerce"
	"github.com/opticalmarket/storefront/internal/cookie"
	"github.com/opticalmarket/storefront/internal/events"
	"github.com/opticalmarket/storefront/internal/router"
	"github.com/opticalmarket/storefront/internal/session"
	"github.com/opticalmarket/storefront/internal/telemetry"
	"github.com/opticalmarket/storefront/internal/worker"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewBusinessMetrics(registry, "optical")

	// Cart persistence.
	var cartRepo cart.Repository
	switch cfg.Cart.Backend {
	case "postgres":
		logger.Info().Msg("connecting to database")
		sqlDB, err := sql.Open("pgx", cfg.Cart.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		if err := sqlDB.Ping(); err != nil {
			sqlDB.Close()
			return fmt.Errorf("database ping failed: %w", err)
		}

		logger.Info().Msg("running database migrations")
		if err := internal.RunMigrations(sqlDB); err != nil {
			sqlDB.Close()
			return fmt.Errorf("migration failed: %w", err)
		}
		sqlDB.Close()

		pool, err := pgxpool.New(ctx, cfg.Cart.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		defer pool.Close()

		cartRepo = cart.NewPostgresRepository(pool)

	default:
		logger.Warn().Msg("using in-memory cart storage, carts will not survive restarts")
		cartRepo = cart.NewMemoryRepository()
	}

	carts := cart.NewStore(cartRepo, logger)

	sessions := session.NewStore(cfg.SessionTTL)
	go sessions.Run(ctx, 5*time.Minute)

	backend, err := commerce.NewClient(commerce.ClientConfig{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize backend client: %w", err)
	}

	// Event bus. Without NATS the storefront runs fine; approved orders
	// just are not pushed to Bling automatically.
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS.URL, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to nats: %w", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher

		blingWorker := worker.NewBlingWorker(natsPublisher, backend, metrics, worker.BlingConfig{
			ServiceToken: cfg.Backend.ServiceToken,
		}, logger)
		go func() {
			if err := blingWorker.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("bling worker exited")
			}
		}()
	}

	flow := checkout.NewFlow(checkout.FlowConfig{
		Carts:    carts,
		Sessions: sessions,
		Orders:   backend,
		Payments: backend,
		Events:   publisher,
		Metrics:  metrics,
		Logger:   logger,
	})

	e := router.New(router.Config{
		Carts:    carts,
		Sessions: sessions,
		Flow:     flow,
		Backend:  backend,
		Metrics:  metrics,
		Registry: registry,
		Cookies:  cookie.NewConfig(cfg.Production()),
		Logger:   logger,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("storefront listening")
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
