package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/biztalbox/avaya-food-ordering/internal/checkout"
	"github.com/biztalbox/avaya-food-ordering/internal/config"
	"github.com/biztalbox/avaya-food-ordering/internal/logging"
	"github.com/biztalbox/avaya-food-ordering/internal/menu"
	"github.com/biztalbox/avaya-food-ordering/internal/profile"
	"github.com/biztalbox/avaya-food-ordering/internal/router"
	"github.com/biztalbox/avaya-food-ordering/internal/session"
	"github.com/biztalbox/avaya-food-ordering/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	migrationsSource = "file://migrations"
	sweepInterval    = time.Minute
	upstreamTimeout  = 15 * time.Second
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profiles, closeStore, err := openProfileStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	httpClient := &http.Client{Timeout: upstreamTimeout}

	menus := menu.NewService(
		menu.NewClient(cfg.MenuAPIURL, cfg.RestaurantID, httpClient),
		profiles,
		cfg.MenuStaleAfter,
		logger,
	)

	orders := checkout.NewService(
		checkout.NewClient(cfg.OrderAPIURL, httpClient),
		profile.NewResolver(profiles, cfg.RestaurantID, logger),
		checkout.Options{
			Credentials: checkout.Credentials{
				AppKey:      cfg.AppKey,
				AppSecret:   cfg.AppSecret,
				AccessToken: cfg.AccessToken,
			},
			ConfirmDelay: cfg.OrderConfirmDelay,
		},
		logger,
	)

	sessions := session.NewRegistry(orders, logger)
	hub := ws.NewHub(logger)

	go hub.Run(ctx)
	go sessions.RunSweeper(ctx, sweepInterval, cfg.SessionIdleTimeout, hub.CloseSession)
	go refreshPricing(ctx, menus, sessions, cfg.MenuStaleAfter, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, menus, sessions, hub, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openProfileStore uses Postgres when DATABASE_URL is set and an in-memory
// store otherwise.
func openProfileStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (profile.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("DATABASE_URL not set, caching restaurant profile in memory")
		return profile.NewMemoryStore(), func() {}, nil
	}

	if err := profile.Migrate(cfg.DatabaseURL, migrationsSource); err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("connected to database")
	return profile.NewPGStore(pool), pool.Close, nil
}

// refreshPricing reloads the menu on its stale interval and pushes the
// current tax and discount tables into every open cart.
func refreshPricing(ctx context.Context, menus *menu.Service, sessions *session.Registry, every time.Duration, logger *zap.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m, err := menus.Menu(ctx)
			if err != nil {
				logger.Warn("refresh menu pricing", zap.Error(err))
				continue
			}
			sessions.Reprice(m.Taxes, m.Discounts)
		}
	}
}
