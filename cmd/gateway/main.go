package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/socialai-labs/socialai-gateway/api/controllers"
	"github.com/socialai-labs/socialai-gateway/api/routes"
	"github.com/socialai-labs/socialai-gateway/internal/identity"
	"github.com/socialai-labs/socialai-gateway/internal/session"
	"github.com/socialai-labs/socialai-gateway/internal/setup"
	"github.com/socialai-labs/socialai-gateway/internal/user"
	"github.com/socialai-labs/socialai-gateway/pkg/config"
	"github.com/socialai-labs/socialai-gateway/pkg/db"
	"github.com/socialai-labs/socialai-gateway/pkg/logger"
	"github.com/socialai-labs/socialai-gateway/pkg/metrics"
	"github.com/socialai-labs/socialai-gateway/pkg/redis"
	"github.com/socialai-labs/socialai-gateway/pkg/store"
	filestore "github.com/socialai-labs/socialai-gateway/pkg/store/file"
	redisstore "github.com/socialai-labs/socialai-gateway/pkg/store/redis"
	sqlitestore "github.com/socialai-labs/socialai-gateway/pkg/store/sqlite"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "gateway"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "gateway",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionStore, pingers, cleanup, err := buildStore(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap session store", err)
		os.Exit(1)
	}
	defer cleanup()

	identityClient, err := identity.NewClient(cfg.Backend)
	if err != nil {
		logg.Error(ctx, "failed to build identity client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	sessionMetrics := metrics.NewSessionMetrics(registry)

	sessions, err := session.NewManager(ctx, session.ManagerParams{
		Store:    sessionStore,
		Identity: identityClient,
		Logger:   logg,
		Metrics:  sessionMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to build session manager", err)
		os.Exit(1)
	}

	unsubscribe := sessions.Subscribe(func(u user.User, authenticated bool) {
		c := logg.WithFields(context.Background(), map[string]any{
			"authenticated": authenticated,
			"user_id":       u.ID,
		})
		logg.Info(c, "session state changed")
	})
	defer unsubscribe()

	flow, err := setup.NewFlow(setup.FlowParams{Sessions: sessions, Logger: logg})
	if err != nil {
		logg.Error(ctx, "failed to build setup flow", err)
		os.Exit(1)
	}

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	handler := routes.NewRouter(cfg, logg, sessions, flow, metricsHandler, pingers...)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"store_driver": cfg.Store.Driver,
	})
	logg.Info(startCtx, "starting gateway")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "gateway shutdown error", err)
		}
		logg.Info(context.Background(), "gateway stopped")
	case err := <-errCh:
		logg.Error(ctx, "gateway stopped unexpectedly", err)
		os.Exit(1)
	}
}

// buildStore wires the configured session store driver and returns the
// pingers readiness should check plus a cleanup closing the driver's
// connections.
func buildStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (store.Store, []controllers.Pinger, func(), error) {
	switch {
	case cfg.Store.IsSQLite():
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, nil, nil, err
		}
		st, err := sqlitestore.New(dbClient)
		if err != nil {
			_ = dbClient.Close()
			return nil, nil, nil, err
		}
		cleanup := func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}
		return st, []controllers.Pinger{dbClient}, cleanup, nil

	case cfg.Store.IsRedis():
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, nil, nil, err
		}
		st, err := redisstore.New(redisClient)
		if err != nil {
			_ = redisClient.Close()
			return nil, nil, nil, err
		}
		cleanup := func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}
		return st, []controllers.Pinger{redisClient}, cleanup, nil

	default:
		st, err := filestore.New(cfg.Store.FilePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return st, nil, func() {}, nil
	}
}
