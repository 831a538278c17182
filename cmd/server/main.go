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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/yukikurage/hoc-admin-api/internal/auth"
	"github.com/yukikurage/hoc-admin-api/internal/config"
	"github.com/yukikurage/hoc-admin-api/internal/database"
	"github.com/yukikurage/hoc-admin-api/internal/middleware"
	"github.com/yukikurage/hoc-admin-api/internal/observability"
	"github.com/yukikurage/hoc-admin-api/internal/router"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer := func(context.Context) error { return nil }
	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.ServiceName, cfg.OTLPEndpoint)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		shutdownTracer = shutdown
	}

	db, err := database.Connect(cfg, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("close database", "error", err)
		}
	}()

	metrics := observability.NewProm(observability.NewRegistry())
	if err := db.Use(observability.NewGormMetrics(metrics)); err != nil {
		return fmt.Errorf("register db metrics: %w", err)
	}

	if err := database.MigrateDatabase(db, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	seedCtx, cancel := config.WithTimeout(10 * time.Second)
	err = database.EnsureAdminUser(seedCtx, db, cfg.AdminEmail, cfg.AdminPassword, auth.NewHasher(cfg.BcryptCost), log)
	cancel()
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	var rateStore middleware.CounterStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		})
		defer client.Close()

		pingCtx, cancel := config.WithTimeout(2 * time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unreachable, login limiter will fail open until it recovers", "addr", cfg.RedisAddr, "error", err)
		}
		cancel()
		rateStore = middleware.NewRedisStore(client, "hoc:ratelimit:")
	}

	engine := router.New(router.Deps{
		Config:    cfg,
		Log:       log,
		DB:        db,
		Metrics:   metrics,
		RateStore: rateStore,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", srv.Addr, "env", cfg.Env, "db_driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown", "error", err)
	}
	return nil
}
