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

	"github.com/redis/go-redis/v9"

	"github.com/fairhouse/casino-core/internal/api"
	"github.com/fairhouse/casino-core/internal/config"
	"github.com/fairhouse/casino-core/internal/infra/logging"
	"github.com/fairhouse/casino-core/internal/infra/pgutils"
	"github.com/fairhouse/casino-core/internal/jobs"
	"github.com/fairhouse/casino-core/internal/observability"
	"github.com/fairhouse/casino-core/internal/services/crashround"
	"github.com/fairhouse/casino-core/internal/services/ledger"
	"github.com/fairhouse/casino-core/internal/services/settlement"
	"github.com/fairhouse/casino-core/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg, err := config.LoadAPI()
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	shutdownqueue.Add(func(context.Context) error {
		slog.Info("closing database pool")
		return db.Close()
	})

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		// The limiter degrades open without Redis; the API stays up.
		slog.Warn("redis unavailable, rate limiting degraded", "error", err)
	}
	shutdownqueue.Add(func(context.Context) error {
		return rdb.Close()
	})

	metrics := observability.New()

	// --- Services ---
	ledgerSvc := ledger.New(db)
	settleSvc := settlement.New(db, metrics, cfg.MaxBetCents)

	hub := api.NewHub()
	shutdownqueue.Add(func(context.Context) error {
		hub.Close()
		return nil
	})

	crashSvc := crashround.New(db, metrics, cfg.Crash, cfg.MaxBetCents, hub)

	crashCtx, stopCrash := context.WithCancel(context.Background())
	crashDone := make(chan struct{})
	go func() {
		defer close(crashDone)
		if err := crashSvc.Run(crashCtx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("crash round clock stopped", "error", err)
		}
	}()
	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("stopping crash round clock")
		stopCrash()
		select {
		case <-crashDone:
			return nil
		case <-c.Done():
			return c.Err()
		}
	})

	jobRunner := jobs.New(db, cfg.SessionTTL)
	if err := jobRunner.Start(); err != nil {
		return fmt.Errorf("start jobs: %w", err)
	}
	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("stopping background jobs")
		return jobRunner.Stop(c)
	})

	// --- HTTP server ---
	handler := api.NewHandler(ledgerSvc, settleSvc, crashSvc)
	router := api.NewRouter(handler, hub, metrics.Handler(), rdb, cfg)
	srv := api.NewServer(cfg.Port, router)

	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("shutting down http server")
		return srv.Shutdown(c)
	})

	errCh := make(chan error, 1)
	go func() {
		serr := srv.ListenAndServe()
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}
		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port)

	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}
		return nil
	}
}
