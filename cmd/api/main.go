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

	"github.com/josh-kwaku/pos-ledger/internal/authz"
	"github.com/josh-kwaku/pos-ledger/internal/config"
	"github.com/josh-kwaku/pos-ledger/internal/handler"
	"github.com/josh-kwaku/pos-ledger/internal/logging"
	"github.com/josh-kwaku/pos-ledger/internal/repository"
	"github.com/josh-kwaku/pos-ledger/internal/service/settlement"
	"github.com/josh-kwaku/pos-ledger/internal/telemetry"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init(cfg.ServiceName, cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, telemetry.Options{
		ServiceName: cfg.ServiceName,
		Environment: cfg.AppEnv,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	pool, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
		PingAttempts:     cfg.DBPingAttempts,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	db := repository.NewDB(pool)
	orders := repository.NewOrderRepository(pool)
	ledger := repository.NewLedgerRepository(pool)
	payments := repository.NewPaymentRepository(pool)
	refunds := repository.NewRefundRepository(pool)
	audit := repository.NewAuditLogRepository(pool)
	idempotency := repository.NewIdempotencyRepository(pool)
	gate := authz.NewGate(repository.NewMembershipRepository(pool))

	svc := settlement.NewService(orders, ledger, payments, refunds, gate, audit, db)

	router := newRouter(routerDeps{
		secret:         cfg.JWTSecret,
		idempotency:    idempotency,
		idempotencyTTL: time.Duration(cfg.IdempotencyTTLH) * time.Hour,
		health:         handler.NewHealthHandler(pool, version),
		settlement:     handler.NewSettlementHandler(svc),
	})

	go purgeIdempotency(ctx, idempotency, time.Duration(cfg.IdempotencyPurgeIntervalM)*time.Minute)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return
	}
	slog.Info("server stopped")
}

type idempotencyPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// purgeIdempotency deletes expired idempotency records until ctx is done.
func purgeIdempotency(ctx context.Context, store idempotencyPurger, every time.Duration) {
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
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				slog.Warn("idempotency purge failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("idempotency records purged", "count", n)
			}
		}
	}
}
