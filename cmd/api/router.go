package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/josh-kwaku/pos-ledger/api"
	"github.com/josh-kwaku/pos-ledger/internal/handler"
	"github.com/josh-kwaku/pos-ledger/internal/middleware"
	"github.com/josh-kwaku/pos-ledger/internal/repository"
)

type idempotencyStore interface {
	Get(ctx context.Context, key string, actorID uuid.UUID) (*repository.IdempotencyRecord, error)
	Claim(ctx context.Context, rec *repository.IdempotencyRecord) (bool, error)
	Complete(ctx context.Context, key string, actorID uuid.UUID, statusCode int, body []byte) error
	Release(ctx context.Context, key string, actorID uuid.UUID) error
}

type routerDeps struct {
	secret         string
	idempotency    idempotencyStore
	idempotencyTTL time.Duration
	health         *handler.HealthHandler
	settlement     *handler.SettlementHandler
	// tracerProvider defaults to the global provider when nil.
	tracerProvider trace.TracerProvider
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RouteSpanName)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)

	r.Get("/health", d.health.Liveness)
	r.Get("/health/ready", d.health.Readiness)
	r.Get("/docs", handler.ServeDocs("POS Ledger API", "/docs/openapi.yaml"))
	r.Get("/docs/openapi.yaml", handler.ServeSpec(api.OpenAPISpec))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(d.secret))
		r.Use(middleware.Idempotency(d.idempotency, d.idempotencyTTL))
		d.settlement.Mount(r)
	})

	opts := []otelhttp.Option{
		// Provisional until RouteSpanName sees the matched pattern.
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "HTTP " + r.Method
		}),
	}
	if d.tracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(d.tracerProvider))
	}
	return otelhttp.NewHandler(r, "pos-ledger", opts...)
}
