// Package settlement records payments and refunds against a single order and
// derives split previews and settlement summaries from its ledger.
//
// Every mutation follows the same shape: authorize the actor against the
// order's store, validate against a ledger snapshot, then open a unit of work
// that locks the order row, re-validates against the locked ledger and writes.
// The second validation is what keeps net paid at or below the grand total
// when several terminals settle the same order at once.
package settlement

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/josh-kwaku/pos-ledger/internal/domain"
)

var tracer = otel.Tracer("github.com/josh-kwaku/pos-ledger/internal/service/settlement")

var (
	paymentRoles      = []domain.Role{domain.RoleOwner, domain.RoleAdmin, domain.RoleCashier}
	refundRoles       = []domain.Role{domain.RoleOwner, domain.RoleAdmin}
	splitPreviewRoles = []domain.Role{domain.RoleOwner, domain.RoleAdmin, domain.RoleCashier, domain.RoleServer}
)

type orderRepo interface {
	GetStoreID(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	MarkPaid(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.OrderStatus, paidAt time.Time) error
	ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error)
}

type ledgerRepo interface {
	Snapshot(ctx context.Context, orderID uuid.UUID) (*domain.Ledger, error)
	SnapshotForUpdate(ctx context.Context, tx *sql.Tx, orderID uuid.UUID) (*domain.Ledger, error)
}

type paymentRepo interface {
	Create(ctx context.Context, tx *sql.Tx, payment *domain.Payment) error
	ListActiveByOrderID(ctx context.Context, orderID uuid.UUID) ([]domain.Payment, error)
}

type refundRepo interface {
	Create(ctx context.Context, tx *sql.Tx, refund *domain.Refund) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]domain.Refund, error)
}

type authorizer interface {
	Check(ctx context.Context, actorID, storeID uuid.UUID, allowed ...domain.Role) error
}

type auditLog interface {
	Record(ctx context.Context, event *domain.AuditEvent) error
}

type txRunner interface {
	RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error
}

type Service struct {
	orders   orderRepo
	ledger   ledgerRepo
	payments paymentRepo
	refunds  refundRepo
	authz    authorizer
	audit    auditLog
	tx       txRunner
	now      func() time.Time
}

func NewService(
	orders orderRepo,
	ledger ledgerRepo,
	payments paymentRepo,
	refunds refundRepo,
	authz authorizer,
	audit auditLog,
	tx txRunner,
) *Service {
	return &Service{
		orders:   orders,
		ledger:   ledger,
		payments: payments,
		refunds:  refunds,
		authz:    authz,
		audit:    audit,
		tx:       tx,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// authorize resolves the order's store and checks the actor's role there. It
// touches only the order's store_id, never the ledger.
func (s *Service) authorize(ctx context.Context, actorID, orderID uuid.UUID, roles []domain.Role) (uuid.UUID, error) {
	storeID, err := s.orders.GetStoreID(ctx, orderID)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.authz.Check(ctx, actorID, storeID, roles...); err != nil {
		return uuid.Nil, err
	}
	return storeID, nil
}

func startSpan(ctx context.Context, op string, orderID uuid.UUID) (context.Context, trace.Span) {
	return tracer.Start(ctx, "settlement."+op,
		trace.WithAttributes(attribute.String("order.id", orderID.String())),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(domain.KindOf(err)))
	}
	span.End()
}
