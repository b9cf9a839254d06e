package settlement

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/pos-ledger/internal/domain"
	"github.com/josh-kwaku/pos-ledger/internal/logging"
)

type CreateRefundRequest struct {
	ActorID uuid.UUID
	OrderID uuid.UUID
	Amount  domain.Money
	Reason  *string
	// RefundedBy defaults to the actor's id when empty.
	RefundedBy *string
}

type refundAuditDetails struct {
	OrderID uuid.UUID    `json:"orderId"`
	Amount  domain.Money `json:"amount"`
	Reason  *string      `json:"reason"`
}

// CreateRefund returns money against an order. Order status is left alone,
// including COMPLETED and paidAt.
func (s *Service) CreateRefund(ctx context.Context, req CreateRefundRequest) (_ *domain.Refund, err error) {
	ctx, span := startSpan(ctx, "CreateRefund", req.OrderID)
	defer func() { endSpan(span, err) }()

	log := logging.FromContext(ctx)

	storeID, err := s.authorize(ctx, req.ActorID, req.OrderID, refundRoles)
	if err != nil {
		return nil, fmt.Errorf("CreateRefund: %w", err)
	}

	ledger, err := s.ledger.Snapshot(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("CreateRefund: %w", err)
	}
	if err := validateRefund(ledger, req.Amount); err != nil {
		return nil, fmt.Errorf("CreateRefund: %w", err)
	}

	refundedBy := req.RefundedBy
	if refundedBy == nil || *refundedBy == "" {
		actor := req.ActorID.String()
		refundedBy = &actor
	}

	rf := &domain.Refund{
		ID:         uuid.New(),
		OrderID:    req.OrderID,
		Amount:     req.Amount,
		Reason:     req.Reason,
		RefundedBy: refundedBy,
		CreatedAt:  s.now(),
	}

	err = s.tx.RunInTx(ctx, nil, func(tx *sql.Tx) error {
		locked, err := s.ledger.SnapshotForUpdate(ctx, tx, req.OrderID)
		if err != nil {
			return err
		}
		if err := validateRefund(locked, req.Amount); err != nil {
			return err
		}
		if err := s.refunds.Create(ctx, tx, rf); err != nil {
			return fmt.Errorf("create refund: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("CreateRefund: %w", err)
	}

	log.Info("refund recorded",
		"refund_id", rf.ID,
		"order_id", rf.OrderID,
		"amount", rf.Amount.String(),
	)

	s.recordRefundAudit(ctx, storeID, req.ActorID, rf)

	return rf, nil
}

// recordRefundAudit never fails the refund; the refund is already committed.
func (s *Service) recordRefundAudit(ctx context.Context, storeID, actorID uuid.UUID, rf *domain.Refund) {
	log := logging.FromContext(ctx)

	details, err := json.Marshal(refundAuditDetails{OrderID: rf.OrderID, Amount: rf.Amount, Reason: rf.Reason})
	if err != nil {
		log.Warn("failed to encode refund audit details", "refund_id", rf.ID, "error", err)
		return
	}

	event := &domain.AuditEvent{
		ID:         uuid.New(),
		StoreID:    storeID,
		UserID:     actorID,
		Action:     domain.AuditActionRefundCreated,
		EntityType: "refund",
		EntityID:   rf.ID,
		Details:    details,
		CreatedAt:  rf.CreatedAt,
	}
	if err := s.audit.Record(ctx, event); err != nil {
		log.Warn("failed to record refund audit event", "refund_id", rf.ID, "error", err)
	}
}

// validateRefund caps a refund at what has been paid and not yet refunded.
func validateRefund(ledger *domain.Ledger, amount domain.Money) error {
	if !amount.IsPositive() {
		return fmt.Errorf("validateRefund: %w", domain.ErrInvalidAmount)
	}
	refundable := ledger.TotalPaid().Sub(ledger.TotalRefunded())
	if amount.GreaterThan(refundable) {
		return fmt.Errorf("validateRefund: amount %s, refundable %s: %w", amount, refundable, domain.ErrRefundExceedsBalance)
	}
	return nil
}
