package settlement

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/pos-ledger/internal/domain"
)

func (s *Service) GetPaymentSummary(ctx context.Context, actorID, orderID uuid.UUID) (_ *domain.PaymentSummary, err error) {
	ctx, span := startSpan(ctx, "GetPaymentSummary", orderID)
	defer func() { endSpan(span, err) }()

	if _, err := s.authorize(ctx, actorID, orderID, paymentRoles); err != nil {
		return nil, fmt.Errorf("GetPaymentSummary: %w", err)
	}

	ledger, err := s.ledger.Snapshot(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("GetPaymentSummary: %w", err)
	}

	summary := ledger.Summary()
	return &summary, nil
}

// ListPayments returns the order's active payments, oldest first.
func (s *Service) ListPayments(ctx context.Context, actorID, orderID uuid.UUID) (_ []domain.Payment, err error) {
	ctx, span := startSpan(ctx, "ListPayments", orderID)
	defer func() { endSpan(span, err) }()

	if _, err := s.authorize(ctx, actorID, orderID, paymentRoles); err != nil {
		return nil, fmt.Errorf("ListPayments: %w", err)
	}

	payments, err := s.payments.ListActiveByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("ListPayments: %w", err)
	}
	return payments, nil
}

// ListRefunds returns the order's refunds, newest first.
func (s *Service) ListRefunds(ctx context.Context, actorID, orderID uuid.UUID) (_ []domain.Refund, err error) {
	ctx, span := startSpan(ctx, "ListRefunds", orderID)
	defer func() { endSpan(span, err) }()

	if _, err := s.authorize(ctx, actorID, orderID, paymentRoles); err != nil {
		return nil, fmt.Errorf("ListRefunds: %w", err)
	}

	refunds, err := s.refunds.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("ListRefunds: %w", err)
	}
	return refunds, nil
}
