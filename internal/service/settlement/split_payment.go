package settlement

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/pos-ledger/internal/domain"
)

type RecordSplitPaymentRequest struct {
	ActorID        uuid.UUID
	OrderID        uuid.UUID
	Amount         domain.Money
	Method         domain.PaymentMethod
	SplitType      domain.SplitType
	GuestNumber    int
	AmountTendered *domain.Money
	SplitMetadata  json.RawMessage
	TransactionID  *string
}

// RecordSplitPayment records one guest's share. Apart from the split fields
// and the generated note it is an ordinary payment and obeys the same rules.
func (s *Service) RecordSplitPayment(ctx context.Context, req RecordSplitPaymentRequest) (_ *domain.Payment, err error) {
	ctx, span := startSpan(ctx, "RecordSplitPayment", req.OrderID)
	defer func() { endSpan(span, err) }()

	if err := validateSplitPayment(req); err != nil {
		return nil, fmt.Errorf("RecordSplitPayment: %w", err)
	}

	splitType := req.SplitType
	guest := req.GuestNumber
	notes := fmt.Sprintf("Split payment - Guest %d", guest)

	p, err := s.record(ctx, paymentIntent{
		actorID:        req.ActorID,
		orderID:        req.OrderID,
		amount:         req.Amount,
		method:         req.Method,
		amountTendered: req.AmountTendered,
		transactionID:  req.TransactionID,
		notes:          &notes,
		splitType:      &splitType,
		splitMetadata:  req.SplitMetadata,
		guestNumber:    &guest,
	})
	if err != nil {
		return nil, fmt.Errorf("RecordSplitPayment: %w", err)
	}
	return p, nil
}

func validateSplitPayment(req RecordSplitPaymentRequest) error {
	if !req.SplitType.IsValid() {
		return fmt.Errorf("validateSplitPayment: %q: %w", req.SplitType, domain.ErrInvalidSplitType)
	}
	if req.GuestNumber < 1 {
		return fmt.Errorf("validateSplitPayment: %w", domain.ErrInvalidGuestNumber)
	}
	if len(req.SplitMetadata) > 0 && !json.Valid(req.SplitMetadata) {
		return fmt.Errorf("validateSplitPayment: split metadata: %w", domain.ErrInvalidRequest)
	}
	return nil
}
