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

type RecordPaymentRequest struct {
	ActorID        uuid.UUID
	OrderID        uuid.UUID
	Amount         domain.Money
	Method         domain.PaymentMethod
	AmountTendered *domain.Money
	TransactionID  *string
	Notes          *string
}

// paymentIntent is what both the plain and the split recorder hand to record.
type paymentIntent struct {
	actorID        uuid.UUID
	orderID        uuid.UUID
	amount         domain.Money
	method         domain.PaymentMethod
	amountTendered *domain.Money
	transactionID  *string
	notes          *string
	splitType      *domain.SplitType
	splitMetadata  json.RawMessage
	guestNumber    *int
}

func (s *Service) RecordPayment(ctx context.Context, req RecordPaymentRequest) (_ *domain.Payment, err error) {
	ctx, span := startSpan(ctx, "RecordPayment", req.OrderID)
	defer func() { endSpan(span, err) }()

	p, err := s.record(ctx, paymentIntent{
		actorID:        req.ActorID,
		orderID:        req.OrderID,
		amount:         req.Amount,
		method:         req.Method,
		amountTendered: req.AmountTendered,
		transactionID:  req.TransactionID,
		notes:          req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("RecordPayment: %w", err)
	}
	return p, nil
}

func (s *Service) record(ctx context.Context, in paymentIntent) (*domain.Payment, error) {
	log := logging.FromContext(ctx)

	if _, err := s.authorize(ctx, in.actorID, in.orderID, paymentRoles); err != nil {
		return nil, err
	}

	ledger, err := s.ledger.Snapshot(ctx, in.orderID)
	if err != nil {
		return nil, err
	}

	change, err := validatePayment(ledger, in.amount, in.method, in.amountTendered)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &domain.Payment{
		ID:             uuid.New(),
		OrderID:        in.orderID,
		Amount:         in.amount,
		PaymentMethod:  in.method,
		AmountTendered: in.amountTendered,
		Change:         change,
		TransactionID:  in.transactionID,
		Notes:          in.notes,
		SplitType:      in.splitType,
		SplitMetadata:  in.splitMetadata,
		GuestNumber:    in.guestNumber,
		CreatedAt:      now,
	}

	var settled bool
	err = s.tx.RunInTx(ctx, nil, func(tx *sql.Tx) error {
		locked, err := s.ledger.SnapshotForUpdate(ctx, tx, in.orderID)
		if err != nil {
			return err
		}
		if _, err := validatePayment(locked, in.amount, in.method, in.amountTendered); err != nil {
			return err
		}

		if err := s.payments.Create(ctx, tx, p); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		if !locked.NetPaid().Add(in.amount).Equal(locked.Order.GrandTotal) {
			return nil
		}

		status := locked.Order.Status
		if status == domain.OrderStatusServed {
			status = domain.OrderStatusCompleted
		}
		if err := s.orders.MarkPaid(ctx, tx, in.orderID, status, now); err != nil {
			return fmt.Errorf("mark paid: %w", err)
		}
		settled = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("payment recorded",
		"payment_id", p.ID,
		"order_id", p.OrderID,
		"amount", p.Amount.String(),
		"method", p.PaymentMethod,
		"order_settled", settled,
	)

	return p, nil
}

// validatePayment checks a payment against a ledger read and returns the
// change owed for cash payments that carry a tendered amount.
func validatePayment(ledger *domain.Ledger, amount domain.Money, method domain.PaymentMethod, tendered *domain.Money) (*domain.Money, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("validatePayment: %w", domain.ErrInvalidAmount)
	}
	if !method.IsValid() {
		return nil, fmt.Errorf("validatePayment: %q: %w", method, domain.ErrInvalidPaymentMethod)
	}

	if ledger.Order.Status == domain.OrderStatusCancelled {
		return nil, fmt.Errorf("validatePayment: %w", domain.ErrOrderCancelled)
	}

	netPaid := ledger.NetPaid()
	if netPaid.Add(amount).GreaterThan(ledger.Order.GrandTotal) {
		return nil, fmt.Errorf("validatePayment: %w", &domain.OverpaymentError{
			Remaining: ledger.Order.GrandTotal.Sub(netPaid),
			Attempted: amount,
		})
	}

	if tendered == nil {
		return nil, nil
	}
	if method != domain.PaymentMethodCash {
		return nil, fmt.Errorf("validatePayment: %w", domain.ErrTenderNotAllowed)
	}
	if tendered.LessThan(amount) {
		return nil, fmt.Errorf("validatePayment: tendered %s, amount %s: %w", tendered, amount, domain.ErrInsufficientTender)
	}
	change := tendered.Sub(amount)
	return &change, nil
}
