package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/pos-ledger/internal/domain"
)

const paymentColumns = `id, order_id, amount, payment_method, amount_tendered, change,
	transaction_id, notes, split_type, split_metadata, guest_number, deleted_at, created_at`

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, tx *sql.Tx, payment *domain.Payment) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO payments (
			id, order_id, amount, payment_method, amount_tendered, change,
			transaction_id, notes, split_type, split_metadata, guest_number, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		payment.ID, payment.OrderID, payment.Amount, payment.PaymentMethod,
		payment.AmountTendered, payment.Change,
		payment.TransactionID, payment.Notes, payment.SplitType,
		nullableJSON(payment.SplitMetadata), payment.GuestNumber, payment.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("Create: %w", domain.ErrInvalidOrderReference)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// ListActiveByOrderID returns payments that are not soft-deleted, oldest first.
func (r *PaymentRepository) ListActiveByOrderID(ctx context.Context, orderID uuid.UUID) ([]domain.Payment, error) {
	payments, err := selectActivePayments(ctx, r.db, orderID)
	if err != nil {
		return nil, fmt.Errorf("ListActiveByOrderID: %w", err)
	}
	return payments, nil
}

func selectActivePayments(ctx context.Context, q querier, orderID uuid.UUID) ([]domain.Payment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments
		WHERE order_id = $1 AND deleted_at IS NULL ORDER BY created_at, id`, orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return payments, nil
}

func scanPayment(s scanner) (*domain.Payment, error) {
	var p domain.Payment
	var tendered, change decimal.NullDecimal
	var splitType *string
	var metadata *[]byte

	err := s.Scan(
		&p.ID, &p.OrderID, &p.Amount, &p.PaymentMethod, &tendered, &change,
		&p.TransactionID, &p.Notes, &splitType, &metadata, &p.GuestNumber, &p.DeletedAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if tendered.Valid {
		m := domain.NewMoney(tendered.Decimal)
		p.AmountTendered = &m
	}
	if change.Valid {
		m := domain.NewMoney(change.Decimal)
		p.Change = &m
	}
	if splitType != nil {
		st := domain.SplitType(*splitType)
		p.SplitType = &st
	}
	if metadata != nil {
		p.SplitMetadata = *metadata
	}

	return &p, nil
}
