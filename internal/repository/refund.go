package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/pos-ledger/internal/domain"
)

const refundColumns = `id, order_id, amount, reason, refunded_by, created_at`

type RefundRepository struct {
	db *sql.DB
}

func NewRefundRepository(db *sql.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

func (r *RefundRepository) Create(ctx context.Context, tx *sql.Tx, refund *domain.Refund) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO refunds (id, order_id, amount, reason, refunded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		refund.ID, refund.OrderID, refund.Amount, refund.Reason, refund.RefundedBy, refund.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("Create: %w", domain.ErrInvalidOrderReference)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// ListByOrderID returns refunds newest first.
func (r *RefundRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]domain.Refund, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+refundColumns+` FROM refunds
		WHERE order_id = $1 ORDER BY created_at DESC, id`, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByOrderID: %w", err)
	}
	defer rows.Close()

	refunds, err := collectRefunds(rows)
	if err != nil {
		return nil, fmt.Errorf("ListByOrderID: %w", err)
	}
	return refunds, nil
}

func selectRefunds(ctx context.Context, q querier, orderID uuid.UUID) ([]domain.Refund, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+refundColumns+` FROM refunds WHERE order_id = $1 ORDER BY created_at, id`, orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRefunds(rows)
}

func collectRefunds(rows *sql.Rows) ([]domain.Refund, error) {
	var refunds []domain.Refund
	for rows.Next() {
		var rf domain.Refund
		if err := rows.Scan(
			&rf.ID, &rf.OrderID, &rf.Amount, &rf.Reason, &rf.RefundedBy, &rf.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		refunds = append(refunds, rf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return refunds, nil
}
