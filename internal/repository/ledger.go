package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/pos-ledger/internal/domain"
)

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Snapshot reads the order, its active payments and its refunds inside one
// read-only REPEATABLE READ transaction so the three reads agree.
func (r *LedgerRepository) Snapshot(ctx context.Context, orderID uuid.UUID) (*domain.Ledger, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("Snapshot: begin tx: %w", err)
	}
	defer tx.Rollback()

	l, err := loadLedger(ctx, tx, orderID, false)
	if err != nil {
		return nil, fmt.Errorf("Snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Snapshot: commit: %w", err)
	}
	return l, nil
}

// SnapshotForUpdate locks the order row for the rest of tx and reads the
// ledger behind the lock. Concurrent writers on the same order serialize here.
func (r *LedgerRepository) SnapshotForUpdate(ctx context.Context, tx *sql.Tx, orderID uuid.UUID) (*domain.Ledger, error) {
	l, err := loadLedger(ctx, tx, orderID, true)
	if err != nil {
		return nil, fmt.Errorf("SnapshotForUpdate: %w", err)
	}
	return l, nil
}

func loadLedger(ctx context.Context, q querier, orderID uuid.UUID, forUpdate bool) (*domain.Ledger, error) {
	order, err := selectOrder(ctx, q, orderID, forUpdate)
	if err != nil {
		return nil, fmt.Errorf("order: %w", err)
	}

	payments, err := selectActivePayments(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("payments: %w", err)
	}

	refunds, err := selectRefunds(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("refunds: %w", err)
	}

	return &domain.Ledger{Order: *order, Payments: payments, Refunds: refunds}, nil
}
