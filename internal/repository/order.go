package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/pos-ledger/internal/domain"
)

const orderColumns = `id, store_id, order_number, status, grand_total, paid_at,
	created_at, updated_at`

const orderItemColumns = `id, order_id, menu_item_name, price, final_price, quantity`

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, err := selectOrder(ctx, r.db, id, false)
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return o, nil
}

// GetStoreID resolves the owning store without reading the ledger.
func (r *OrderRepository) GetStoreID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var storeID uuid.UUID
	err := r.db.QueryRowContext(ctx,
		`SELECT store_id FROM orders WHERE id = $1`, id,
	).Scan(&storeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("GetStoreID: %w", domain.ErrOrderNotFound)
		}
		return uuid.Nil, fmt.Errorf("GetStoreID: %w", err)
	}
	return storeID, nil
}

// MarkPaid stamps paid_at and sets the status in the same statement.
func (r *OrderRepository) MarkPaid(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.OrderStatus, paidAt time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $1, paid_at = $2, updated_at = now() WHERE id = $3`,
		status, paidAt, id,
	)
	if err != nil {
		return fmt.Errorf("MarkPaid: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("MarkPaid: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("MarkPaid: %w", domain.ErrOrderNotFound)
	}
	return nil
}

func (r *OrderRepository) ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	items, err := selectOrderItems(ctx, r.db, orderID)
	if err != nil {
		return nil, fmt.Errorf("ListItems: %w", err)
	}
	return items, nil
}

func selectOrder(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	o, err := scanOrder(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func selectOrderItems(ctx context.Context, q querier, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = $1 ORDER BY id`, orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

func scanOrder(s scanner) (*domain.Order, error) {
	var o domain.Order
	err := s.Scan(
		&o.ID, &o.StoreID, &o.OrderNumber, &o.Status, &o.GrandTotal, &o.PaidAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrderItem(s scanner) (*domain.OrderItem, error) {
	var item domain.OrderItem
	var finalPrice decimal.NullDecimal

	err := s.Scan(
		&item.ID, &item.OrderID, &item.MenuItemName, &item.Price, &finalPrice, &item.Quantity,
	)
	if err != nil {
		return nil, err
	}

	if finalPrice.Valid {
		fp := domain.NewMoney(finalPrice.Decimal)
		item.FinalPrice = &fp
	}
	return &item, nil
}
