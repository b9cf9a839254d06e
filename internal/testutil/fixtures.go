package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/pos-ledger/internal/domain"
	"github.com/josh-kwaku/pos-ledger/internal/repository"
)

func SeedStore(t *testing.T, db *sql.DB, name string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(`INSERT INTO stores (id, name) VALUES ($1, $2)`, id, name)
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return id
}

// SeedMember creates a fresh user id holding role in storeID.
func SeedMember(t *testing.T, db *sql.DB, storeID uuid.UUID, role domain.Role) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	err := repository.NewMembershipRepository(db).Upsert(context.Background(), domain.StoreMembership{
		UserID:  userID,
		StoreID: storeID,
		Role:    role,
	})
	if err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return userID
}

func SeedOrder(t *testing.T, db *sql.DB, storeID uuid.UUID, grandTotal string, status domain.OrderStatus) *domain.Order {
	t.Helper()

	now := time.Now().UTC()
	o := &domain.Order{
		ID:          uuid.New(),
		StoreID:     storeID,
		OrderNumber: "ORD-" + uuid.NewString()[:8],
		Status:      status,
		GrandTotal:  domain.MustParseMoney(grandTotal),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := db.Exec(
		`INSERT INTO orders (id, store_id, order_number, status, grand_total, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.StoreID, o.OrderNumber, o.Status, o.GrandTotal, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return o
}

// SeedOrderItem inserts a line; finalPrice may be empty.
func SeedOrderItem(t *testing.T, db *sql.DB, orderID uuid.UUID, name, price, finalPrice string, quantity int) uuid.UUID {
	t.Helper()

	var final any
	if finalPrice != "" {
		final = domain.MustParseMoney(finalPrice)
	}

	id := uuid.New()
	_, err := db.Exec(
		`INSERT INTO order_items (id, order_id, menu_item_name, price, final_price, quantity)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, orderID, name, domain.MustParseMoney(price), final, quantity,
	)
	if err != nil {
		t.Fatalf("seed order item: %v", err)
	}
	return id
}

// SeedPayment writes a payment row directly, bypassing every guard.
func SeedPayment(t *testing.T, db *sql.DB, orderID uuid.UUID, amount string, method domain.PaymentMethod) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(
		`INSERT INTO payments (id, order_id, amount, payment_method) VALUES ($1, $2, $3, $4)`,
		id, orderID, domain.MustParseMoney(amount), method,
	)
	if err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	return id
}

func SoftDeletePayment(t *testing.T, db *sql.DB, paymentID uuid.UUID) {
	t.Helper()

	if _, err := db.Exec(`UPDATE payments SET deleted_at = now() WHERE id = $1`, paymentID); err != nil {
		t.Fatalf("soft delete payment: %v", err)
	}
}

func GetOrder(t *testing.T, db *sql.DB, orderID uuid.UUID) *domain.Order {
	t.Helper()

	o, err := repository.NewOrderRepository(db).GetByID(context.Background(), orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	return o
}

func CountPayments(t *testing.T, db *sql.DB, orderID uuid.UUID) int {
	t.Helper()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM payments WHERE order_id = $1`, orderID).Scan(&n); err != nil {
		t.Fatalf("count payments: %v", err)
	}
	return n
}

func CountRefunds(t *testing.T, db *sql.DB, orderID uuid.UUID) int {
	t.Helper()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM refunds WHERE order_id = $1`, orderID).Scan(&n); err != nil {
		t.Fatalf("count refunds: %v", err)
	}
	return n
}

// NetPaid sums the stored ledger for orderID.
func NetPaid(t *testing.T, db *sql.DB, orderID uuid.UUID) domain.Money {
	t.Helper()

	var net domain.Money
	err := db.QueryRow(
		`SELECT
			COALESCE((SELECT SUM(amount) FROM payments WHERE order_id = $1 AND deleted_at IS NULL), 0) -
			COALESCE((SELECT SUM(amount) FROM refunds WHERE order_id = $1), 0)`,
		orderID,
	).Scan(&net)
	if err != nil {
		t.Fatalf("net paid: %v", err)
	}
	return net
}
