package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusServed    OrderStatus = "SERVED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type Order struct {
	ID          uuid.UUID
	StoreID     uuid.UUID
	OrderNumber string
	Status      OrderStatus
	GrandTotal  Money
	PaidAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type OrderItem struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	MenuItemName string
	Price        Money
	FinalPrice   *Money
	Quantity     int
}

// LineTotal is (FinalPrice, falling back to Price) * Quantity.
func (i OrderItem) LineTotal() Money {
	unit := i.Price
	if i.FinalPrice != nil {
		unit = *i.FinalPrice
	}
	return unit.MulInt(int64(i.Quantity))
}
