package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "CASH"
	PaymentMethodCreditCard    PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard     PaymentMethod = "DEBIT_CARD"
	PaymentMethodMobilePayment PaymentMethod = "MOBILE_PAYMENT"
	PaymentMethodOther         PaymentMethod = "OTHER"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodDebitCard,
		PaymentMethodMobilePayment, PaymentMethodOther:
		return true
	}
	return false
}

type Payment struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	Amount         Money
	PaymentMethod  PaymentMethod
	AmountTendered *Money
	Change         *Money
	TransactionID  *string
	Notes          *string
	SplitType      *SplitType
	SplitMetadata  json.RawMessage
	GuestNumber    *int
	DeletedAt      *time.Time
	CreatedAt      time.Time
}

type Refund struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	Amount     Money
	Reason     *string
	RefundedBy *string
	CreatedAt  time.Time
}
