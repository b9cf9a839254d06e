package settlement

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/pos-ledger/internal/domain"
)

func money(s string) domain.Money { return domain.MustParseMoney(s) }

func moneyPtr(s string) *domain.Money {
	m := domain.MustParseMoney(s)
	return &m
}

func ledgerWith(grandTotal string, status domain.OrderStatus, paid []string, refunded []string) *domain.Ledger {
	l := &domain.Ledger{
		Order: domain.Order{ID: uuid.New(), Status: status, GrandTotal: money(grandTotal)},
	}
	for _, p := range paid {
		l.Payments = append(l.Payments, domain.Payment{ID: uuid.New(), Amount: money(p)})
	}
	for _, r := range refunded {
		l.Refunds = append(l.Refunds, domain.Refund{ID: uuid.New(), Amount: money(r)})
	}
	return l
}

func TestValidatePayment(t *testing.T) {
	tests := []struct {
		name       string
		ledger     *domain.Ledger
		amount     string
		method     domain.PaymentMethod
		tendered   *domain.Money
		wantErr    error
		wantChange *domain.Money
	}{
		{
			name:       "cash with exact tender has zero change",
			ledger:     ledgerWith("100.00", domain.OrderStatusServed, nil, nil),
			amount:     "60.00",
			method:     domain.PaymentMethodCash,
			tendered:   moneyPtr("60.00"),
			wantChange: moneyPtr("0"),
		},
		{
			name:       "cash with larger tender returns change",
			ledger:     ledgerWith("100.00", domain.OrderStatusServed, nil, nil),
			amount:     "47.50",
			method:     domain.PaymentMethodCash,
			tendered:   moneyPtr("50.00"),
			wantChange: moneyPtr("2.50"),
		},
		{
			name:   "cash without tender has no change",
			ledger: ledgerWith("100.00", domain.OrderStatusServed, nil, nil),
			amount: "10.00",
			method: domain.PaymentMethodCash,
		},
		{
			name:   "card settling the balance exactly",
			ledger: ledgerWith("100.00", domain.OrderStatusServed, []string{"60.00"}, nil),
			amount: "40.00",
			method: domain.PaymentMethodCreditCard,
		},
		{
			name:     "insufficient tender",
			ledger:   ledgerWith("100.00", domain.OrderStatusServed, nil, nil),
			amount:   "47.50",
			method:   domain.PaymentMethodCash,
			tendered: moneyPtr("40.00"),
			wantErr:  domain.ErrInsufficientTender,
		},
		{
			name:     "tender on a card payment",
			ledger:   ledgerWith("100.00", domain.OrderStatusServed, nil, nil),
			amount:   "10.00",
			method:   domain.PaymentMethodDebitCard,
			tendered: moneyPtr("10.00"),
			wantErr:  domain.ErrTenderNotAllowed,
		},
		{
			name:    "overpayment",
			ledger:  ledgerWith("100.00", domain.OrderStatusServed, []string{"70.00"}, nil),
			amount:  "50.00",
			method:  domain.PaymentMethodCreditCard,
			wantErr: domain.ErrOverpayment,
		},
		{
			name:   "refunds reopen balance",
			ledger: ledgerWith("100.00", domain.OrderStatusCompleted, []string{"100.00"}, []string{"25.00"}),
			amount: "25.00",
			method: domain.PaymentMethodMobilePayment,
		},
		{
			name:    "cancelled order",
			ledger:  ledgerWith("100.00", domain.OrderStatusCancelled, nil, nil),
			amount:  "10.00",
			method:  domain.PaymentMethodCash,
			wantErr: domain.ErrOrderCancelled,
		},
		{
			name:    "cancelled wins over overpayment",
			ledger:  ledgerWith("10.00", domain.OrderStatusCancelled, nil, nil),
			amount:  "50.00",
			method:  domain.PaymentMethodCash,
			wantErr: domain.ErrOrderCancelled,
		},
		{
			name:    "zero amount",
			ledger:  ledgerWith("100.00", domain.OrderStatusServed, nil, nil),
			amount:  "0",
			method:  domain.PaymentMethodCash,
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			ledger:  ledgerWith("100.00", domain.OrderStatusServed, nil, nil),
			amount:  "-5",
			method:  domain.PaymentMethodCash,
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "unknown method",
			ledger:  ledgerWith("100.00", domain.OrderStatusServed, nil, nil),
			amount:  "5",
			method:  domain.PaymentMethod("BITCOIN"),
			wantErr: domain.ErrInvalidPaymentMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, err := validatePayment(tt.ledger, money(tt.amount), tt.method, tt.tendered)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, domain.KindValidation, domain.KindOf(err))
				return
			}
			require.NoError(t, err)
			if tt.wantChange == nil {
				assert.Nil(t, change)
				return
			}
			require.NotNil(t, change)
			assert.True(t, tt.wantChange.Equal(*change), "change = %s, want %s", change, tt.wantChange)
		})
	}
}

func TestValidatePayment_OverpaymentReportsRemaining(t *testing.T) {
	l := ledgerWith("100.00", domain.OrderStatusServed, []string{"70.00"}, nil)

	_, err := validatePayment(l, money("50.00"), domain.PaymentMethodCash, nil)

	var over *domain.OverpaymentError
	require.True(t, errors.As(err, &over))
	assert.Equal(t, "30", over.Remaining.String())
	assert.Equal(t, "50", over.Attempted.String())
}

func TestValidateRefund(t *testing.T) {
	tests := []struct {
		name    string
		ledger  *domain.Ledger
		amount  string
		wantErr error
	}{
		{
			name:   "partial refund",
			ledger: ledgerWith("100.00", domain.OrderStatusCompleted, []string{"100.00"}, nil),
			amount: "25.00",
		},
		{
			name:   "refund the rest",
			ledger: ledgerWith("100.00", domain.OrderStatusCompleted, []string{"60.00", "40.00"}, []string{"25.00"}),
			amount: "75.00",
		},
		{
			name:    "exceeds refundable",
			ledger:  ledgerWith("100.00", domain.OrderStatusCompleted, []string{"100.00"}, []string{"80.00"}),
			amount:  "20.01",
			wantErr: domain.ErrRefundExceedsBalance,
		},
		{
			name:    "nothing paid",
			ledger:  ledgerWith("100.00", domain.OrderStatusServed, nil, nil),
			amount:  "1",
			wantErr: domain.ErrRefundExceedsBalance,
		},
		{
			name:    "zero",
			ledger:  ledgerWith("100.00", domain.OrderStatusCompleted, []string{"100.00"}, nil),
			amount:  "0",
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "negative",
			ledger:  ledgerWith("100.00", domain.OrderStatusCompleted, []string{"100.00"}, nil),
			amount:  "-1",
			wantErr: domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRefund(tt.ledger, money(tt.amount))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateSplitPayment(t *testing.T) {
	tests := []struct {
		name    string
		req     RecordSplitPaymentRequest
		wantErr error
	}{
		{
			name: "valid",
			req:  RecordSplitPaymentRequest{SplitType: domain.SplitTypeEven, GuestNumber: 2},
		},
		{
			name: "valid with metadata",
			req:  RecordSplitPaymentRequest{SplitType: domain.SplitTypeCustom, GuestNumber: 1, SplitMetadata: []byte(`{"note":"birthday"}`)},
		},
		{
			name:    "unknown split type",
			req:     RecordSplitPaymentRequest{SplitType: "HALVES", GuestNumber: 1},
			wantErr: domain.ErrInvalidSplitType,
		},
		{
			name:    "guest zero",
			req:     RecordSplitPaymentRequest{SplitType: domain.SplitTypeEven, GuestNumber: 0},
			wantErr: domain.ErrInvalidGuestNumber,
		},
		{
			name:    "malformed metadata",
			req:     RecordSplitPaymentRequest{SplitType: domain.SplitTypeEven, GuestNumber: 1, SplitMetadata: []byte(`{`)},
			wantErr: domain.ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSplitPayment(tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
