package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLedgerSummary(t *testing.T) {
	deleted := time.Now()

	tests := []struct {
		name          string
		ledger        Ledger
		wantPaid      string
		wantRefunded  string
		wantNet       string
		wantRemaining string
		wantFullyPaid bool
	}{
		{
			name:          "nothing paid",
			ledger:        Ledger{Order: Order{GrandTotal: MustParseMoney("100.00")}},
			wantPaid:      "0",
			wantRefunded:  "0",
			wantNet:       "0",
			wantRemaining: "100",
		},
		{
			name: "settled",
			ledger: Ledger{
				Order:    Order{GrandTotal: MustParseMoney("100.00")},
				Payments: []Payment{{Amount: MustParseMoney("60.00")}, {Amount: MustParseMoney("40.00")}},
			},
			wantPaid:      "100",
			wantRefunded:  "0",
			wantNet:       "100",
			wantRemaining: "0",
			wantFullyPaid: true,
		},
		{
			name: "refund reopens balance",
			ledger: Ledger{
				Order:    Order{GrandTotal: MustParseMoney("100.00")},
				Payments: []Payment{{Amount: MustParseMoney("100.00")}},
				Refunds:  []Refund{{Amount: MustParseMoney("25.00")}},
			},
			wantPaid:      "100",
			wantRefunded:  "25",
			wantNet:       "75",
			wantRemaining: "25",
		},
		{
			name: "soft-deleted payments are excluded",
			ledger: Ledger{
				Order: Order{GrandTotal: MustParseMoney("50")},
				Payments: []Payment{
					{Amount: MustParseMoney("20")},
					{Amount: MustParseMoney("30"), DeletedAt: &deleted},
				},
			},
			wantPaid:      "20",
			wantRefunded:  "0",
			wantNet:       "20",
			wantRemaining: "30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.ledger.Summary()
			assert.Equal(t, tt.wantPaid, s.TotalPaid.String())
			assert.Equal(t, tt.wantRefunded, s.TotalRefunded.String())
			assert.Equal(t, tt.wantNet, s.NetPaid.String())
			assert.Equal(t, tt.wantRemaining, s.RemainingBalance.String())
			assert.Equal(t, tt.wantFullyPaid, s.IsFullyPaid)

			assert.True(t, s.RemainingBalance.Equal(s.GrandTotal.Sub(s.NetPaid)))
			assert.Equal(t, s.NetPaid.Equal(s.GrandTotal), s.IsFullyPaid)
			assert.True(t, tt.ledger.RemainingBalance().Equal(s.RemainingBalance))
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(ErrOrderNotFound))
	assert.Equal(t, KindValidation, KindOf(&OverpaymentError{}))
	assert.Equal(t, KindValidation, KindOf(&SplitExceedsRemainingError{}))
	assert.Equal(t, KindPermissionDenied, KindOf(ErrPermissionDenied))
	assert.Equal(t, KindInternal, KindOf(assert.AnError))
}
