package settlement

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/pos-ledger/internal/domain"
)

type fakeOrders struct {
	storeID  uuid.UUID
	err      error
	items    []domain.OrderItem
	markedAs *domain.OrderStatus
	paidAt   time.Time
}

func (f *fakeOrders) GetStoreID(_ context.Context, _ uuid.UUID) (uuid.UUID, error) {
	return f.storeID, f.err
}

func (f *fakeOrders) MarkPaid(_ context.Context, _ *sql.Tx, _ uuid.UUID, status domain.OrderStatus, paidAt time.Time) error {
	f.markedAs = &status
	f.paidAt = paidAt
	return nil
}

func (f *fakeOrders) ListItems(_ context.Context, _ uuid.UUID) ([]domain.OrderItem, error) {
	return f.items, nil
}

// fakeLedger serves snapshot to pre-transaction reads and locked, when set,
// to reads taken under the row lock.
type fakeLedger struct {
	snapshot  *domain.Ledger
	locked    *domain.Ledger
	snapshots int
}

func (f *fakeLedger) Snapshot(_ context.Context, _ uuid.UUID) (*domain.Ledger, error) {
	f.snapshots++
	return f.snapshot, nil
}

func (f *fakeLedger) SnapshotForUpdate(_ context.Context, _ *sql.Tx, _ uuid.UUID) (*domain.Ledger, error) {
	if f.locked != nil {
		return f.locked, nil
	}
	return f.snapshot, nil
}

type fakePayments struct {
	created []*domain.Payment
	err     error
}

func (f *fakePayments) Create(_ context.Context, _ *sql.Tx, p *domain.Payment) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, p)
	return nil
}

func (f *fakePayments) ListActiveByOrderID(_ context.Context, _ uuid.UUID) ([]domain.Payment, error) {
	out := make([]domain.Payment, 0, len(f.created))
	for _, p := range f.created {
		out = append(out, *p)
	}
	return out, nil
}

type fakeRefunds struct {
	created []*domain.Refund
}

func (f *fakeRefunds) Create(_ context.Context, _ *sql.Tx, r *domain.Refund) error {
	f.created = append(f.created, r)
	return nil
}

func (f *fakeRefunds) ListByOrderID(_ context.Context, _ uuid.UUID) ([]domain.Refund, error) {
	return nil, nil
}

type fakeAuthz struct {
	err     error
	allowed []domain.Role
}

func (f *fakeAuthz) Check(_ context.Context, _, _ uuid.UUID, allowed ...domain.Role) error {
	f.allowed = allowed
	return f.err
}

type fakeAudit struct {
	events []*domain.AuditEvent
	err    error
}

func (f *fakeAudit) Record(_ context.Context, e *domain.AuditEvent) error {
	f.events = append(f.events, e)
	return f.err
}

type fakeTx struct {
	runs int
}

func (f *fakeTx) RunInTx(_ context.Context, _ *sql.TxOptions, fn func(*sql.Tx) error) error {
	f.runs++
	return fn(nil)
}

type harness struct {
	svc      *Service
	orders   *fakeOrders
	ledger   *fakeLedger
	payments *fakePayments
	refunds  *fakeRefunds
	authz    *fakeAuthz
	audit    *fakeAudit
	tx       *fakeTx
}

func newHarness(l *domain.Ledger) *harness {
	h := &harness{
		orders:   &fakeOrders{storeID: uuid.New()},
		ledger:   &fakeLedger{snapshot: l},
		payments: &fakePayments{},
		refunds:  &fakeRefunds{},
		authz:    &fakeAuthz{},
		audit:    &fakeAudit{},
		tx:       &fakeTx{},
	}
	h.svc = NewService(h.orders, h.ledger, h.payments, h.refunds, h.authz, h.audit, h.tx)
	return h
}

func TestRecordPayment_SettlesServedOrder(t *testing.T) {
	h := newHarness(ledgerWith("100.00", domain.OrderStatusServed, []string{"60.00"}, nil))

	p, err := h.svc.RecordPayment(context.Background(), RecordPaymentRequest{
		ActorID: uuid.New(),
		OrderID: uuid.New(),
		Amount:  money("40.00"),
		Method:  domain.PaymentMethodCreditCard,
	})

	require.NoError(t, err)
	assert.Len(t, h.payments.created, 1)
	assert.Nil(t, p.Change)
	require.NotNil(t, h.orders.markedAs)
	assert.Equal(t, domain.OrderStatusCompleted, *h.orders.markedAs)
	assert.False(t, h.orders.paidAt.IsZero())
	assert.ElementsMatch(t, paymentRoles, h.authz.allowed)
}

func TestRecordPayment_FullPaymentKeepsNonServedStatus(t *testing.T) {
	h := newHarness(ledgerWith("30.00", domain.OrderStatusReady, nil, nil))

	_, err := h.svc.RecordPayment(context.Background(), RecordPaymentRequest{
		ActorID: uuid.New(),
		OrderID: uuid.New(),
		Amount:  money("30.00"),
		Method:  domain.PaymentMethodCash,
	})

	require.NoError(t, err)
	require.NotNil(t, h.orders.markedAs)
	assert.Equal(t, domain.OrderStatusReady, *h.orders.markedAs)
}

func TestRecordPayment_PartialPaymentLeavesOrderAlone(t *testing.T) {
	h := newHarness(ledgerWith("100.00", domain.OrderStatusServed, nil, nil))

	p, err := h.svc.RecordPayment(context.Background(), RecordPaymentRequest{
		ActorID:        uuid.New(),
		OrderID:        uuid.New(),
		Amount:         money("60.00"),
		Method:         domain.PaymentMethodCash,
		AmountTendered: moneyPtr("60.00"),
	})

	require.NoError(t, err)
	require.NotNil(t, p.Change)
	assert.True(t, p.Change.IsZero())
	assert.Nil(t, h.orders.markedAs)
}

func TestRecordPayment_MissingOrderIsNotFoundBeforeAuthorization(t *testing.T) {
	h := newHarness(nil)
	h.orders.err = domain.ErrOrderNotFound

	_, err := h.svc.RecordPayment(context.Background(), RecordPaymentRequest{
		ActorID: uuid.New(), OrderID: uuid.New(), Amount: money("1"), Method: domain.PaymentMethodCash,
	})

	require.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.Nil(t, h.authz.allowed)
	assert.Zero(t, h.ledger.snapshots)
}

func TestRecordPayment_DeniedBeforeLedgerRead(t *testing.T) {
	h := newHarness(ledgerWith("100.00", domain.OrderStatusServed, nil, nil))
	h.authz.err = domain.ErrPermissionDenied

	_, err := h.svc.RecordPayment(context.Background(), RecordPaymentRequest{
		ActorID: uuid.New(), OrderID: uuid.New(), Amount: money("1"), Method: domain.PaymentMethodCash,
	})

	require.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Zero(t, h.ledger.snapshots)
	assert.Zero(t, h.tx.runs)
}

// A concurrent payment lands between the snapshot and the lock.
func TestRecordPayment_RevalidatesUnderLock(t *testing.T) {
	h := newHarness(ledgerWith("100.00", domain.OrderStatusServed, []string{"50.00"}, nil))
	h.ledger.locked = ledgerWith("100.00", domain.OrderStatusServed, []string{"50.00", "40.00"}, nil)

	_, err := h.svc.RecordPayment(context.Background(), RecordPaymentRequest{
		ActorID: uuid.New(), OrderID: uuid.New(), Amount: money("50.00"), Method: domain.PaymentMethodCreditCard,
	})

	var over *domain.OverpaymentError
	require.True(t, errors.As(err, &over))
	assert.Equal(t, "10", over.Remaining.String())
	assert.Empty(t, h.payments.created)
	assert.Nil(t, h.orders.markedAs)
}

func TestRecordPayment_PersistenceFailureIsInternal(t *testing.T) {
	h := newHarness(ledgerWith("100.00", domain.OrderStatusServed, nil, nil))
	h.payments.err = errors.New("connection reset")

	_, err := h.svc.RecordPayment(context.Background(), RecordPaymentRequest{
		ActorID: uuid.New(), OrderID: uuid.New(), Amount: money("100.00"), Method: domain.PaymentMethodCash,
	})

	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Nil(t, h.orders.markedAs)
}

func TestRecordSplitPayment_TagsPayment(t *testing.T) {
	h := newHarness(ledgerWith("90.00", domain.OrderStatusServed, nil, nil))
	meta := json.RawMessage(`{"guestCount":3}`)

	p, err := h.svc.RecordSplitPayment(context.Background(), RecordSplitPaymentRequest{
		ActorID:       uuid.New(),
		OrderID:       uuid.New(),
		Amount:        money("30.00"),
		Method:        domain.PaymentMethodDebitCard,
		SplitType:     domain.SplitTypeEven,
		GuestNumber:   2,
		SplitMetadata: meta,
	})

	require.NoError(t, err)
	require.NotNil(t, p.Notes)
	assert.Equal(t, "Split payment - Guest 2", *p.Notes)
	require.NotNil(t, p.GuestNumber)
	assert.Equal(t, 2, *p.GuestNumber)
	require.NotNil(t, p.SplitType)
	assert.Equal(t, domain.SplitTypeEven, *p.SplitType)
	assert.JSONEq(t, string(meta), string(p.SplitMetadata))
}

func TestRecordSplitPayment_StalePreviewCannotOverpay(t *testing.T) {
	h := newHarness(ledgerWith("90.00", domain.OrderStatusServed, []string{"30.00", "30.00", "20.00"}, nil))

	_, err := h.svc.RecordSplitPayment(context.Background(), RecordSplitPaymentRequest{
		ActorID:     uuid.New(),
		OrderID:     uuid.New(),
		Amount:      money("30.00"),
		Method:      domain.PaymentMethodCash,
		SplitType:   domain.SplitTypeEven,
		GuestNumber: 3,
	})

	require.ErrorIs(t, err, domain.ErrOverpayment)
	assert.Empty(t, h.payments.created)
}

func TestCreateRefund_RecordsAuditEvent(t *testing.T) {
	h := newHarness(ledgerWith("100.00", domain.OrderStatusCompleted, []string{"100.00"}, nil))
	actor := uuid.New()
	orderID := uuid.New()
	reason := "cold soup"

	rf, err := h.svc.CreateRefund(context.Background(), CreateRefundRequest{
		ActorID: actor,
		OrderID: orderID,
		Amount:  money("25.00"),
		Reason:  &reason,
	})

	require.NoError(t, err)
	require.NotNil(t, rf.RefundedBy)
	assert.Equal(t, actor.String(), *rf.RefundedBy)
	assert.ElementsMatch(t, refundRoles, h.authz.allowed)
	assert.Nil(t, h.orders.markedAs)

	require.Len(t, h.audit.events, 1)
	ev := h.audit.events[0]
	assert.Equal(t, domain.AuditActionRefundCreated, ev.Action)
	assert.Equal(t, h.orders.storeID, ev.StoreID)
	assert.Equal(t, actor, ev.UserID)
	assert.Equal(t, rf.ID, ev.EntityID)
	assert.JSONEq(t, `{"orderId":"`+orderID.String()+`","amount":"25","reason":"cold soup"}`, string(ev.Details))
}

func TestCreateRefund_AuditFailureDoesNotFailRefund(t *testing.T) {
	h := newHarness(ledgerWith("100.00", domain.OrderStatusCompleted, []string{"100.00"}, nil))
	h.audit.err = errors.New("audit store down")

	rf, err := h.svc.CreateRefund(context.Background(), CreateRefundRequest{
		ActorID: uuid.New(), OrderID: uuid.New(), Amount: money("10.00"),
	})

	require.NoError(t, err)
	assert.NotNil(t, rf)
	assert.Len(t, h.refunds.created, 1)
}

func TestCreateRefund_RevalidatesUnderLock(t *testing.T) {
	h := newHarness(ledgerWith("100.00", domain.OrderStatusCompleted, []string{"100.00"}, nil))
	h.ledger.locked = ledgerWith("100.00", domain.OrderStatusCompleted, []string{"100.00"}, []string{"90.00"})

	_, err := h.svc.CreateRefund(context.Background(), CreateRefundRequest{
		ActorID: uuid.New(), OrderID: uuid.New(), Amount: money("20.00"),
	})

	require.ErrorIs(t, err, domain.ErrRefundExceedsBalance)
	assert.Empty(t, h.refunds.created)
	assert.Empty(t, h.audit.events)
}

func TestCalculateSplit_AllowsServers(t *testing.T) {
	h := newHarness(ledgerWith("100.00", domain.OrderStatusServed, nil, nil))

	res, err := h.svc.CalculateSplit(context.Background(), SplitRequest{
		ActorID: uuid.New(), OrderID: uuid.New(), SplitType: domain.SplitTypeEven, GuestCount: 2,
	})

	require.NoError(t, err)
	assert.Contains(t, h.authz.allowed, domain.RoleServer)
	assert.Len(t, res.Splits, 2)
	assert.Zero(t, h.tx.runs)
}

func TestGetPaymentSummary(t *testing.T) {
	h := newHarness(ledgerWith("100.00", domain.OrderStatusCompleted, []string{"100.00"}, []string{"25.00"}))

	s, err := h.svc.GetPaymentSummary(context.Background(), uuid.New(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, "75", s.NetPaid.String())
	assert.Equal(t, "25", s.RemainingBalance.String())
	assert.False(t, s.IsFullyPaid)
}
