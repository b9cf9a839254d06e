package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/josh-kwaku/pos-ledger/internal/auth"
	"github.com/josh-kwaku/pos-ledger/internal/domain"
	"github.com/josh-kwaku/pos-ledger/internal/logging"
	"github.com/josh-kwaku/pos-ledger/internal/service/settlement"
)

type settlementService interface {
	RecordPayment(ctx context.Context, req settlement.RecordPaymentRequest) (*domain.Payment, error)
	RecordSplitPayment(ctx context.Context, req settlement.RecordSplitPaymentRequest) (*domain.Payment, error)
	CreateRefund(ctx context.Context, req settlement.CreateRefundRequest) (*domain.Refund, error)
	CalculateSplit(ctx context.Context, req settlement.SplitRequest) (*domain.SplitResult, error)
	GetPaymentSummary(ctx context.Context, actorID, orderID uuid.UUID) (*domain.PaymentSummary, error)
	ListPayments(ctx context.Context, actorID, orderID uuid.UUID) ([]domain.Payment, error)
	ListRefunds(ctx context.Context, actorID, orderID uuid.UUID) ([]domain.Refund, error)
}

type SettlementHandler struct {
	settlement settlementService
}

func NewSettlementHandler(svc settlementService) *SettlementHandler {
	return &SettlementHandler{settlement: svc}
}

// Mount registers the order-scoped ledger routes on r.
func (h *SettlementHandler) Mount(r chi.Router) {
	r.Route("/orders/{orderID}", func(r chi.Router) {
		r.Post("/payments", h.RecordPayment)
		r.Get("/payments", h.ListPayments)
		r.Post("/refunds", h.CreateRefund)
		r.Get("/refunds", h.ListRefunds)
		r.Get("/payment-summary", h.GetSummary)
		r.Post("/split-calculation", h.CalculateSplit)
		r.Post("/split-payments", h.RecordSplitPayment)
	})
}

type recordPaymentRequest struct {
	Amount         *domain.Money `json:"amount"`
	PaymentMethod  string        `json:"payment_method"`
	AmountTendered *domain.Money `json:"amount_tendered"`
	TransactionID  *string       `json:"transaction_id"`
	Notes          *string       `json:"notes"`
}

func (r recordPaymentRequest) Validate() []FieldError {
	var errs []FieldError
	errs = append(errs, validateAmount("amount", r.Amount)...)
	errs = append(errs, validateMethod(r.PaymentMethod)...)
	return errs
}

type recordSplitPaymentRequest struct {
	Amount         *domain.Money   `json:"amount"`
	PaymentMethod  string          `json:"payment_method"`
	SplitType      string          `json:"split_type"`
	GuestNumber    int             `json:"guest_number"`
	AmountTendered *domain.Money   `json:"amount_tendered"`
	SplitMetadata  json.RawMessage `json:"split_metadata"`
	TransactionID  *string         `json:"transaction_id"`
}

func (r recordSplitPaymentRequest) Validate() []FieldError {
	var errs []FieldError
	errs = append(errs, validateAmount("amount", r.Amount)...)
	errs = append(errs, validateMethod(r.PaymentMethod)...)
	errs = append(errs, validateSplitType(r.SplitType)...)
	if r.GuestNumber < 1 {
		errs = append(errs, FieldError{Field: "guest_number", Message: "must be at least 1"})
	}
	return errs
}

type createRefundRequest struct {
	Amount     *domain.Money `json:"amount"`
	Reason     *string       `json:"reason"`
	RefundedBy *string       `json:"refunded_by"`
}

func (r createRefundRequest) Validate() []FieldError {
	return validateAmount("amount", r.Amount)
}

type splitCalculationRequest struct {
	SplitType       string                 `json:"split_type"`
	GuestCount      int                    `json:"guest_count"`
	ItemAssignments map[string][]uuid.UUID `json:"item_assignments"`
	CustomAmounts   []string               `json:"custom_amounts"`
}

func (r splitCalculationRequest) Validate() []FieldError {
	return validateSplitType(r.SplitType)
}

func validateAmount(field string, m *domain.Money) []FieldError {
	if m == nil {
		return []FieldError{{Field: field, Message: "required"}}
	}
	if !m.IsPositive() {
		return []FieldError{{Field: field, Message: "must be greater than 0"}}
	}
	return nil
}

func validateMethod(method string) []FieldError {
	if method == "" {
		return []FieldError{{Field: "payment_method", Message: "required"}}
	}
	if !domain.PaymentMethod(method).IsValid() {
		return []FieldError{{Field: "payment_method", Message: "must be CASH, CREDIT_CARD, DEBIT_CARD, MOBILE_PAYMENT, or OTHER"}}
	}
	return nil
}

func validateSplitType(splitType string) []FieldError {
	if splitType == "" {
		return []FieldError{{Field: "split_type", Message: "required"}}
	}
	if !domain.SplitType(splitType).IsValid() {
		return []FieldError{{Field: "split_type", Message: "must be EVEN, BY_ITEM, or CUSTOM"}}
	}
	return nil
}

type paymentDTO struct {
	ID             uuid.UUID       `json:"id"`
	OrderID        uuid.UUID       `json:"order_id"`
	Amount         domain.Money    `json:"amount"`
	PaymentMethod  string          `json:"payment_method"`
	AmountTendered *domain.Money   `json:"amount_tendered"`
	Change         *domain.Money   `json:"change"`
	TransactionID  *string         `json:"transaction_id"`
	Notes          *string         `json:"notes"`
	SplitType      *string         `json:"split_type"`
	SplitMetadata  json.RawMessage `json:"split_metadata,omitempty"`
	GuestNumber    *int            `json:"guest_number"`
	CreatedAt      time.Time       `json:"created_at"`
}

func toPaymentDTO(p *domain.Payment) paymentDTO {
	dto := paymentDTO{
		ID:             p.ID,
		OrderID:        p.OrderID,
		Amount:         p.Amount,
		PaymentMethod:  string(p.PaymentMethod),
		AmountTendered: p.AmountTendered,
		Change:         p.Change,
		TransactionID:  p.TransactionID,
		Notes:          p.Notes,
		SplitMetadata:  p.SplitMetadata,
		GuestNumber:    p.GuestNumber,
		CreatedAt:      p.CreatedAt,
	}
	if p.SplitType != nil {
		st := string(*p.SplitType)
		dto.SplitType = &st
	}
	return dto
}

type refundDTO struct {
	ID         uuid.UUID    `json:"id"`
	OrderID    uuid.UUID    `json:"order_id"`
	Amount     domain.Money `json:"amount"`
	Reason     *string      `json:"reason"`
	RefundedBy *string      `json:"refunded_by"`
	CreatedAt  time.Time    `json:"created_at"`
}

func toRefundDTO(r *domain.Refund) refundDTO {
	return refundDTO{
		ID:         r.ID,
		OrderID:    r.OrderID,
		Amount:     r.Amount,
		Reason:     r.Reason,
		RefundedBy: r.RefundedBy,
		CreatedAt:  r.CreatedAt,
	}
}

type summaryDTO struct {
	GrandTotal       domain.Money `json:"grand_total"`
	TotalPaid        domain.Money `json:"total_paid"`
	TotalRefunded    domain.Money `json:"total_refunded"`
	NetPaid          domain.Money `json:"net_paid"`
	RemainingBalance domain.Money `json:"remaining_balance"`
	IsFullyPaid      bool         `json:"is_fully_paid"`
}

type guestSplitDTO struct {
	GuestNumber int          `json:"guest_number"`
	Amount      domain.Money `json:"amount"`
	ItemIDs     []uuid.UUID  `json:"item_ids,omitempty"`
}

type splitResultDTO struct {
	SplitType   string          `json:"split_type"`
	Splits      []guestSplitDTO `json:"splits"`
	Remaining   domain.Money    `json:"remaining"`
	AlreadyPaid domain.Money    `json:"already_paid"`
	GrandTotal  domain.Money    `json:"grand_total"`
}

func toSplitResultDTO(res *domain.SplitResult) splitResultDTO {
	dto := splitResultDTO{
		SplitType:   string(res.SplitType),
		Splits:      make([]guestSplitDTO, 0, len(res.Splits)),
		Remaining:   res.Remaining,
		AlreadyPaid: res.AlreadyPaid,
		GrandTotal:  res.GrandTotal,
	}
	for _, sp := range res.Splits {
		dto.Splits = append(dto.Splits, guestSplitDTO{GuestNumber: sp.GuestNumber, Amount: sp.Amount, ItemIDs: sp.ItemIDs})
	}
	return dto
}

// scope resolves the authenticated actor and the order in the path.
func scope(r *http.Request) (actorID, orderID uuid.UUID, appErr *AppError) {
	actorID, ok := auth.ActorIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, uuid.Nil, ErrMissingToken
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrOrderNotFound
	}
	return actorID, orderID, nil
}

func (h *SettlementHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	actorID, orderID, appErr := scope(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	p, err := h.settlement.RecordPayment(r.Context(), settlement.RecordPaymentRequest{
		ActorID:        actorID,
		OrderID:        orderID,
		Amount:         *req.Amount,
		Method:         domain.PaymentMethod(req.PaymentMethod),
		AmountTendered: req.AmountTendered,
		TransactionID:  req.TransactionID,
		Notes:          req.Notes,
	})
	if err != nil {
		log.Warn("payment recording failed", "order_id", orderID, "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/orders/%s/payments", orderID))
	RespondSuccess(w, http.StatusCreated, toPaymentDTO(p))
}

func (h *SettlementHandler) RecordSplitPayment(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	actorID, orderID, appErr := scope(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req recordSplitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	p, err := h.settlement.RecordSplitPayment(r.Context(), settlement.RecordSplitPaymentRequest{
		ActorID:        actorID,
		OrderID:        orderID,
		Amount:         *req.Amount,
		Method:         domain.PaymentMethod(req.PaymentMethod),
		SplitType:      domain.SplitType(req.SplitType),
		GuestNumber:    req.GuestNumber,
		AmountTendered: req.AmountTendered,
		SplitMetadata:  req.SplitMetadata,
		TransactionID:  req.TransactionID,
	})
	if err != nil {
		log.Warn("split payment recording failed", "order_id", orderID, "guest_number", req.GuestNumber, "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/orders/%s/payments", orderID))
	RespondSuccess(w, http.StatusCreated, toPaymentDTO(p))
}

func (h *SettlementHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	actorID, orderID, appErr := scope(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	payments, err := h.settlement.ListPayments(r.Context(), actorID, orderID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("payment listing failed", "order_id", orderID, "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]paymentDTO, 0, len(payments))
	for i := range payments {
		dtos = append(dtos, toPaymentDTO(&payments[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *SettlementHandler) CreateRefund(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	actorID, orderID, appErr := scope(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req createRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	rf, err := h.settlement.CreateRefund(r.Context(), settlement.CreateRefundRequest{
		ActorID:    actorID,
		OrderID:    orderID,
		Amount:     *req.Amount,
		Reason:     req.Reason,
		RefundedBy: req.RefundedBy,
	})
	if err != nil {
		log.Warn("refund failed", "order_id", orderID, "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/orders/%s/refunds", orderID))
	RespondSuccess(w, http.StatusCreated, toRefundDTO(rf))
}

func (h *SettlementHandler) ListRefunds(w http.ResponseWriter, r *http.Request) {
	actorID, orderID, appErr := scope(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	refunds, err := h.settlement.ListRefunds(r.Context(), actorID, orderID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("refund listing failed", "order_id", orderID, "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]refundDTO, 0, len(refunds))
	for i := range refunds {
		dtos = append(dtos, toRefundDTO(&refunds[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *SettlementHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	actorID, orderID, appErr := scope(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	s, err := h.settlement.GetPaymentSummary(r.Context(), actorID, orderID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("payment summary failed", "order_id", orderID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, summaryDTO{
		GrandTotal:       s.GrandTotal,
		TotalPaid:        s.TotalPaid,
		TotalRefunded:    s.TotalRefunded,
		NetPaid:          s.NetPaid,
		RemainingBalance: s.RemainingBalance,
		IsFullyPaid:      s.IsFullyPaid,
	})
}

func (h *SettlementHandler) CalculateSplit(w http.ResponseWriter, r *http.Request) {
	actorID, orderID, appErr := scope(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req splitCalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	res, err := h.settlement.CalculateSplit(r.Context(), settlement.SplitRequest{
		ActorID:         actorID,
		OrderID:         orderID,
		SplitType:       domain.SplitType(req.SplitType),
		GuestCount:      req.GuestCount,
		ItemAssignments: req.ItemAssignments,
		CustomAmounts:   req.CustomAmounts,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("split calculation failed", "order_id", orderID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toSplitResultDTO(res))
}
