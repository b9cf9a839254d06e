package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/josh-kwaku/pos-ledger/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type overpaymentDetails struct {
	Remaining domain.Money `json:"remaining"`
	Attempted domain.Money `json:"attempted"`
}

type splitExceedsDetails struct {
	SplitTotal domain.Money `json:"split_total"`
	Remaining  domain.Money `json:"remaining"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

func RespondDomainError(w http.ResponseWriter, err error) {
	var (
		appErr   *AppError
		details  any
		over     *domain.OverpaymentError
		exceeded *domain.SplitExceedsRemainingError
	)

	switch {
	case errors.As(err, &over):
		appErr = ErrOverpayment
		details = overpaymentDetails{Remaining: over.Remaining, Attempted: over.Attempted}
	case errors.As(err, &exceeded):
		appErr = ErrSplitExceedsRemaining
		details = splitExceedsDetails{SplitTotal: exceeded.SplitTotal, Remaining: exceeded.Remaining}
	case errors.Is(err, domain.ErrOrderNotFound):
		appErr = ErrOrderNotFound
	case errors.Is(err, domain.ErrNotFound):
		appErr = ErrResourceNotFound
	case errors.Is(err, domain.ErrPermissionDenied):
		appErr = ErrPermissionDenied
	case errors.Is(err, domain.ErrOrderCancelled):
		appErr = ErrOrderCancelled
	case errors.Is(err, domain.ErrInsufficientTender):
		appErr = ErrInsufficientTender
	case errors.Is(err, domain.ErrTenderNotAllowed):
		appErr = ErrTenderNotAllowed
	case errors.Is(err, domain.ErrRefundExceedsBalance):
		appErr = ErrRefundExceedsBalance
	case errors.Is(err, domain.ErrInvalidAmount):
		appErr = ErrInvalidAmount
	case errors.Is(err, domain.ErrInvalidPaymentMethod):
		appErr = ErrInvalidPaymentMethod
	case errors.Is(err, domain.ErrInvalidSplitType):
		appErr = ErrInvalidSplitType
	case errors.Is(err, domain.ErrInvalidGuestNumber):
		appErr = ErrInvalidGuestNumber
	case errors.Is(err, domain.ErrInvalidGuestCount),
		errors.Is(err, domain.ErrItemAssignmentsRequired),
		errors.Is(err, domain.ErrCustomAmountsRequired),
		errors.Is(err, domain.ErrInvalidCustomAmount),
		errors.Is(err, domain.ErrInvalidGuestKey):
		appErr = ErrInvalidSplitInput
	case errors.Is(err, domain.ErrInvalidOrderReference):
		appErr = ErrInvalidOrderReference
	case errors.Is(err, domain.ErrInvalidRequest):
		appErr = ErrInvalidRequest
	case errors.Is(err, domain.ErrValidation):
		appErr = ErrValidationFailed
	default:
		slog.Error("unhandled domain error", "error", err)
		appErr = ErrInternalError
	}

	RespondAppError(w, appErr, details)
}
