package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken          = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken          = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidRequest        = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed      = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound      = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrPermissionDenied      = &AppError{http.StatusForbidden, "PERMISSION_DENIED", "You do not have permission to perform this action"}
	ErrInternalError         = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}
	ErrMissingIdempotencyKey = &AppError{http.StatusBadRequest, "MISSING_IDEMPOTENCY_KEY", "Idempotency-Key header is required"}
	ErrIdempotencyConflict   = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
	ErrIdempotencyInProgress = &AppError{http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "A request with this idempotency key is still being processed"}

	ErrOrderNotFound         = &AppError{http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found"}
	ErrInvalidAmount         = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
	ErrInvalidPaymentMethod  = &AppError{http.StatusBadRequest, "INVALID_PAYMENT_METHOD", "Payment method must be CASH, CREDIT_CARD, DEBIT_CARD, MOBILE_PAYMENT or OTHER"}
	ErrInvalidSplitType      = &AppError{http.StatusBadRequest, "INVALID_SPLIT_TYPE", "Split type must be EVEN, BY_ITEM or CUSTOM"}
	ErrInvalidSplitInput     = &AppError{http.StatusBadRequest, "INVALID_SPLIT_INPUT", "Split input is missing or malformed"}
	ErrInvalidGuestNumber    = &AppError{http.StatusBadRequest, "INVALID_GUEST_NUMBER", "Guest number must be at least 1"}
	ErrOrderCancelled        = &AppError{http.StatusUnprocessableEntity, "ORDER_CANCELLED", "Cannot record payment on a cancelled order"}
	ErrOverpayment           = &AppError{http.StatusUnprocessableEntity, "OVERPAYMENT", "Payment exceeds remaining balance"}
	ErrInsufficientTender    = &AppError{http.StatusUnprocessableEntity, "INSUFFICIENT_TENDER", "Amount tendered is less than the payment amount"}
	ErrTenderNotAllowed      = &AppError{http.StatusUnprocessableEntity, "TENDER_NOT_ALLOWED", "Amount tendered is only accepted for cash payments"}
	ErrRefundExceedsBalance  = &AppError{http.StatusUnprocessableEntity, "REFUND_EXCEEDS_BALANCE", "Refund exceeds refundable balance"}
	ErrSplitExceedsRemaining = &AppError{http.StatusUnprocessableEntity, "SPLIT_EXCEEDS_REMAINING", "Split total exceeds remaining balance"}
	ErrInvalidOrderReference = &AppError{http.StatusUnprocessableEntity, "INVALID_ORDER_REFERENCE", "Invalid order reference"}
)
