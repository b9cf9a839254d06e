package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the settlement services matches exactly
// one of these via errors.Is; KindOf reports which.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("validation failed")
	ErrInternal         = errors.New("internal error")
)

var (
	ErrOrderNotFound = fmt.Errorf("order %w", ErrNotFound)

	ErrOrderCancelled          = validation("cannot record payment on a cancelled order")
	ErrInvalidAmount           = validation("amount must be greater than zero")
	ErrInvalidPaymentMethod    = validation("invalid payment method")
	ErrInsufficientTender      = validation("amount tendered is less than the payment amount")
	ErrTenderNotAllowed        = validation("amount tendered is only allowed for cash payments")
	ErrOverpayment             = validation("payment exceeds remaining balance")
	ErrRefundExceedsBalance    = validation("refund exceeds refundable balance")
	ErrInvalidSplitType        = validation("invalid split type")
	ErrInvalidGuestCount       = validation("guest count must be at least 2")
	ErrItemAssignmentsRequired = validation("item assignments required")
	ErrCustomAmountsRequired   = validation("custom amounts required")
	ErrInvalidCustomAmount     = validation("custom amount is not a valid amount")
	ErrInvalidGuestKey         = validation("invalid guest key")
	ErrInvalidGuestNumber      = validation("guest number must be at least 1")
	ErrSplitExceedsRemaining   = validation("split total exceeds remaining balance")
	ErrInvalidOrderReference   = validation("invalid order reference")
	ErrInvalidRequest          = validation("invalid request")
)

func validation(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrValidation)
}

// OverpaymentError carries the balance the caller may still collect.
type OverpaymentError struct {
	Remaining Money
	Attempted Money
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment amount %s exceeds remaining balance %s", e.Attempted, e.Remaining)
}

func (e *OverpaymentError) Unwrap() error { return ErrOverpayment }

type SplitExceedsRemainingError struct {
	SplitTotal Money
	Remaining  Money
}

func (e *SplitExceedsRemainingError) Error() string {
	return fmt.Sprintf("split total %s exceeds remaining balance %s", e.SplitTotal, e.Remaining)
}

func (e *SplitExceedsRemainingError) Unwrap() error { return ErrSplitExceedsRemaining }

type ErrorKind string

const (
	KindNotFound         ErrorKind = "NOT_FOUND"
	KindPermissionDenied ErrorKind = "PERMISSION_DENIED"
	KindValidation       ErrorKind = "VALIDATION"
	KindInternal         ErrorKind = "INTERNAL"
)

func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, ErrValidation):
		return KindValidation
	default:
		return KindInternal
	}
}
