package domain

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrAlreadyCancelled = fmt.Errorf("booking is already cancelled: %w", ErrConflict)
	ErrPaymentDeclined  = errors.New("payment verification failed at bank gateway")
	// ErrPaymentVoidRequired marks a booking whose payment was accepted but
	// whose seats were taken before the commit. The payment has to be voided.
	ErrPaymentVoidRequired = errors.New("payment accepted but booking not committed")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrForbidden           = errors.New("forbidden")
)

type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// SeatConflictError names the seats that are already held on a schedule.
type SeatConflictError struct {
	Seats []string
	// AfterPayment is set when the conflict was detected at commit time,
	// after the payment had been accepted.
	AfterPayment bool
	PaymentID    string
}

func (e *SeatConflictError) Error() string {
	msg := fmt.Sprintf("seats %s are already booked", strings.Join(e.Seats, ", "))
	if e.AfterPayment {
		msg += fmt.Sprintf("; payment %s must be voided", e.PaymentID)
	}
	return msg
}

func (e *SeatConflictError) Is(target error) bool {
	if target == ErrConflict {
		return true
	}
	return e.AfterPayment && target == ErrPaymentVoidRequired
}

// StatusCode maps an error onto the gRPC code used by every transport.
func StatusCode(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, ErrValidation):
		return codes.InvalidArgument
	case errors.Is(err, ErrNotFound):
		return codes.NotFound
	case errors.Is(err, ErrPaymentVoidRequired):
		return codes.Aborted
	case errors.Is(err, ErrConflict):
		return codes.AlreadyExists
	case errors.Is(err, ErrPaymentDeclined):
		return codes.FailedPrecondition
	case errors.Is(err, ErrUnauthenticated):
		return codes.Unauthenticated
	case errors.Is(err, ErrForbidden):
		return codes.PermissionDenied
	default:
		return codes.Internal
	}
}
