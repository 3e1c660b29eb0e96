package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every error the services hand back to a handler wraps exactly
// one of these, so handlers can pick a status without knowing the details.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("downstream unavailable")
)

var (
	ErrInvalidReferralCode    = fmt.Errorf("%w: invalid code format", ErrValidation)
	ErrMissingIdentity        = fmt.Errorf("%w: first name and email are required", ErrValidation)
	ErrMissingPaymentID       = fmt.Errorf("%w: payment intent id is required", ErrValidation)
	ErrReferralCodeNotFound   = fmt.Errorf("%w: code not found", ErrNotFound)
	ErrRegistrationNotFound   = fmt.Errorf("%w: registration not found", ErrNotFound)
	ErrEmailAlreadyRegistered = fmt.Errorf("%w: email already registered", ErrConflict)
)

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
