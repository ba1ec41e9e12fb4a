package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services, repositories, and delivery.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("forbidden")
	ErrSlotFull           = errors.New("time slot is fully booked")
	ErrTableConflict      = errors.New("table already reserved for this time slot")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrDuplicateUsername  = errors.New("username already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ErrTableTaken is returned by a ReservationRepository when an insert loses the race for a
// (time_slot, table_number) pair. Services retry on it; it never reaches API callers.
var ErrTableTaken = errors.New("table taken")

// ValidationError reports a malformed or missing request field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError returns a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrInvalidInput) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
