package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCorrelation  = errors.New("correlation fault")
	ErrInvalidInput = errors.New("invalid input")
)

// BackendError is a non-2xx answer from a backend. Body is kept verbatim.
type BackendError struct {
	Service string
	Status  int
	Body    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.Status, e.Body)
}

// InfraError means no structured answer was received: connection failure,
// timeout, undecodable body or an open circuit.
type InfraError struct {
	Service string
	Err     error
}

func (e *InfraError) Error() string { return e.Service + ": " + e.Err.Error() }
func (e *InfraError) Unwrap() error { return e.Err }

type CorrelationError struct {
	TicketUID    string
	FlightNumber string
}

func (e *CorrelationError) Error() string {
	return fmt.Sprintf("ticket %s references unknown flight %s", e.TicketUID, e.FlightNumber)
}

func (e *CorrelationError) Is(target error) bool { return target == ErrCorrelation }

// Invalid wraps ErrInvalidInput with a client-facing reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
