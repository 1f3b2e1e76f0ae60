package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Error types for consistent error handling across the ledger core. All of
// them are local validation failures: recoverable by the caller, never fatal,
// and never leaving partial state behind.

// ErrNotFound indicates an unknown account or user.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates malformed input (non-positive amount, missing
// field, bad account type).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrInactive indicates an operation against a deactivated account or user.
type ErrInactive struct {
	Resource string
	ID       string
}

func (e *ErrInactive) Error() string {
	return fmt.Sprintf("%s is inactive: %s", e.Resource, e.ID)
}

// ErrInsufficientFunds indicates a withdrawal or transfer exceeding the
// available balance plus overdraft.
type ErrInsufficientFunds struct {
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds: available=%s required=%s", e.Available.StringFixed(2), e.Required.StringFixed(2))
}

// ErrDuplicate indicates a unique attribute that is already taken
// (username at registration).
type ErrDuplicate struct {
	Field string
	Value string
}

func (e *ErrDuplicate) Error() string {
	return fmt.Sprintf("duplicate %s: %s", e.Field, e.Value)
}

// ErrUnauthorized indicates invalid credentials or an invalid session token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrForbidden indicates the user lacks the role for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrCircuitOpen indicates the operation guard rejected the call because the
// breaker is open.
type ErrCircuitOpen struct {
	Operation string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for operation: %s", e.Operation)
}

// ErrOverloaded indicates the operation guard shed the call because too many
// mutations were already in flight.
type ErrOverloaded struct {
	Operation string
}

func (e *ErrOverloaded) Error() string {
	return fmt.Sprintf("too many requests in flight for operation: %s", e.Operation)
}

// IsDomainError reports whether err is one of the ledger's recoverable
// business failures, as opposed to an infrastructure fault. The operation
// guard uses it to keep business rejections from tripping the breaker.
func IsDomainError(err error) bool {
	switch err.(type) {
	case *ErrNotFound, *ErrValidation, *ErrInactive, *ErrInsufficientFunds,
		*ErrDuplicate, *ErrUnauthorized, *ErrForbidden:
		return true
	}
	return false
}
