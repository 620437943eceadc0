package models

import (
	"errors"
	"fmt"
)

// Common errors used throughout the application
var (
	ErrEventNotFound    = errors.New("event not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrDuplicateEntry   = errors.New("duplicate entry")
	ErrSignatureInvalid = errors.New("webhook signature invalid")
	ErrMalformedPayload = errors.New("webhook payload malformed")
)

// ValidationError represents a user-correctable input error, surfaced inline
// rather than as a server failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a specific field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is (or wraps) a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GatewayError represents a failure talking to the external payment
// processor. It is user-visible as a payment-setup failure and is never
// retried automatically.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NotificationError represents a best-effort email send failure. It never
// affects the entitlement outcome; callers log and escalate it.
type NotificationError struct {
	Recipient string
	Err       error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification to %s failed: %v", e.Recipient, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
