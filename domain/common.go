package domain

import (
	"errors"
	"fmt"
)

const (
	RoleDonor = "donor"
	RoleNGO   = "ngo"
	RoleAdmin = "admin"
)

var (
	MessageFailedBodyRequest    = "failed to process request body"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"

	ErrTokenNotFound      = errors.New("authorization token not found")
	ErrTokenInvalid       = errors.New("authorization token invalid")
	ErrUserNotAllowed     = errors.New("user not allowed")
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// ActingUser is the authenticated caller, resolved by the auth middleware
// and passed explicitly into every lifecycle operation.
type ActingUser struct {
	ID            string
	Email         string
	Name          string
	Role          string
	EmailVerified bool
}

// FieldError reports a validation failure for a single input field so the
// caller can show a field-specific message.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewFieldError(field, message string) error {
	return &FieldError{Field: field, Message: message}
}
