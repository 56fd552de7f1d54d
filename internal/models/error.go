package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Token verification failures
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Account state errors
	ErrBanned      = errors.New("account is banned")
	ErrNotApproved = errors.New("registration not approved")

	// ErrPendingApproval wraps ErrConflict so callers that only branch on
	// Conflict keep working, while the registration handler can render the
	// distinct "still pending" message.
	ErrPendingApproval = fmt.Errorf("registration pending approval: %w", ErrConflict)
)
