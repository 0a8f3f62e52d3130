package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session propagation client
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("no session")

	// Refresh errors
	ErrNoRefreshToken = errors.New("no refresh token")
	ErrRefreshFailed  = errors.New("refresh failed")
	ErrUnauthorized   = errors.New("unauthorized")

	// Transfer errors
	ErrMissingTokens     = errors.New("transfer payload missing tokens")
	ErrTransferExpired   = errors.New("transfer payload expired")
	ErrTransferReplayed  = errors.New("transfer payload already consumed")
	ErrMalformedTransfer = errors.New("malformed transfer payload")

	// Tenant errors
	ErrNoTenant = errors.New("no tenant for origin")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
