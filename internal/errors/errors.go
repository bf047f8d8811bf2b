package errors

import (
	"errors"
	"fmt"
)

// Common error types for the portal session service
var (
	// Token decode errors
	ErrMalformedToken  = errors.New("malformed token")
	ErrInvalidEncoding = errors.New("invalid token encoding")
	ErrInvalidPayload  = errors.New("invalid token payload")

	// Persistence errors
	ErrIncompleteSession = errors.New("incomplete session")
	ErrStoreUnavailable  = errors.New("session store unavailable")

	// Authentication flow errors
	ErrVerifyUnauthorized     = errors.New("access token unauthorized")
	ErrVerifyForbidden        = errors.New("access token forbidden")
	ErrRefreshRejected        = errors.New("refresh rejected")
	ErrSessionMismatch        = errors.New("session token mismatch")
	ErrSessionNotFound        = errors.New("session not found")
	ErrMissingSessionIdentity = errors.New("session id or user id missing")
	ErrRoleUnresolved         = errors.New("role could not be resolved")

	// Transport errors (network, timeout, unexpected status)
	ErrTransportFailure = errors.New("transport failure")

	// Controller usage errors
	ErrVerificationInFlight = errors.New("verification already in flight")
	ErrInvalidTransition    = errors.New("invalid state transition")
	ErrDetached             = errors.New("controller detached")
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
