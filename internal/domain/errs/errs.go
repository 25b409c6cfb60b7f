// Package errs defines the error kinds shared across layers.
package errs

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned when the admin gate rejects a login.
var ErrInvalidCredentials = errors.New("Invalid username or password")

// ErrRateLimited is returned when a client exceeds the login attempt rate.
var ErrRateLimited = errors.New("Too many login attempts. Please wait a moment and try again")

// ErrUnavailable means an optional integration is not configured.
var ErrUnavailable = errors.New("feature not configured")

// ErrNotFound signals a missing row; remote getters translate it to "no data".
var ErrNotFound = errors.New("not found")

// ValidationError rejects a request before any network call is made.
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

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// RemoteUnavailableError wraps a transport or store failure.
type RemoteUnavailableError struct {
	Op  string
	Err error
}

func (e *RemoteUnavailableError) Error() string {
	return fmt.Sprintf("remote %s failed: %v", e.Op, e.Err)
}

func (e *RemoteUnavailableError) Unwrap() error { return e.Err }

func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteUnavailableError{Op: op, Err: err}
}

// ConfigurationError means the backing service is reachable but not set up
// (missing bucket, table or permission). Hint tells the operator what to fix.
type ConfigurationError struct {
	Problem string
	Hint    string
	Err     error
}

func (e *ConfigurationError) Error() string {
	msg := e.Problem
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsConfiguration(err error) bool {
	var c *ConfigurationError
	return errors.As(err, &c)
}

func IsRemote(err error) bool {
	var r *RemoteUnavailableError
	return errors.As(err, &r)
}
