// Package domain defines the core types, collaborator interfaces, and errors
// for the CRM-to-BI sync service.
package domain

import "fmt"

// ConfigurationError indicates an invalid or missing job, task, or target
// definition. It is detected before any external call is made.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// AuthError indicates a session establishment failure with the CRM platform
// or a BI target.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// QueryError indicates a query execution failure: malformed query, permission
// denial, or timeout.
type QueryError struct {
	Message string
	Err     error
}

func (e *QueryError) Error() string { return e.Message }

func (e *QueryError) Unwrap() error { return e.Err }

// DeliveryError indicates a target delivery failure. It carries the target
// kind and the underlying cause.
type DeliveryError struct {
	Kind    TargetKind
	Message string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %s", e.Kind, e.Message)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// NotFoundError indicates a requested job or run does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ErrConfiguration creates a ConfigurationError with a formatted message.
func ErrConfiguration(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// ErrAuth creates an AuthError wrapping the underlying cause.
func ErrAuth(err error, format string, args ...interface{}) *AuthError {
	return &AuthError{Message: fmt.Sprintf(format, args...), Err: err}
}

// ErrQuery creates a QueryError wrapping the underlying cause.
func ErrQuery(err error, format string, args ...interface{}) *QueryError {
	return &QueryError{Message: fmt.Sprintf(format, args...), Err: err}
}

// ErrDelivery creates a DeliveryError for the given target kind.
func ErrDelivery(kind TargetKind, err error, format string, args ...interface{}) *DeliveryError {
	return &DeliveryError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}
