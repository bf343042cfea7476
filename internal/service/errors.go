package service

import "fmt"

// ValidationError means the request itself is malformed or not allowed
// for the caller. Maps to HTTP 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError means the referenced entity does not exist or is not
// visible to the caller. Maps to HTTP 404.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NotFoundf(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError means a state precondition failed: another request
// already advanced the booking, or the transition is not legal from the
// current status. Maps to HTTP 409.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func Conflictf(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// UpstreamError wraps a payment-processor failure. The wrapped error is
// logged but never serialized to clients. Maps to HTTP 502.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("payment processor %s: %v", e.Op, e.Err) }

func (e *UpstreamError) Unwrap() error { return e.Err }

func Upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}
