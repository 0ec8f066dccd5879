// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-irc.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	// ErrDecode marks a received line the codec could not turn into a Message.
	ErrDecode = errors.New("message decode failed")

	// ErrEncode marks a Message the codec could not serialize.
	ErrEncode = errors.New("message encode failed")

	// ErrInternal marks a broken invariant inside the library itself.
	ErrInternal = errors.New("internal logic error")

	ErrInvalidArgument   = errors.New("invalid argument")
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrNotSupported      = errors.New("operation not supported")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeResourceExhausted
	ErrCodeDecode
	ErrCodeNotSupported
	ErrCodeInternal
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeInvalidArgument:
		return "invalid argument"
	case ErrCodeResourceExhausted:
		return "resource exhausted"
	case ErrCodeDecode:
		return "decode"
	case ErrCodeNotSupported:
		return "not supported"
	default:
		return "internal"
	}
}

// Error represents a structured error with code and context.
// It unwraps to the sentinel matching its code and to Cause, if set.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if len(e.Context) == 0 {
		return msg
	}
	return fmt.Sprintf("%s (context: %+v)", msg, e.Context)
}

// Unwrap exposes the code sentinel and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if s := e.Code.sentinel(); s != nil {
		out = append(out, s)
	}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

func (c ErrorCode) sentinel() error {
	switch c {
	case ErrCodeInvalidArgument:
		return ErrInvalidArgument
	case ErrCodeResourceExhausted:
		return ErrResourceExhausted
	case ErrCodeDecode:
		return ErrDecode
	case ErrCodeNotSupported:
		return ErrNotSupported
	case ErrCodeInternal:
		return ErrInternal
	default:
		return nil
	}
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithCause attaches the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}
