//go:build !linux
// +build !linux

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package reactor

// NewReactor returns an error for unsupported platforms.
func NewReactor() (EventReactor, error) {
	return nil, ErrUnsupported
}

// NewWaker returns an error for unsupported platforms.
func NewWaker() (Waker, error) {
	return nil, ErrUnsupported
}
