// File: client/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"errors"
	"fmt"

	"github.com/momentics/hioload-irc/internal/concurrency"
)

var (
	// ErrForeignSession is returned when a SessionID is used with a handle
	// of a different reactor.
	ErrForeignSession = errors.New("client: session belongs to another reactor")

	// ErrTooManySessions is returned when a new session would not fit the
	// token space or the configured session limit.
	ErrTooManySessions = errors.New("client: too many sessions")

	// ErrQueueFull is returned by TrySend when the action queue is at capacity.
	ErrQueueFull = fmt.Errorf("client: action %w", concurrency.ErrQueueFull)

	// ErrWakeFailed is returned by TrySend when the action was queued but the
	// reactor could not be woken. The action is not lost.
	ErrWakeFailed = errors.New("client: action queued, reactor wake-up failed")

	// ErrReactorStarted is returned by AddSession after Run and by a second Run.
	ErrReactorStarted = errors.New("client: reactor already running")

	// ErrDiscardExceedsLen is returned when more messages are discarded from
	// an output queue than it holds.
	ErrDiscardExceedsLen = errors.New("client: discard exceeds queue length")
)
