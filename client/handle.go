// File: client/handle.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/momentics/hioload-irc/api"
	"github.com/momentics/hioload-irc/internal/concurrency"
	"github.com/momentics/hioload-irc/reactor"
)

// Handle injects actions into a running reactor from any goroutine.
// Copies share the same queue. The zero value owns no sessions.
type Handle struct {
	owner   uuid.UUID
	queue   *concurrency.LockFreeQueue[Action]
	waker   reactor.Waker
	pending *atomic.Bool
}

// TrySend queues msg for session id without blocking. The message is sent by
// the reactor goroutine in order with everything else produced for id.
//
// An error wrapping ErrWakeFailed means msg was queued but the reactor could
// not be signalled; it goes out with the next wake-up. Do not resend it.
func (h Handle) TrySend(id SessionID, msg api.Message) error {
	if h.queue == nil || id.owner != h.owner {
		return ErrForeignSession
	}
	if msg == nil {
		return fmt.Errorf("%w: nil message", api.ErrInvalidArgument)
	}
	if !h.queue.Enqueue(SendRawAction{Session: id, Msg: msg}) {
		return ErrQueueFull
	}
	return h.wake()
}

// wake writes the waker only on the first action since the last drain.
func (h Handle) wake() error {
	if !h.pending.CompareAndSwap(false, true) {
		return nil
	}
	if err := h.waker.Wake(); err != nil {
		h.pending.Store(false)
		return fmt.Errorf("%w: %w", ErrWakeFailed, err)
	}
	return nil
}

// Owns reports whether id was issued by the reactor behind h.
func (h Handle) Owns(id SessionID) bool {
	return h.queue != nil && id.owner == h.owner
}

// Pending returns an approximate number of actions not yet drained.
func (h Handle) Pending() int {
	if h.queue == nil {
		return 0
	}
	return h.queue.Len()
}
