// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral readiness multiplexer interface.

package reactor

import (
	"errors"
	"math"
)

// Token identifies a registered source. The caller chooses the mapping.
type Token uint64

// SentinelToken is reserved and must never be registered.
const SentinelToken Token = math.MaxUint64

// ErrSentinelToken is returned when registering SentinelToken.
var ErrSentinelToken = errors.New("reactor: sentinel token is reserved")

// ErrUnsupported is returned by constructors on platforms without a backend.
var ErrUnsupported = errors.New("reactor: this platform is not supported")

// Interest selects the readiness kinds a registration reports.
type Interest uint8

const (
	Readable Interest = 1 << iota
	Writable
)

// Event contains readiness information returned by Wait.
type Event struct {
	Token    Token
	Readable bool
	Writable bool
	// Closed reports peer hang-up or a socket error; the next read observes it.
	Closed bool
}

// EventReactor defines the multiplexer operations. Registrations are
// edge-triggered: readiness is reported once per transition.
type EventReactor interface {
	// Register adds fd with the given interest under tok.
	Register(fd int, tok Token, interest Interest) error

	// Wait blocks without timeout until at least one event is ready and writes
	// them into events. It returns the number written.
	Wait(events []Event) (int, error)

	// Close releases the backend.
	Close() error
}

// Waker is a registrable source that other goroutines can make readable.
type Waker interface {
	// Fd returns the descriptor to register for Readable interest.
	Fd() int

	// Wake makes the source readable. Safe for concurrent use.
	Wake() error

	// Reset consumes pending wake-ups so the next Wake produces a new edge.
	Reset() error

	Close() error
}
