// File: client/token.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Mapping between event contexts and poller tokens.
// Control is token 0, session i is token i+1, SentinelToken is never produced.

package client

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/momentics/hioload-irc/reactor"
)

// tokenSpace is the exclusive upper bound of usable tokens.
var tokenSpace = uint64(reactor.SentinelToken)

const controlToken reactor.Token = 0

// SessionID names a session of one reactor. It is only meaningful to the
// reactor that issued it.
type SessionID struct {
	index int
	owner uuid.UUID
}

// Index is the position of the session in its reactor, starting at 0.
func (id SessionID) Index() int { return id.index }

func (id SessionID) String() string {
	return fmt.Sprintf("session#%d@%s", id.index, id.owner)
}

type contextKind uint8

const (
	contextControl contextKind = iota
	contextSession
)

// EventContextID is the source of a readiness event: the control channel
// or one session.
type EventContextID struct {
	kind    contextKind
	session SessionID
}

// ControlContext is the context of the cross-goroutine action queue.
func ControlContext() EventContextID { return EventContextID{kind: contextControl} }

// SessionContext is the context of session id.
func SessionContext(id SessionID) EventContextID {
	return EventContextID{kind: contextSession, session: id}
}

// IsControl reports whether c is the control context.
func (c EventContextID) IsControl() bool { return c.kind == contextControl }

// Session returns the session of a session context.
func (c EventContextID) Session() (SessionID, bool) {
	return c.session, c.kind == contextSession
}

// Token converts c to a poller token. It fails with ErrTooManySessions when
// the session index has no token.
func (c EventContextID) Token() (reactor.Token, error) {
	if c.kind == contextControl {
		return controlToken, nil
	}
	return tokenForIndex(c.session.index)
}

func tokenForIndex(index int) (reactor.Token, error) {
	if index < 0 || uint64(index) >= tokenSpace-1 {
		return 0, fmt.Errorf("%w: index %d has no token", ErrTooManySessions, index)
	}
	return reactor.Token(uint64(index) + 1), nil
}

// contextFromToken is the inverse of Token for sessions owned by owner.
func contextFromToken(tok reactor.Token, owner uuid.UUID) (EventContextID, bool) {
	if tok == controlToken {
		return ControlContext(), true
	}
	if uint64(tok) >= tokenSpace {
		return EventContextID{}, false
	}
	index := uint64(tok) - 1
	if index > math.MaxInt {
		return EventContextID{}, false
	}
	return SessionContext(SessionID{index: int(index), owner: owner}), true
}
