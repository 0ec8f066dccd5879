// File: client/context.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"sync"

	"github.com/momentics/hioload-irc/api"
)

// MessageContext tells a Handler where a message came from.
type MessageContext struct {
	Handle  Handle
	Session SessionID
}

// Handler is called on the reactor goroutine for every received message
// except PING. On failure msg is nil and err describes it. The returned
// Reaction is applied to the originating session.
type Handler func(ctx *MessageContext, msg api.Message, err error) api.Reaction

// SharedHandler lets other goroutines replace the handler of a running
// reactor. Pass its Handle method to Run.
type SharedHandler struct {
	mu sync.RWMutex
	h  Handler
}

// NewSharedHandler wraps h.
func NewSharedHandler(h Handler) *SharedHandler {
	return &SharedHandler{h: h}
}

// Set replaces the handler. Messages already being dispatched finish with
// the previous one.
func (s *SharedHandler) Set(h Handler) {
	s.mu.Lock()
	s.h = h
	s.mu.Unlock()
}

// Handle calls the current handler; a nil handler yields no reaction.
func (s *SharedHandler) Handle(ctx *MessageContext, msg api.Message, err error) api.Reaction {
	s.mu.RLock()
	h := s.h
	s.mu.RUnlock()
	if h == nil {
		return api.NoReaction
	}
	return h(ctx, msg, err)
}
