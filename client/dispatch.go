// File: client/dispatch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Per-session send, flush and receive paths of the reactor.

package client

import (
	"errors"

	"go.uber.org/zap"

	"github.com/momentics/hioload-irc/api"
	"github.com/momentics/hioload-irc/connection"
	"github.com/momentics/hioload-irc/control"
)

const (
	pingCommand = "PING"
	pongCommand = "PONG"
)

// send writes msg now or queues it behind earlier output of e.
func (r *Reactor) send(e *sessionEntry, msg api.Message) {
	if msg == nil {
		return
	}
	if e.out.len() > 0 {
		e.out.push(msg)
		r.metrics.Queued()
		return
	}
	err := e.sess.Send(msg)
	switch {
	case err == nil:
		r.metrics.Sent()
		e.log.Debug("sent", zap.String("msg", msg.String()))
	case connection.IsTransient(err):
		e.writable = false
		e.out.push(msg)
		r.metrics.Queued()
	default:
		e.log.Error("send failed", zap.String("msg", msg.String()), zap.Error(err))
		r.metrics.Dropped(control.DropSendFailed)
	}
}

// flush writes pending connection bytes, then the output queue in order.
func (r *Reactor) flush(e *sessionEntry) {
	if err := e.sess.Flush(); err != nil {
		if connection.IsTransient(err) {
			e.writable = false
			return
		}
		e.log.Error("flush failed", zap.Error(err))
	}

	done := 0
	for done < e.out.len() {
		msg := e.out.at(done)
		err := e.sess.Send(msg)
		if err != nil && connection.IsTransient(err) {
			e.writable = false
			break
		}
		done++
		if err != nil {
			e.log.Error("send failed", zap.String("msg", msg.String()), zap.Error(err))
			r.metrics.Dropped(control.DropSendFailed)
			continue
		}
		r.metrics.Sent()
		e.log.Debug("sent", zap.String("msg", msg.String()))
	}
	if done == 0 {
		return
	}
	if err := e.out.discardFront(done); err != nil {
		ierr := api.NewError(api.ErrCodeInternal, "output queue out of sync").
			WithContext("session", e.id.index).
			WithContext("discard", done).
			WithCause(err)
		e.log.Error("output queue", zap.Error(ierr))
		r.dispatch(e, nil, ierr)
		return
	}
	r.metrics.Dequeued(done)
}

// receive dispatches messages until the connection has nothing complete.
func (r *Reactor) receive(e *sessionEntry) {
	for {
		msg, err := e.sess.Receive()
		if err != nil {
			if connection.IsTransient(err) {
				return
			}
			if errors.Is(err, api.ErrDecode) {
				r.metrics.DecodeError()
			}
			e.log.Debug("receive failed", zap.Error(err))
			r.dispatch(e, nil, err)
			continue
		}
		if msg == nil {
			return
		}
		r.metrics.Received()
		e.log.Debug("received", zap.String("msg", msg.String()))

		if msg.Command() == pingCommand {
			r.pong(e, msg)
			continue
		}
		r.dispatch(e, msg, nil)
	}
}

func (r *Reactor) pong(e *sessionEntry, ping api.Message) {
	pong, err := r.codec.WithCommand(ping, pongCommand)
	if err != nil {
		r.dispatch(e, nil, err)
		return
	}
	r.metrics.Ping()
	r.send(e, pong)
}

// dispatch runs the handler and applies its reaction to e.
func (r *Reactor) dispatch(e *sessionEntry, msg api.Message, err error) {
	if r.handler == nil {
		return
	}
	ctx := &MessageContext{Handle: r.handle, Session: e.id}
	r.react(e, r.handler(ctx, msg, err))
}

func (r *Reactor) react(e *sessionEntry, reaction api.Reaction) {
	switch v := reaction.(type) {
	case nil, api.None:
	case api.SendRaw:
		r.send(e, v.Msg)
	case api.Many:
		for _, sub := range v {
			r.react(e, sub)
		}
	}
}
