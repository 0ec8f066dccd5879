// File: client/middleware.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Handler middleware.

package client

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/momentics/hioload-irc/api"
	"github.com/momentics/hioload-irc/codec"
)

// welcomeCommand is RPL_WELCOME, the first reply after registration.
const welcomeCommand = "001"

// Middleware wraps a Handler.
type Middleware func(Handler) Handler

// Chain applies mw to h so that mw[0] runs first.
func Chain(h Handler, mw ...Middleware) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// Logging logs every message and failure at debug level.
func Logging(log *zap.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx *MessageContext, msg api.Message, err error) api.Reaction {
			if err != nil {
				log.Debug("handler input", zap.Int("session", ctx.Session.Index()), zap.Error(err))
			} else {
				log.Debug("handler input", zap.Int("session", ctx.Session.Index()), zap.String("msg", msg.String()))
			}
			return next(ctx, msg, err)
		}
	}
}

// Recovery turns a panicking handler into no reaction. The panic is logged
// and the reactor keeps running.
func Recovery(log *zap.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx *MessageContext, msg api.Message, err error) (reaction api.Reaction) {
			defer func() {
				if p := recover(); p != nil {
					log.Error("handler panic",
						zap.Int("session", ctx.Session.Index()),
						zap.String("panic", fmt.Sprint(p)),
						zap.Stack("stack"))
					reaction = api.NoReaction
				}
			}()
			return next(ctx, msg, err)
		}
	}
}

// JoinOnWelcome joins the channels of a session once the server has accepted
// its registration. Servers discard JOIN sent before RPL_WELCOME. The JOINs
// go out ahead of the reaction of next. Invalid channel names are skipped.
func JoinOnWelcome(channels func(SessionID) []string) Middleware {
	return func(next Handler) Handler {
		return func(ctx *MessageContext, msg api.Message, err error) api.Reaction {
			reaction := next(ctx, msg, err)
			if err != nil || msg == nil || msg.Command() != welcomeCommand {
				return reaction
			}
			var joins api.Many
			for _, ch := range channels(ctx.Session) {
				if !validChannel(ch) {
					continue
				}
				join, jerr := codec.New("JOIN", ch)
				if jerr != nil {
					continue
				}
				joins = append(joins, api.SendRaw{Msg: join})
			}
			if len(joins) == 0 {
				return reaction
			}
			if reaction == nil {
				return joins
			}
			return append(joins, reaction)
		}
	}
}

func validChannel(ch string) bool {
	return ch != "" && ch[0] != ':' && !strings.ContainsAny(ch, " ,\a\r\n\x00")
}
