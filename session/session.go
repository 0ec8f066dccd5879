// File: session/session.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package session

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"go.uber.org/zap"

	"github.com/momentics/hioload-irc/api"
	"github.com/momentics/hioload-irc/codec"
	"github.com/momentics/hioload-irc/connection"
)

// DefaultRealname is sent when the builder was given no realname.
var DefaultRealname = fmt.Sprintf("Connected with <%s> v%s", api.Homepage, api.Version)

var (
	ErrMissingConnection = errors.New("session: connection is required")
	ErrMissingNickname   = errors.New("session: nickname is required")
	ErrInvalidIdentity   = errors.New("session: invalid identity field")
)

// Session pairs a connection with its registered identity.
type Session struct {
	conn     connection.GenericConnection
	nickname string
	username string
	realname string

	// handshake lines the socket pushed back on; the reactor sends them first
	backlog []api.Message
}

// Builder collects session fields. The zero value is not usable; call New.
type Builder struct {
	conn     *connection.GenericConnection
	nickname string
	username string
	realname string
	password string
	codec    api.Codec
	log      *zap.Logger
}

// New starts a session builder.
func New() *Builder {
	return &Builder{codec: codec.IRC{}, log: zap.NewNop()}
}

// Connection sets the transport. Required.
func (b *Builder) Connection(c connection.GenericConnection) *Builder {
	b.conn = &c
	return b
}

// Nickname sets the nickname. Required.
func (b *Builder) Nickname(nick string) *Builder {
	b.nickname = nick
	return b
}

// Username sets the username; defaults to the nickname.
func (b *Builder) Username(user string) *Builder {
	b.username = user
	return b
}

// Realname sets the realname; defaults to DefaultRealname.
func (b *Builder) Realname(name string) *Builder {
	b.realname = name
	return b
}

// Password sets the server password sent with PASS before registering.
func (b *Builder) Password(pass string) *Builder {
	b.password = pass
	return b
}

// Codec sets the codec used to build handshake messages. It should match the
// codec of the connection.
func (b *Builder) Codec(c api.Codec) *Builder {
	if c != nil {
		b.codec = c
	}
	return b
}

// Logger sets the logger used during the handshake.
func (b *Builder) Logger(l *zap.Logger) *Builder {
	if l != nil {
		b.log = l
	}
	return b
}

func validWord(s string) bool {
	return s != "" && !strings.ContainsAny(s, " \r\n\x00") && s[0] != ':'
}

// Start validates the builder and sends the registration messages. The
// messages are handed to the connection, not acknowledged by the server.
func (b *Builder) Start() (*Session, error) {
	if b.conn == nil || b.conn.Kind() == connection.KindNone {
		return nil, ErrMissingConnection
	}
	if b.nickname == "" {
		return nil, ErrMissingNickname
	}

	username := b.username
	if username == "" {
		username = b.nickname
	}
	realname := b.realname
	if realname == "" {
		realname = DefaultRealname
	}
	switch {
	case !validWord(b.nickname):
		return nil, fmt.Errorf("%w: nickname %q", ErrInvalidIdentity, b.nickname)
	case !validWord(username):
		return nil, fmt.Errorf("%w: username %q", ErrInvalidIdentity, username)
	case strings.ContainsAny(realname, "\r\n\x00"):
		return nil, fmt.Errorf("%w: realname", ErrInvalidIdentity)
	case b.password != "" && !validWord(b.password):
		return nil, fmt.Errorf("%w: password", ErrInvalidIdentity)
	}

	lines := make([]string, 0, 3)
	if b.password != "" {
		lines = append(lines, "PASS "+b.password)
	}
	lines = append(lines,
		"NICK "+b.nickname,
		fmt.Sprintf("USER %s 8 * :%s", username, realname))

	s := &Session{
		conn:     *b.conn,
		nickname: b.nickname,
		username: username,
		realname: realname,
	}

	log := b.log
	if addr, err := s.conn.PeerAddr(); err == nil {
		log = log.With(zap.Stringer("peer", addr))
	}
	log.Debug("initiating session", zap.String("nickname", s.nickname), zap.String("username", s.username))

	for _, line := range lines {
		msg, err := b.codec.Decode([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("build handshake: %w", err)
		}
		if len(s.backlog) > 0 {
			s.backlog = append(s.backlog, msg)
			continue
		}
		if err := s.conn.Send(msg); err != nil {
			if !connection.IsTransient(err) {
				return nil, fmt.Errorf("send %s: %w", msg.Command(), err)
			}
			s.backlog = append(s.backlog, msg)
		}
	}
	return s, nil
}

// Nickname returns the registered nickname.
func (s *Session) Nickname() string { return s.nickname }

// Username returns the registered username.
func (s *Session) Username() string { return s.username }

// Realname returns the registered realname.
func (s *Session) Realname() string { return s.realname }

// Connection returns the underlying transport.
func (s *Session) Connection() connection.GenericConnection { return s.conn }

// TakeBacklog returns handshake messages that still need sending, in order,
// and forgets them.
func (s *Session) TakeBacklog() []api.Message {
	out := s.backlog
	s.backlog = nil
	return out
}

func (s *Session) Send(msg api.Message) error    { return s.conn.Send(msg) }
func (s *Session) Receive() (api.Message, error) { return s.conn.Receive() }
func (s *Session) Flush() error                  { return s.conn.Flush() }
func (s *Session) PeerAddr() (net.Addr, error)   { return s.conn.PeerAddr() }
func (s *Session) Fd() (int, error)              { return s.conn.Fd() }
func (s *Session) Close() error                  { return s.conn.Close() }
