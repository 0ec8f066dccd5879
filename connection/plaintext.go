// File: connection/plaintext.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package connection

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/momentics/hioload-irc/api"
)

// Plaintext is an unencrypted IRC connection.
type Plaintext struct {
	s     *stream
	lines *lineReader
	codec api.Codec
	log   *zap.Logger
}

var _ Connection = (*Plaintext)(nil)

// DialPlaintext connects to addr and wraps the socket.
func DialPlaintext(ctx context.Context, addr string, opts ...Option) (*Plaintext, error) {
	conn, err := dialTCP(ctx, addr)
	if err != nil {
		return nil, err
	}
	p, err := NewPlaintext(conn, opts...)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return p, nil
}

// NewPlaintext takes ownership of an established TCP connection.
func NewPlaintext(conn *net.TCPConn, opts ...Option) (*Plaintext, error) {
	o := buildOptions(opts)
	s, err := newStream(conn)
	if err != nil {
		return nil, err
	}
	s.setNonblocking()
	log := o.logger.With(zap.Stringer("peer", conn.RemoteAddr()))
	log.Debug("established plaintext connection")
	return &Plaintext{
		s:     s,
		lines: newLineReader(s, MaxLineLength),
		codec: o.codec,
		log:   log,
	}, nil
}

func (p *Plaintext) Send(msg api.Message) error {
	return sendMessage(p.s, p.codec, msg, p.log)
}

func (p *Plaintext) Receive() (api.Message, error) {
	return receiveMessage(p.lines, p.codec, p.log)
}

func (p *Plaintext) Flush() error { return p.s.Flush() }

func (p *Plaintext) PeerAddr() (net.Addr, error) { return peerAddr(p.s) }

func (p *Plaintext) Fd() (int, error) { return p.s.fd, nil }

func (p *Plaintext) Close() error { return p.s.Close() }

func dialTCP(ctx context.Context, addr string) (*net.TCPConn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	tcp, ok := c.(*net.TCPConn)
	if !ok {
		c.Close()
		return nil, fmt.Errorf("dial %s: not a TCP connection", addr)
	}
	return tcp, nil
}

func peerAddr(s *stream) (net.Addr, error) {
	addr := s.RemoteAddr()
	if addr == nil {
		return nil, errors.New("connection: peer address unavailable")
	}
	return addr, nil
}
