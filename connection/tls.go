// File: connection/tls.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package connection

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/momentics/hioload-irc/api"
)

// TLS is an IRC connection over crypto/tls. The handshake completes during
// construction; renegotiation is not supported.
type TLS struct {
	s     *stream
	tc    *tls.Conn
	lines *lineReader
	codec api.Codec
	log   *zap.Logger
}

var _ Connection = (*TLS)(nil)

// tlsWriter routes plaintext through the record layer; Flush drains the
// resulting records from the stream.
type tlsWriter struct{ t *TLS }

func (w tlsWriter) Write(p []byte) (int, error) { return w.t.tc.Write(p) }
func (w tlsWriter) Flush() error                { return w.t.s.Flush() }

// DialTLS connects to addr and performs the TLS handshake under ctx.
// An empty cfg.ServerName is taken from addr.
func DialTLS(ctx context.Context, addr string, cfg *tls.Config, opts ...Option) (*TLS, error) {
	conn, err := dialTCP(ctx, addr)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &tls.Config{}
	}
	if cfg.ServerName == "" && !cfg.InsecureSkipVerify {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("tls server name: %w", err)
		}
		cfg = cfg.Clone()
		cfg.ServerName = host
	}
	t, err := NewTLS(ctx, conn, cfg, opts...)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return t, nil
}

// NewTLS takes ownership of conn and runs the client handshake.
func NewTLS(ctx context.Context, conn *net.TCPConn, cfg *tls.Config, opts ...Option) (*TLS, error) {
	o := buildOptions(opts)
	s, err := newStream(conn)
	if err != nil {
		return nil, err
	}
	tc := tls.Client(s, cfg)
	if err := tc.HandshakeContext(ctx); err != nil {
		return nil, fmt.Errorf("tls handshake: %w", err)
	}
	s.setNonblocking()

	state := tc.ConnectionState()
	log := o.logger.With(zap.Stringer("peer", conn.RemoteAddr()))
	log.Debug("established TLS connection",
		zap.String("version", tls.VersionName(state.Version)),
		zap.String("cipher", tls.CipherSuiteName(state.CipherSuite)))

	t := &TLS{s: s, tc: tc, codec: o.codec, log: log}
	t.lines = newLineReader(tc, MaxLineLength)
	return t, nil
}

// completeIO flushes outbound records. Failures are left for the next Send
// or Flush to report; reading goes on regardless.
func (t *TLS) completeIO() {
	if err := t.s.Flush(); err != nil && !IsTransient(err) {
		t.log.Debug("flush tls records", zap.Error(err))
	}
}

func (t *TLS) Send(msg api.Message) error {
	return sendMessage(tlsWriter{t}, t.codec, msg, t.log)
}

func (t *TLS) Receive() (api.Message, error) {
	t.completeIO()
	msg, err := receiveMessage(t.lines, t.codec, t.log)
	// Reading may have queued post-handshake records such as a KeyUpdate reply.
	t.completeIO()
	return msg, err
}

func (t *TLS) Flush() error { return t.s.Flush() }

func (t *TLS) PeerAddr() (net.Addr, error) { return peerAddr(t.s) }

func (t *TLS) Fd() (int, error) { return t.s.fd, nil }

// ConnectionState exposes the negotiated TLS parameters.
func (t *TLS) ConnectionState() tls.ConnectionState { return t.tc.ConnectionState() }

func (t *TLS) Close() error {
	// close_notify is best effort on a non-blocking socket.
	_ = t.tc.CloseWrite()
	_ = t.s.Flush()
	return t.s.Close()
}
