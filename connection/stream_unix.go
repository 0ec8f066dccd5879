//go:build unix

// File: connection/stream_unix.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Non-blocking socket stream. Reads and writes go straight to the descriptor
// through syscall.RawConn without parking the goroutine, so EAGAIN reaches
// the caller instead of the Go netpoller.

package connection

import (
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// stream wraps a TCP connection. Until setNonblocking is called it behaves
// like the plain net.Conn, which lets the TLS handshake run synchronously.
// Afterwards Write only buffers and Flush drains the buffer.
type stream struct {
	conn        *net.TCPConn
	raw         syscall.RawConn
	fd          int
	nonblocking bool
	pending     []byte
}

var _ net.Conn = (*stream)(nil)

func newStream(conn *net.TCPConn) (*stream, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("syscall conn: %w", err)
	}
	fd := -1
	if err := raw.Control(func(f uintptr) { fd = int(f) }); err != nil {
		return nil, fmt.Errorf("raw control: %w", err)
	}
	return &stream{conn: conn, raw: raw, fd: fd}, nil
}

func (s *stream) setNonblocking() {
	s.nonblocking = true
}

// Read performs a single read attempt.
func (s *stream) Read(p []byte) (int, error) {
	if !s.nonblocking {
		return s.conn.Read(p)
	}
	if len(p) == 0 {
		return 0, nil
	}
	var n int
	var rerr error
	err := s.raw.Read(func(fd uintptr) bool {
		for {
			n, rerr = unix.Read(int(fd), p)
			if rerr != unix.EINTR {
				return true
			}
		}
	})
	if err != nil {
		return 0, err
	}
	switch {
	case rerr == unix.EAGAIN:
		return 0, ErrWouldBlock
	case rerr != nil:
		return 0, rerr
	case n == 0:
		return 0, io.EOF
	}
	return n, nil
}

// Write buffers p once non-blocking; it never fails in that mode.
func (s *stream) Write(p []byte) (int, error) {
	if !s.nonblocking {
		return s.conn.Write(p)
	}
	s.pending = append(s.pending, p...)
	return len(p), nil
}

// Flush writes buffered bytes until the buffer is empty or the socket pushes back.
func (s *stream) Flush() error {
	for len(s.pending) > 0 {
		var n int
		var werr error
		err := s.raw.Write(func(fd uintptr) bool {
			for {
				n, werr = unix.Write(int(fd), s.pending)
				if werr != unix.EINTR {
					return true
				}
			}
		})
		if err != nil {
			return err
		}
		if n > 0 {
			s.pending = s.pending[:copy(s.pending, s.pending[n:])]
		}
		if werr == unix.EAGAIN {
			return ErrWouldBlock
		}
		if werr != nil {
			return werr
		}
	}
	return nil
}

// Buffered returns the number of accepted bytes not yet on the wire.
func (s *stream) Buffered() int { return len(s.pending) }

func (s *stream) Close() error                       { return s.conn.Close() }
func (s *stream) LocalAddr() net.Addr                { return s.conn.LocalAddr() }
func (s *stream) RemoteAddr() net.Addr               { return s.conn.RemoteAddr() }
func (s *stream) SetDeadline(t time.Time) error      { return s.conn.SetDeadline(t) }
func (s *stream) SetReadDeadline(t time.Time) error  { return s.conn.SetReadDeadline(t) }
func (s *stream) SetWriteDeadline(t time.Time) error { return s.conn.SetWriteDeadline(t) }
