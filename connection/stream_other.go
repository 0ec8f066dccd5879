//go:build !unix

// File: connection/stream_other.go
// Author: momentics <momentics@gmail.com>
//
// Stub for platforms without raw non-blocking socket access.

package connection

import (
	"errors"
	"net"
	"time"
)

var errUnsupported = errors.New("connection: this platform is not supported")

type stream struct {
	conn *net.TCPConn
	fd   int
}

func newStream(conn *net.TCPConn) (*stream, error) { return nil, errUnsupported }

func (s *stream) setNonblocking()                    {}
func (s *stream) Read(p []byte) (int, error)         { return 0, errUnsupported }
func (s *stream) Write(p []byte) (int, error)        { return 0, errUnsupported }
func (s *stream) Flush() error                       { return errUnsupported }
func (s *stream) Buffered() int                      { return 0 }
func (s *stream) Close() error                       { return s.conn.Close() }
func (s *stream) LocalAddr() net.Addr                { return s.conn.LocalAddr() }
func (s *stream) RemoteAddr() net.Addr               { return s.conn.RemoteAddr() }
func (s *stream) SetDeadline(t time.Time) error      { return s.conn.SetDeadline(t) }
func (s *stream) SetReadDeadline(t time.Time) error  { return s.conn.SetReadDeadline(t) }
func (s *stream) SetWriteDeadline(t time.Time) error { return s.conn.SetWriteDeadline(t) }
