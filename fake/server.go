// Package fake
// Author: momentics <momentics@gmail.com>
//
// Loopback IRC server. Each accepted client is exposed as a Conn that test
// code drives line by line.

package fake

import (
	"bufio"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

// ErrTimeout is returned when the server waits too long for a client or a line.
var ErrTimeout = errors.New("fake: timeout")

// Server accepts IRC clients on 127.0.0.1.
type Server struct {
	ln    net.Listener
	conns chan *Conn

	mu     sync.Mutex
	all    []*Conn
	closed bool
}

// NewServer listens on a random loopback port. A non-nil tlsCfg wraps
// accepted connections in TLS.
func NewServer(tlsCfg *tls.Config) (*Server, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	if tlsCfg != nil {
		ln = tls.NewListener(ln, tlsCfg)
	}
	s := &Server{ln: ln, conns: make(chan *Conn, 16)}
	go s.acceptLoop()
	return s, nil
}

func (s *Server) acceptLoop() {
	for {
		c, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.admit(c)
	}
}

// admit completes the TLS handshake, if any, before exposing the client so a
// dialer blocked in its own handshake is never left waiting on test code.
func (s *Server) admit(c net.Conn) {
	if tc, ok := c.(*tls.Conn); ok {
		_ = tc.SetDeadline(time.Now().Add(10 * time.Second))
		if err := tc.Handshake(); err != nil {
			tc.Close()
			return
		}
		_ = tc.SetDeadline(time.Time{})
	}
	conn := &Conn{c: c, r: bufio.NewReader(c)}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		c.Close()
		return
	}
	s.all = append(s.all, conn)
	s.mu.Unlock()
	s.conns <- conn
}

// Addr returns host:port of the listener.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Accept waits for the next client.
func (s *Server) Accept(timeout time.Duration) (*Conn, error) {
	select {
	case c := <-s.conns:
		return c, nil
	case <-time.After(timeout):
		return nil, ErrTimeout
	}
}

// Close stops listening and closes every accepted client.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.ln.Close()
	for _, c := range s.all {
		c.Close()
	}
	return err
}

// Conn is the server side of one client connection.
type Conn struct {
	c  net.Conn
	r  *bufio.Reader
	wm sync.Mutex
}

// ReadLine returns the next line sent by the client, without CRLF.
func (c *Conn) ReadLine(timeout time.Duration) (string, error) {
	if err := c.c.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", err
	}
	line, err := c.r.ReadString('\n')
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return "", ErrTimeout
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadLines reads exactly n lines.
func (c *Conn) ReadLines(n int, timeout time.Duration) ([]string, error) {
	out := make([]string, 0, n)
	for len(out) < n {
		line, err := c.ReadLine(timeout)
		if err != nil {
			return out, err
		}
		out = append(out, line)
	}
	return out, nil
}

// WriteLine sends line followed by CRLF.
func (c *Conn) WriteLine(line string) error {
	return c.WriteRaw(line + "\r\n")
}

// WriteRaw sends data verbatim.
func (c *Conn) WriteRaw(data string) error {
	c.wm.Lock()
	defer c.wm.Unlock()
	_, err := c.c.Write([]byte(data))
	return err
}

// Close closes the connection.
func (c *Conn) Close() error {
	return c.c.Close()
}
