// File: connection/connection.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package connection

import (
	"errors"
	"net"
	"os"
	"syscall"

	"go.uber.org/zap"

	"github.com/momentics/hioload-irc/api"
	"github.com/momentics/hioload-irc/codec"
)

// MaxLineLength bounds an encoded line, CRLF included.
const MaxLineLength = 1024

var (
	// ErrMessageTooLong is returned by Send for lines that cannot fit in
	// MaxLineLength. Retrying will not help.
	ErrMessageTooLong = errors.New("connection: message exceeds maximum line length")

	// ErrLineTooLong is returned by Receive when the peer sent MaxLineLength
	// bytes without a line terminator. The oversized line is discarded.
	ErrLineTooLong = errors.New("connection: received line exceeds maximum length")

	// ErrNoTransport is returned by a zero GenericConnection.
	ErrNoTransport = errors.New("connection: no transport")
)

// wouldBlockError reports EAGAIN as a temporary net.Error, which crypto/tls
// treats as retryable instead of poisoning the connection.
type wouldBlockError struct{}

func (wouldBlockError) Error() string   { return "connection: operation would block" }
func (wouldBlockError) Timeout() bool   { return true }
func (wouldBlockError) Temporary() bool { return true }

// ErrWouldBlock is returned when the socket is not ready.
var ErrWouldBlock net.Error = wouldBlockError{}

// IsTransient reports whether err is a would-block or timed-out condition.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrWouldBlock) || errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Connection is the capability set every transport provides.
type Connection interface {
	// Send writes msg followed by CRLF. A transient error means the message
	// was not accepted.
	Send(msg api.Message) error

	// Receive returns the next complete message, or (nil, nil) once the peer
	// has closed the stream.
	Receive() (api.Message, error)

	// Flush pushes previously accepted bytes to the socket.
	Flush() error

	// PeerAddr returns the remote address.
	PeerAddr() (net.Addr, error)

	// Fd returns the socket descriptor for readiness registration.
	Fd() (int, error)

	Close() error
}

// Option customizes a transport.
type Option func(*options)

type options struct {
	codec  api.Codec
	logger *zap.Logger
}

func buildOptions(opts []Option) options {
	o := options{codec: codec.IRC{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithCodec sets the codec used to decode received lines and encode sent ones.
func WithCodec(c api.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithLogger sets the transport logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
