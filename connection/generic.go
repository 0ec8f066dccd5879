// File: connection/generic.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package connection

import (
	"net"

	"github.com/momentics/hioload-irc/api"
)

// Kind names a GenericConnection variant.
type Kind uint8

const (
	KindNone Kind = iota
	KindPlaintext
	KindTLS
)

func (k Kind) String() string {
	switch k {
	case KindPlaintext:
		return "plaintext"
	case KindTLS:
		return "tls"
	default:
		return "none"
	}
}

// GenericConnection holds one of the transports of this package by value,
// so sessions of mixed kinds can share one table. Supporting a new transport
// means adding a variant here.
type GenericConnection struct {
	kind  Kind
	plain *Plaintext
	tls   *TLS
}

var _ Connection = GenericConnection{}

// FromPlaintext wraps a plaintext transport.
func FromPlaintext(p *Plaintext) GenericConnection {
	return GenericConnection{kind: KindPlaintext, plain: p}
}

// FromTLS wraps a TLS transport.
func FromTLS(t *TLS) GenericConnection {
	return GenericConnection{kind: KindTLS, tls: t}
}

// Kind reports the active variant.
func (g GenericConnection) Kind() Kind { return g.kind }

func (g GenericConnection) Send(msg api.Message) error {
	switch g.kind {
	case KindPlaintext:
		return g.plain.Send(msg)
	case KindTLS:
		return g.tls.Send(msg)
	}
	return ErrNoTransport
}

func (g GenericConnection) Receive() (api.Message, error) {
	switch g.kind {
	case KindPlaintext:
		return g.plain.Receive()
	case KindTLS:
		return g.tls.Receive()
	}
	return nil, ErrNoTransport
}

func (g GenericConnection) Flush() error {
	switch g.kind {
	case KindPlaintext:
		return g.plain.Flush()
	case KindTLS:
		return g.tls.Flush()
	}
	return ErrNoTransport
}

func (g GenericConnection) PeerAddr() (net.Addr, error) {
	switch g.kind {
	case KindPlaintext:
		return g.plain.PeerAddr()
	case KindTLS:
		return g.tls.PeerAddr()
	}
	return nil, ErrNoTransport
}

func (g GenericConnection) Fd() (int, error) {
	switch g.kind {
	case KindPlaintext:
		return g.plain.Fd()
	case KindTLS:
		return g.tls.Fd()
	}
	return -1, ErrNoTransport
}

func (g GenericConnection) Close() error {
	switch g.kind {
	case KindPlaintext:
		return g.plain.Close()
	case KindTLS:
		return g.tls.Close()
	}
	return ErrNoTransport
}
