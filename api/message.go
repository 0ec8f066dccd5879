// File: api/message.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Message and Codec contracts. The wire codec is pluggable; the reactor only
// needs the raw line, the command token and a printable view.

package api

// Message is one decoded IRC line, without its CRLF terminator.
type Message interface {
	// Bytes returns the encoded line. Callers must not modify it.
	Bytes() []byte

	// Command returns the command token, e.g. "PRIVMSG" or "001".
	Command() string

	// String returns a lossy UTF-8 view of the line for logging.
	String() string
}

// Codec converts between wire lines and Messages.
type Codec interface {
	// Decode parses one line with CR/LF already stripped.
	Decode(line []byte) (Message, error)

	// Encode returns the line to put on the wire, without CRLF.
	Encode(msg Message) ([]byte, error)

	// WithCommand returns a copy of msg whose command token is replaced,
	// leaving tags, prefix and parameters untouched.
	WithCommand(msg Message, command string) (Message, error)
}
