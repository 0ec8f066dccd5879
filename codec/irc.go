// File: codec/irc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/irc.v4"

	"github.com/momentics/hioload-irc/api"
)

var errNoCommand = errors.New("no command token")

// Message is an api.Message keeping both the raw line and its parsed form.
type Message struct {
	raw    []byte
	parsed *irc.Message
}

var _ api.Message = (*Message)(nil)

// Bytes returns the raw line without CRLF.
func (m *Message) Bytes() []byte { return m.raw }

// Command returns the command token.
func (m *Message) Command() string { return m.parsed.Command }

// String returns the line with invalid UTF-8 replaced.
func (m *Message) String() string {
	return strings.ToValidUTF8(string(m.raw), "�")
}

// Params returns a copy of the parameter list.
func (m *Message) Params() []string {
	return append([]string(nil), m.parsed.Params...)
}

// Trailing returns the last parameter, or "" if there is none.
func (m *Message) Trailing() string { return m.parsed.Trailing() }

// IRC returns a deep copy of the parsed message.
func (m *Message) IRC() *irc.Message { return m.parsed.Copy() }

// IRC is the default api.Codec.
type IRC struct{}

var _ api.Codec = IRC{}

// Decode parses one line. The line is copied.
func (IRC) Decode(line []byte) (api.Message, error) {
	return decode(line)
}

func decode(line []byte) (*Message, error) {
	parsed, err := irc.ParseMessage(string(line))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", api.ErrDecode, err)
	}
	return &Message{raw: bytes.Clone(line), parsed: parsed}, nil
}

// Encode returns the raw line. Lines carrying CR, LF or NUL are rejected so a
// message can never smuggle a second command onto the wire.
func (IRC) Encode(msg api.Message) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: nil message", api.ErrEncode)
	}
	raw := msg.Bytes()
	if i := bytes.IndexAny(raw, "\r\n\x00"); i >= 0 {
		return nil, fmt.Errorf("%w: control byte at offset %d", api.ErrEncode, i)
	}
	return raw, nil
}

// WithCommand replaces the command token in place. Tags and prefix are
// skipped structurally, so "@t=1 :srv PING :x" becomes "@t=1 :srv PONG :x".
func (IRC) WithCommand(msg api.Message, command string) (api.Message, error) {
	if command == "" || strings.ContainsAny(command, " \r\n\x00") {
		return nil, fmt.Errorf("%w: invalid command %q", api.ErrEncode, command)
	}
	raw := msg.Bytes()
	start, end := commandSpan(raw)
	if start == end {
		return nil, fmt.Errorf("%w: %w", api.ErrDecode, errNoCommand)
	}
	out := make([]byte, 0, len(raw)-(end-start)+len(command))
	out = append(out, raw[:start]...)
	out = append(out, command...)
	out = append(out, raw[end:]...)
	return decode(out)
}

// commandSpan returns the byte range of the command token in raw.
func commandSpan(raw []byte) (start, end int) {
	i := 0
	skipWord := func() {
		for i < len(raw) && raw[i] != ' ' {
			i++
		}
		for i < len(raw) && raw[i] == ' ' {
			i++
		}
	}
	for i < len(raw) && raw[i] == ' ' {
		i++
	}
	if i < len(raw) && raw[i] == '@' {
		skipWord()
	}
	if i < len(raw) && raw[i] == ':' {
		skipWord()
	}
	start = i
	for i < len(raw) && raw[i] != ' ' {
		i++
	}
	return start, i
}

// New builds a message from a command and its parameters.
func New(command string, params ...string) (*Message, error) {
	m := &irc.Message{Command: command, Params: params}
	return decode([]byte(m.String()))
}

// Parse decodes a single line given as a string.
func Parse(line string) (*Message, error) {
	return decode([]byte(strings.TrimRight(line, "\r\n")))
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(line string) *Message {
	m, err := Parse(line)
	if err != nil {
		panic(err)
	}
	return m
}
