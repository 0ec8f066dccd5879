// File: connection/lines.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Line framing shared by every transport.

package connection

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/momentics/hioload-irc/api"
)

// lineReader accumulates bytes from a non-blocking source and hands out
// complete lines. Partial lines survive transient read errors, which rules
// out bufio.Reader: ReadSlice consumes its buffer when the source fails.
type lineReader struct {
	src        io.Reader
	buf        []byte
	max        int
	discarding bool // dropping the tail of an oversized line
	done       bool // EOF or a fatal read error was seen
}

func newLineReader(src io.Reader, max int) *lineReader {
	return &lineReader{src: src, buf: make([]byte, 0, max), max: max}
}

// take returns the next buffered line with trailing CR/LF removed.
func (lr *lineReader) take() ([]byte, bool) {
	for {
		idx := bytes.IndexByte(lr.buf, '\n')
		if idx < 0 {
			if lr.discarding {
				lr.buf = lr.buf[:0]
			}
			return nil, false
		}
		line := bytes.TrimRight(lr.buf[:idx], "\r\n")
		out := bytes.Clone(line)
		lr.buf = lr.buf[:copy(lr.buf, lr.buf[idx+1:])]
		if lr.discarding {
			lr.discarding = false
			continue
		}
		return out, true
	}
}

// readLine returns one complete line, reading as often as needed.
// It returns io.EOF once the source is exhausted or failed fatally.
func (lr *lineReader) readLine() ([]byte, error) {
	for {
		if line, ok := lr.take(); ok {
			return line, nil
		}
		if lr.done {
			return nil, io.EOF
		}
		if len(lr.buf) >= lr.max {
			lr.buf = lr.buf[:0]
			lr.discarding = true
			return nil, fmt.Errorf("%w: no terminator within %d bytes", ErrLineTooLong, lr.max)
		}
		n, err := lr.src.Read(lr.buf[len(lr.buf):lr.max])
		lr.buf = lr.buf[:len(lr.buf)+n]
		if err != nil {
			if IsTransient(err) {
				if n > 0 {
					continue
				}
				return nil, err
			}
			lr.done = true
			if errors.Is(err, io.EOF) {
				continue
			}
			return nil, fmt.Errorf("read: %w", err)
		}
	}
}

// buffered returns the number of bytes held for an incomplete line.
func (lr *lineReader) buffered() int { return len(lr.buf) }

// receiveMessage implements Connection.Receive on top of a lineReader.
func receiveMessage(lr *lineReader, c api.Codec, log *zap.Logger) (api.Message, error) {
	line, err := lr.readLine()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	log.Debug("received message", zap.ByteString("line", line))
	msg, err := c.Decode(line)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// lineWriter accepts bytes and pushes them to the socket on Flush.
type lineWriter interface {
	io.Writer
	Flush() error
}

// sendMessage implements Connection.Send. A message is accepted whole or not
// at all: bytes still pending from earlier sends are flushed first, and a
// transient failure there rejects msg so the caller can queue it.
func sendMessage(w lineWriter, c api.Codec, msg api.Message, log *zap.Logger) error {
	raw, err := c.Encode(msg)
	if err != nil {
		return err
	}
	if len(raw)+2 > MaxLineLength {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLong, len(raw)+2)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	line := make([]byte, 0, len(raw)+2)
	line = append(append(line, raw...), '\r', '\n')
	if _, err := w.Write(line); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	if err := w.Flush(); err != nil {
		if IsTransient(err) {
			log.Debug("sent message, tail pending", zap.String("msg", msg.String()))
			return nil
		}
		log.Error("wrote but failed to flush message", zap.String("msg", msg.String()), zap.Error(err))
		return fmt.Errorf("flush: %w", err)
	}
	log.Debug("sent message", zap.String("msg", msg.String()))
	return nil
}
