// File: cmd/hioload-irc/bridge.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/momentics/hioload-irc/api"
	"github.com/momentics/hioload-irc/client"
	"github.com/momentics/hioload-irc/codec"
)

var errBridgeSyntax = errors.New(`expected "<server-name> <raw line>"`)

// parseBridgeLine splits "<server-name> <raw line>" and decodes the raw part.
func parseBridgeLine(line string, names map[string]client.SessionID) (client.SessionID, api.Message, error) {
	name, raw, ok := strings.Cut(strings.TrimSpace(line), " ")
	raw = strings.TrimSpace(raw)
	if !ok || name == "" || raw == "" {
		return client.SessionID{}, nil, errBridgeSyntax
	}
	id, ok := names[name]
	if !ok {
		return client.SessionID{}, nil, fmt.Errorf("unknown server %q", name)
	}
	msg, err := codec.Parse(raw)
	if err != nil {
		return client.SessionID{}, nil, err
	}
	return id, msg, nil
}

// bridge forwards stdin lines to their sessions until src is exhausted.
func bridge(src io.Reader, h client.Handle, names map[string]client.SessionID, log *zap.Logger) {
	sc := bufio.NewScanner(src)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		id, msg, err := parseBridgeLine(line, names)
		if err != nil {
			log.Warn("stdin", zap.String("line", line), zap.Error(err))
			continue
		}
		if err := h.TrySend(id, msg); err != nil {
			log.Warn("stdin", zap.String("line", line), zap.Error(err))
		}
	}
	if err := sc.Err(); err != nil {
		log.Error("stdin", zap.Error(err))
	}
}
