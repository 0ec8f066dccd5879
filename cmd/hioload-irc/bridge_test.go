package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-irc/api"
	"github.com/momentics/hioload-irc/client"
)

func TestParseBridgeLine(t *testing.T) {
	names := map[string]client.SessionID{"libera": {}}

	id, msg, err := parseBridgeLine("libera PRIVMSG #go :hello there", names)
	require.NoError(t, err)
	assert.Equal(t, client.SessionID{}, id)
	assert.Equal(t, "PRIVMSG", msg.Command())
	assert.Equal(t, "PRIVMSG #go :hello there", msg.String())
}

func TestParseBridgeLineErrors(t *testing.T) {
	names := map[string]client.SessionID{"libera": {}}

	_, _, err := parseBridgeLine("libera", names)
	assert.ErrorIs(t, err, errBridgeSyntax)

	_, _, err = parseBridgeLine("oftc JOIN #go", names)
	assert.ErrorContains(t, err, "unknown server")

	_, _, err = parseBridgeLine("libera :prefix-only", names)
	assert.ErrorIs(t, err, api.ErrDecode)
}
