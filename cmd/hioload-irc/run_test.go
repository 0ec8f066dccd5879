package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-irc/control"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "irc.yaml")
	doc := "servers:\n  - {name: local, addr: 127.0.0.1:6667, nickname: gopher, channels: ['#go']}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestLoadConfigLevelOverride(t *testing.T) {
	path := writeConfig(t)

	cfg, err := loadConfig(path, "")
	require.NoError(t, err)
	assert.Equal(t, control.DefaultLogLevel, cfg.Log.Level)

	cfg, err = loadConfig(path, "DEBUG")
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.Log.Level)

	_, err = loadConfig(path, "loud")
	assert.ErrorIs(t, err, control.ErrInvalidConfig)
}
