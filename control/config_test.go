package control

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
reactor:
  queue_capacity: 64
  max_sessions: 4
  pin_cpu: 0
log:
  level: debug
  format: json
metrics:
  listen: 127.0.0.1:9100
servers:
  - name: libera
    addr: irc.libera.chat:6697
    tls: true
    nickname: gopher
    password: ${HIOLOAD_IRC_TEST_PASS:-fallback}
    channels: ["#go-nuts", "#hioload"]
    dial_timeout: 5s
  - addr: 127.0.0.1:6667
    nickname: local
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Reactor.QueueCapacity)
	assert.Equal(t, 4, cfg.Reactor.MaxSessions)
	assert.Equal(t, DefaultEventCapacity, cfg.Reactor.EventCapacity)
	require.NotNil(t, cfg.Reactor.PinCPU)
	assert.Equal(t, 0, *cfg.Reactor.PinCPU)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Listen)

	require.Len(t, cfg.Servers, 2)
	libera := cfg.Servers[0]
	assert.True(t, libera.TLS)
	assert.Equal(t, "fallback", libera.Password)
	assert.Equal(t, []string{"#go-nuts", "#hioload"}, libera.Channels)
	assert.Equal(t, 5*time.Second, libera.DialTimeout)

	local := cfg.Servers[1]
	assert.Equal(t, "127.0.0.1:6667", local.Name, "name defaults to addr")
	assert.Equal(t, DefaultDialTimeout, local.DialTimeout)
}

func TestParseConfigExpandsEnvironment(t *testing.T) {
	t.Setenv("HIOLOAD_IRC_TEST_PASS", "s3cret")
	cfg, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Servers[0].Password)
}

func TestParseConfigEmptyYieldsDefaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfigRejectsUnknownField(t *testing.T) {
	_, err := ParseConfig([]byte("reactor:\n  queue_size: 3\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"missing addr":     "servers:\n  - name: a\n    nickname: n\n",
		"missing nickname": "servers:\n  - addr: h:1\n",
		"duplicate name":   "servers:\n  - {name: a, addr: h:1, nickname: n}\n  - {name: a, addr: h:2, nickname: m}\n",
		"bad level":        "log:\n  level: loud\n",
		"bad format":       "log:\n  format: xml\n",
		"bad channel":      "servers:\n  - {addr: h:1, nickname: n, channels: ['#a b']}\n",
		"negative max":     "reactor:\n  max_sessions: -1\n",
		"negative cpu":     "reactor:\n  pin_cpu: -2\n",
		"too many servers": "reactor:\n  max_sessions: 1\nservers:\n  - {addr: h:1, nickname: n}\n  - {addr: h:2, nickname: m}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "irc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Servers, 2)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateLevelIgnoresCase(t *testing.T) {
	cfg, err := ParseConfig([]byte("log:\n  level: WARN\n  format: JSON\n"))
	require.NoError(t, err)
	assert.Equal(t, "WARN", cfg.Log.Level)

	cfg.Log.Level = "Verbose"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}
