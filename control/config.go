// control/config.go
// Author: momentics <momentics@gmail.com>
//
// YAML configuration for reactors, logging, metrics and IRC servers.

package control

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultQueueCapacity = 1024
	DefaultEventCapacity = 512
	DefaultDialTimeout   = 30 * time.Second
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root of the configuration file.
type Config struct {
	Reactor ReactorConfig  `yaml:"reactor"`
	Log     LogConfig      `yaml:"log"`
	Metrics MetricsConfig  `yaml:"metrics"`
	Servers []ServerConfig `yaml:"servers"`
}

// ReactorConfig tunes one reactor.
type ReactorConfig struct {
	// QueueCapacity bounds the cross-goroutine action queue.
	QueueCapacity int `yaml:"queue_capacity"`
	// MaxSessions caps AddSession; 0 means limited only by the token space.
	MaxSessions int `yaml:"max_sessions"`
	// EventCapacity is the number of readiness events fetched per wait.
	EventCapacity int `yaml:"event_capacity"`
	// PinCPU binds the reactor goroutine to one CPU when set.
	PinCPU *int `yaml:"pin_cpu"`
}

// LogConfig selects the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// MetricsConfig enables the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is host:port for /metrics; empty disables the endpoint.
	Listen string `yaml:"listen"`
}

// ServerConfig describes one IRC session.
type ServerConfig struct {
	Name               string        `yaml:"name"`
	Addr               string        `yaml:"addr"`
	TLS                bool          `yaml:"tls"`
	ServerName         string        `yaml:"server_name"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	Nickname           string        `yaml:"nickname"`
	Username           string        `yaml:"username"`
	Realname           string        `yaml:"realname"`
	Password           string        `yaml:"password"`
	Channels           []string      `yaml:"channels"`
	DialTimeout        time.Duration `yaml:"dial_timeout"`
}

// DefaultConfig returns a configuration with defaults and no servers.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// LoadConfig reads, defaults and validates the YAML file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)(:-([^}]*))?\}`)

func interpolateEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		if v := os.Getenv(parts[1]); v != "" {
			return v
		}
		return parts[3]
	})
}

// ParseConfig expands ${VAR} references and decodes YAML, rejecting unknown
// fields. An empty document yields the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(strings.NewReader(interpolateEnv(string(data))))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Reactor.QueueCapacity == 0 {
		c.Reactor.QueueCapacity = DefaultQueueCapacity
	}
	if c.Reactor.EventCapacity == 0 {
		c.Reactor.EventCapacity = DefaultEventCapacity
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	for i := range c.Servers {
		s := &c.Servers[i]
		if s.DialTimeout == 0 {
			s.DialTimeout = DefaultDialTimeout
		}
		if s.Name == "" {
			s.Name = s.Addr
		}
	}
}

// Validate checks field ranges and server entries.
func (c *Config) Validate() error {
	var errs []error
	if c.Reactor.QueueCapacity < 1 {
		errs = append(errs, fmt.Errorf("reactor.queue_capacity must be positive, got %d", c.Reactor.QueueCapacity))
	}
	if c.Reactor.MaxSessions < 0 {
		errs = append(errs, fmt.Errorf("reactor.max_sessions must not be negative, got %d", c.Reactor.MaxSessions))
	}
	if c.Reactor.EventCapacity < 1 {
		errs = append(errs, fmt.Errorf("reactor.event_capacity must be positive, got %d", c.Reactor.EventCapacity))
	}
	if c.Reactor.PinCPU != nil && *c.Reactor.PinCPU < 0 {
		errs = append(errs, fmt.Errorf("reactor.pin_cpu must not be negative, got %d", *c.Reactor.PinCPU))
	}
	if _, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(c.Log.Level))); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of console, json", c.Log.Format))
	}
	if c.Reactor.MaxSessions > 0 && len(c.Servers) > c.Reactor.MaxSessions {
		errs = append(errs, fmt.Errorf("%d servers exceed reactor.max_sessions %d", len(c.Servers), c.Reactor.MaxSessions))
	}

	seen := make(map[string]bool, len(c.Servers))
	for i, s := range c.Servers {
		field := fmt.Sprintf("servers[%d]", i)
		if s.Addr == "" {
			errs = append(errs, fmt.Errorf("%s.addr is required", field))
		}
		if s.Nickname == "" {
			errs = append(errs, fmt.Errorf("%s.nickname is required", field))
		}
		if strings.ContainsAny(s.Name, " \t") {
			errs = append(errs, fmt.Errorf("%s.name %q must not contain whitespace", field, s.Name))
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Errorf("%s.name %q is duplicated", field, s.Name))
		}
		seen[s.Name] = true
		for _, ch := range s.Channels {
			if ch == "" || ch[0] == ':' || strings.ContainsAny(ch, " ,\a\r\n\x00") {
				errs = append(errs, fmt.Errorf("%s.channels: invalid channel %q", field, ch))
			}
		}
		if s.DialTimeout < 0 {
			errs = append(errs, fmt.Errorf("%s.dial_timeout must not be negative", field))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
