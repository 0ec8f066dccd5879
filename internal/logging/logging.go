// internal/logging/logging.go
// Author: momentics <momentics@gmail.com>
//
// Package logging builds the zap loggers used by the CLI and examples.
//
// The level and format come from control.LogConfig and can be overridden
// through the environment:
//
//	HIOLOAD_IRC_LOG_LEVEL=debug
//	HIOLOAD_IRC_LOG_FORMAT=json
package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/momentics/hioload-irc/control"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment variables that take precedence over the configuration file.
const (
	EnvLevel  = "HIOLOAD_IRC_LOG_LEVEL"
	EnvFormat = "HIOLOAD_IRC_LOG_FORMAT"
)

// New returns a logger for cfg. Format "json" selects the production
// encoder; anything else selects the development console encoder.
func New(cfg control.LogConfig) (*zap.Logger, error) {
	level := cfg.Level
	if v := strings.TrimSpace(os.Getenv(EnvLevel)); v != "" {
		level = v
	}
	format := cfg.Format
	if v := strings.TrimSpace(os.Getenv(EnvFormat)); v != "" {
		format = v
	}

	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	if strings.EqualFold(format, "json") {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zc.Build()
}

// ParseLevel accepts zap level names case-insensitively; empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("log level %q: %w", s, err)
	}
	return lvl, nil
}
