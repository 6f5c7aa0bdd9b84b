// Package logging builds the zap loggers used by the CLI and the HTTP server.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction.
type Options struct {
	Level       string
	Development bool
	// OutputPath redirects logs away from stderr, e.g. while the dashboard
	// owns the terminal.
	OutputPath string
}

// ParseLevel maps "debug", "info", "warn" and "error" to zap levels.
func ParseLevel(s string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("logging: invalid level %q", s)
	}
	return lvl, nil
}

// New builds a production (JSON) or development (console) logger.
func New(opts Options) (*zap.Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	if opts.Development {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if opts.OutputPath != "" {
		config.OutputPaths = []string{opts.OutputPath}
		config.ErrorOutputPaths = []string{opts.OutputPath}
	}
	return config.Build()
}

// ForTerminal returns a logger that stays off the screen: a file logger when
// path is set, otherwise a no-op.
func ForTerminal(level, path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	return New(Options{Level: level, OutputPath: path})
}
