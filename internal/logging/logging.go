// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the logger profile.
type Options struct {
	// Verbose switches to a human-readable console encoder at debug level.
	Verbose bool
	// Level overrides the default level ("warn", or "debug" when Verbose).
	Level string
	// Output defaults to stderr so stdout stays clean for command output.
	Output io.Writer
}

// New returns a logger and its adjustable level.
func New(opts Options) (*zap.Logger, zap.AtomicLevel, error) {
	level, err := resolveLevel(opts)
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var enc zapcore.Encoder
	if opts.Verbose {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	} else {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(out), level)
	return zap.New(core).Named("w3vault"), level, nil
}

func resolveLevel(opts Options) (zap.AtomicLevel, error) {
	if strings.TrimSpace(opts.Level) != "" {
		var parsed zapcore.Level
		if err := parsed.Set(strings.TrimSpace(opts.Level)); err != nil {
			return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		return zap.NewAtomicLevelAt(parsed), nil
	}
	if opts.Verbose {
		return zap.NewAtomicLevelAt(zapcore.DebugLevel), nil
	}
	return zap.NewAtomicLevelAt(zapcore.WarnLevel), nil
}
