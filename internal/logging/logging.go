// Package logging builds the zap logger used by the CLI.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log formats accepted by New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var ErrInvalidFormat = errors.New("invalid log format")

// Options configures New.
type Options struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string
	// Format selects the stderr encoding, "console" or "json".
	Format string
	// Path, when set, additionally appends JSON lines to that file.
	Path string
	// MaxSizeMB rotates the file at Path once it exceeds that size.
	MaxSizeMB int
	// Stderr overrides os.Stderr.
	Stderr io.Writer
}

// New returns a logger for opts and a function releasing its file, if any.
func New(opts Options) (*zap.Logger, func() error, error) {
	level := zapcore.WarnLevel
	if opts.Level != "" {
		l, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}
		level = l
	}

	var enc zapcore.Encoder
	switch opts.Format {
	case "", FormatConsole:
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		enc = zapcore.NewConsoleEncoder(cfg)
	case FormatJSON:
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, nil, fmt.Errorf("%w: %q (want console or json)", ErrInvalidFormat, opts.Format)
	}

	var stderr io.Writer = os.Stderr
	if opts.Stderr != nil {
		stderr = opts.Stderr
	}
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(stderr)), level)}

	closeFn := func() error { return nil }
	if opts.Path != "" {
		sink, err := openSink(opts.Path, opts.MaxSizeMB)
		if err != nil {
			return nil, nil, err
		}
		fileEnc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEnc, sink, level))
		closeFn = sink.Close
	}

	return zap.New(zapcore.NewTee(cores...)), closeFn, nil
}
