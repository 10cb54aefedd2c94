// Package logging builds the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn, error. Anything else means info.
	Level string
	// File, when set, receives a size-rotated copy of every line.
	File string
	// Stdout is where lines go besides File. Defaults to os.Stdout.
	Stdout io.Writer
}

// New returns a JSON slog logger and a close func that flushes the rotated
// file, if any. The close func is never nil.
func New(opts Options) (*slog.Logger, func() error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		level = slog.LevelInfo
	}

	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	closeFn := func() error { return nil }

	if opts.File != "" {
		_ = os.MkdirAll(filepath.Dir(opts.File), 0o755)
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 7,
			MaxAge:     7, // days
			Compress:   true,
		}
		out = io.MultiWriter(out, rotator)
		closeFn = rotator.Close
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})), closeFn
}
