// Package logging sets up the structured logger that is handed to every
// component. There is no package level logger; whoever builds the components
// calls Setup once and Shutdown when done.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/funcraft/mcauth/internals/merrors"
)

// Options configures Setup
type Options struct {
	// Format is "text" or "json" (defaults to "text")
	Format string
	// Level is one of debug, info, warn, error (defaults to info)
	Level string
	// File is an optional path. Logs go to the file instead of Output when set
	File string
	// Output defaults to os.Stderr
	Output io.Writer
}

// Logging owns the configured logger and the resources behind it
type Logging struct {
	Logger *slog.Logger
	closer io.Closer
}

// Setup builds a redacting logger from opts
func Setup(opts Options) (*Logging, error) {
	w := opts.Output
	if w == nil {
		w = os.Stderr
	}

	var closer io.Closer
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, err
		}
		w = f
		closer = f
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var base slog.Handler
	if opts.Format == "json" {
		base = slog.NewJSONHandler(w, handlerOpts)
	} else {
		base = slog.NewTextHandler(w, handlerOpts)
	}

	return &Logging{
		Logger: slog.New(NewRedactHandler(base)),
		closer: closer,
	}, nil
}

// Shutdown flushes and closes the log file (if any). Safe to call more than once.
func (l *Logging) Shutdown() error {
	if l == nil || l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

// Closed reports whether Shutdown released the log file. Loggers without a file are never open.
func (l *Logging) Closed() bool {
	return l == nil || l.closer == nil
}

// ParseLevel converts a config string to a slog.Level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// Category returns l tagged with a category attribute. A nil l yields a discard logger.
func Category(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = Discard()
	}
	return l.With(slog.String("category", name))
}

// Error logs err with its kind (and HTTP status / XErr when present)
func Error(l *slog.Logger, msg string, err error) {
	attrs := []any{slog.String("error", err.Error())}
	if kind := merrors.KindOf(err); kind != merrors.Unknown {
		attrs = append(attrs, slog.String("kind", kind.String()))
	}
	var authErr *merrors.AuthError
	if errors.As(err, &authErr) {
		if authErr.Status != 0 {
			attrs = append(attrs, slog.Int("status", authErr.Status))
		}
		if authErr.XErr != 0 {
			attrs = append(attrs, slog.Int64("xerr", authErr.XErr))
		}
	}
	l.Error(msg, attrs...)
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
