// Package logging provides component-scoped slog loggers.
//
// Loggers returned by ForComponent can be created at package init time; they
// resolve the active handler on every record, so a later call to Setup
// redirects all of them. Until Setup runs, records are discarded: the TUI owns
// the terminal and nothing may be written to stderr.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
)

const (
	CompSession = "session"
	CompHits    = "hits"
	CompSearch  = "search"
	CompTUI     = "tui"
	CompConfig  = "config"
	CompCLI     = "cli"
)

var root atomic.Pointer[slog.Handler]

func init() {
	setRoot(slog.NewTextHandler(io.Discard, nil))
}

func setRoot(h slog.Handler) {
	root.Store(&h)
}

func current() slog.Handler {
	return *root.Load()
}

// ForComponent returns a logger tagged with the given component name.
func ForComponent(name string) *slog.Logger {
	return slog.New(&swapHandler{}).With(slog.String("component", name))
}

// Setup sends every logger to a JSON log file at path. The returned closer
// releases the file; after Close records are discarded again.
func Setup(path string, debug bool) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	SetOutput(f, debug)
	return closerFunc(func() error {
		setRoot(slog.NewTextHandler(io.Discard, nil))
		return f.Close()
	}), nil
}

// SetOutput sends every logger to w as JSON.
func SetOutput(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	setRoot(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// swapHandler replays its attrs and groups onto whatever root handler is
// active when a record is handled.
type swapHandler struct {
	ops []func(slog.Handler) slog.Handler
}

func (h *swapHandler) resolve() slog.Handler {
	hh := current()
	for _, op := range h.ops {
		hh = op(hh)
	}
	return hh
}

func (h *swapHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return current().Enabled(ctx, level)
}

func (h *swapHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.resolve().Handle(ctx, r)
}

func (h *swapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(hh slog.Handler) slog.Handler { return hh.WithAttrs(attrs) })
}

func (h *swapHandler) WithGroup(name string) slog.Handler {
	return h.with(func(hh slog.Handler) slog.Handler { return hh.WithGroup(name) })
}

func (h *swapHandler) with(op func(slog.Handler) slog.Handler) *swapHandler {
	ops := make([]func(slog.Handler) slog.Handler, len(h.ops), len(h.ops)+1)
	copy(ops, h.ops)
	return &swapHandler{ops: append(ops, op)}
}
