// Package logging configures the process-wide slog logger: JSON to a
// rotating file via lumberjack, or a text handler on stderr, which colorizes
// level names via fatih/color when Color is set.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how logs are written.
type Config struct {
	// FilePath, if non-empty, directs JSON logs to a lumberjack-rotated
	// file instead of stderr.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Debug raises the minimum level to slog.LevelDebug.
	Debug bool
	// Color selects the ANSI-colorized stderr handler instead of the plain
	// text one. Ignored when FilePath is set, since file output is always
	// plain JSON.
	Color bool
}

// New builds and installs the default slog.Logger per cfg, returning it for
// callers that want an explicit reference alongside slog.Default().
func New(cfg Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	switch {
	case cfg.FilePath != "":
		handler = slog.NewJSONHandler(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: cfg.MaxBackups,
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
			Compress:   true,
		}, &slog.HandlerOptions{Level: level})
	case cfg.Color:
		handler = newColorHandler(os.Stderr, level)
	default:
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func orDefault(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

var levelColors = map[slog.Level]*color.Color{
	slog.LevelDebug: color.New(color.FgCyan),
	slog.LevelInfo:  color.New(color.FgGreen),
	slog.LevelWarn:  color.New(color.FgYellow),
	slog.LevelError: color.New(color.FgRed, color.Bold),
}

// colorHandler renders one human-readable line per record, with the level
// name colorized via fatih/color. fatih/color handles TTY detection and
// NO_COLOR itself, so a redirected stderr degrades to plain text.
type colorHandler struct {
	out   io.Writer
	level slog.Level
	attrs string
	mu    *sync.Mutex
}

func newColorHandler(out io.Writer, level slog.Level) *colorHandler {
	return &colorHandler{out: out, level: level, mu: &sync.Mutex{}}
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	if !r.Time.IsZero() {
		b.WriteString(r.Time.Format("15:04:05.000"))
		b.WriteByte(' ')
	}
	c, ok := levelColors[r.Level]
	if !ok {
		c = color.New(color.Reset)
	}
	b.WriteString(c.Sprintf("%-5s", r.Level.String()))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	nh.attrs = b.String()
	return &nh
}

// WithGroup flattens groups: the CLI's log call sites use top-level attrs
// only, so qualified keys would never differ from the flat rendering.
func (h *colorHandler) WithGroup(string) slog.Handler { return h }
