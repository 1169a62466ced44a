// Package slogutil provides the slog handler and logger helpers used by apicheck.
package slogutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// TextHandler formats records as
// TIMESTAMP [level] Message | key=value key=value
//
// String values containing spaces, quotes or '=' are quoted so distribution
// paths stay unambiguous. With color enabled the level token is colored.
type TextHandler struct {
	w      io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
	styles *levelStyles
	mu     *sync.Mutex
}

type levelStyles struct {
	debug, info, warn, error lipgloss.Style
}

func newLevelStyles(w io.Writer) *levelStyles {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.ANSI256)
	return &levelStyles{
		debug: r.NewStyle().Foreground(lipgloss.Color("244")),
		info:  r.NewStyle().Foreground(lipgloss.Color("39")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("214")),
		error: r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

func (s *levelStyles) render(level slog.Level, text string) string {
	switch {
	case level < slog.LevelInfo:
		return s.debug.Render(text)
	case level < slog.LevelWarn:
		return s.info.Render(text)
	case level < slog.LevelError:
		return s.warn.Render(text)
	default:
		return s.error.Render(text)
	}
}

// NewTextHandler creates a new text log handler.
func NewTextHandler(w io.Writer, opts *slog.HandlerOptions) *TextHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &TextHandler{
		w:     w,
		level: level,
		mu:    &sync.Mutex{},
	}
}

// WithColor returns a copy of the handler that colors level tokens.
func (h *TextHandler) WithColor(enabled bool) *TextHandler {
	c := h.clone()
	c.styles = nil
	if enabled {
		c.styles = newLevelStyles(h.w)
	}
	return c
}

// Enabled reports whether the handler handles records at the given level.
func (h *TextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes the log record.
func (h *TextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	buf.WriteString(r.Time.UTC().Format(time.RFC3339))
	buf.WriteString(" ")
	token := "[" + levelString(r.Level) + "]"
	if h.styles != nil {
		token = h.styles.render(r.Level, token)
	}
	buf.WriteString(token)
	buf.WriteString(" ")
	buf.WriteString(r.Message)

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.resolveAttr(a))
		return true
	})

	if len(attrs) > 0 {
		buf.WriteString(" |")
		for _, a := range attrs {
			if a.Key == "" {
				continue
			}
			buf.WriteString(" ")
			buf.WriteString(a.Key)
			buf.WriteString("=")
			buf.WriteString(formatValue(a.Value))
		}
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

// WithAttrs returns a new handler with the given attributes added.
func (h *TextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	c.attrs = make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(c.attrs, h.attrs)
	for _, a := range attrs {
		c.attrs = append(c.attrs, h.resolveAttr(a))
	}
	return c
}

// WithGroup returns a new handler with the given group name added.
func (h *TextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.groups = append(append([]string(nil), h.groups...), name)
	return c
}

func (h *TextHandler) clone() *TextHandler {
	c := *h
	return &c
}

// resolveAttr prefixes the key with the open groups, outermost first.
func (h *TextHandler) resolveAttr(a slog.Attr) slog.Attr {
	if len(h.groups) == 0 {
		return a
	}
	return slog.Attr{Key: strings.Join(h.groups, ".") + "." + a.Key, Value: a.Value}
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "debug"
	case level < slog.LevelWarn:
		return "info"
	case level < slog.LevelError:
		return "warn"
	default:
		return "error"
	}
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	default:
		return fmt.Sprint(v.Any())
	}
}
