package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// PrettyHandler renders records as "[LEVEL] message key=value ..." with colored badges.
type PrettyHandler struct {
	opts   *slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	groups []string

	badge map[slog.Level]*color.Color
	key   *color.Color
	errc  *color.Color
	count *color.Color
}

func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions, noColor bool) *PrettyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	h := &PrettyHandler{
		opts: opts,
		mu:   &sync.Mutex{},
		w:    w,
		badge: map[slog.Level]*color.Color{
			slog.LevelDebug: color.New(color.FgHiBlack),
			slog.LevelInfo:  color.New(color.FgCyan),
			slog.LevelWarn:  color.New(color.FgYellow),
			slog.LevelError: color.New(color.FgRed),
		},
		key:   color.New(color.FgHiBlack),
		errc:  color.New(color.FgRed),
		count: color.New(color.FgGreen),
	}
	if noColor {
		for _, c := range h.badge {
			c.DisableColor()
		}
		h.key.DisableColor()
		h.errc.DisableColor()
		h.count.DisableColor()
	}
	return h
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelWarn
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	b.WriteString(h.formatLevel(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		h.appendAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&b, a)
		return true
	})

	if h.opts.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		if frame.File != "" {
			b.WriteByte(' ')
			b.WriteString(h.key.Sprintf("(%s:%d)", filepath.Base(frame.File), frame.Line))
		}
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append(append([]slog.Attr{}, h.attrs...), h.qualify(attrs)...)
	return &cp
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	cp := *h
	cp.groups = append(append([]string{}, h.groups...), name)
	return &cp
}

// qualify prefixes attribute keys with the handler's open groups.
func (h *PrettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if len(h.groups) == 0 {
		return attrs
	}
	prefix := strings.Join(h.groups, ".") + "."
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}
	return out
}

func (h *PrettyHandler) formatLevel(level slog.Level) string {
	c, ok := h.badge[level]
	if !ok {
		return fmt.Sprintf("[%s]", level.String())
	}
	return c.Sprintf("[%-5s]", level.String())
}

func (h *PrettyHandler) appendAttr(b *strings.Builder, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.appendAttr(b, slog.Attr{Key: a.Key + "." + ga.Key, Value: ga.Value})
		}
		return
	}
	key := a.Key
	if len(h.groups) > 0 && !strings.Contains(key, ".") {
		key = strings.Join(h.groups, ".") + "." + key
	}

	b.WriteByte(' ')
	switch a.Key {
	case "error", "err":
		b.WriteString(h.errc.Sprintf("%s=%s", key, a.Value.String()))
	case "count", "total", "prs":
		b.WriteString(h.count.Sprintf("%s=%s", key, a.Value.String()))
	default:
		b.WriteString(h.key.Sprintf("%s=%s", key, a.Value.String()))
	}
}
