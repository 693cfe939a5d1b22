package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultSinkSize is the number of lines buffered before new ones are dropped
const DefaultSinkSize = 256

// LineSink collects formatted log lines for display. Writes never block;
// lines are dropped while the buffer is full.
type LineSink struct {
	ch chan string
}

// NewLineSink creates a sink buffering up to size lines
func NewLineSink(size int) *LineSink {
	if size <= 0 {
		size = DefaultSinkSize
	}
	return &LineSink{ch: make(chan string, size)}
}

// Lines returns the channel of formatted lines
func (s *LineSink) Lines() <-chan string {
	return s.ch
}

// Handler returns a slog handler writing to the sink
func (s *LineSink) Handler(level slog.Leveler) slog.Handler {
	return &sinkHandler{sink: s, level: level}
}

func (s *LineSink) push(line string) {
	select {
	case s.ch <- line:
	default:
	}
}

type sinkHandler struct {
	sink   *LineSink
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

func (h *sinkHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *sinkHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s %s", r.Time.Format("15:04:05"), levelName(r.Level), r.Message)
	write := func(prefix string, a slog.Attr) {
		if a.Equal(slog.Attr{}) {
			return
		}
		fmt.Fprintf(&b, " %s%s=%v", prefix, a.Key, a.Value.Resolve())
	}
	// stored attrs already carry their group prefix
	for _, a := range h.attrs {
		write("", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		write(h.prefix, a)
		return true
	})
	h.sink.push(b.String())
	return nil
}

func (h *sinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *sinkHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
