// The code in this package is derivative of https://gitlab.com/greyxor/slogor.
// Mount of this source code is governed by a MIT license that can be found
// at https://gitlab.com/greyxor/slogor/-/blob/main/LICENSE?ref_type=heads.

// Package slogpretty provides a slog.Handler writing colored, human-friendly lines, used to
// trace route registration and lookups during development.
package slogpretty

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"
)

const (
	maxBufferSize     = 16 << 10
	initialBufferSize = 1024
	prefix            = "[RADIXPATH] "
)

var _ slog.Handler = (*Handler)(nil)

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, initialBufferSize)
		return &b
	},
}

var (
	// DefaultHandler writes errors to os.Stderr and everything else to os.Stdout, from debug level.
	DefaultHandler = New(os.Stdout, os.Stderr, slog.LevelDebug)
	timeFormat     = fmt.Sprintf("%s %s", time.DateOnly, time.TimeOnly)
)

// Handler is a slog.Handler producing colored lines. Records at error level and above go to
// the error writer, everything else to the output writer.
type Handler struct {
	out   io.Writer
	err   io.Writer
	level slog.Leveler
	// attrs added with WithAttrs, keys already qualified by the enclosing groups.
	attrs []slog.Attr
	group string
}

// New returns a Handler writing to out and err. Writes are serialized per writer.
func New(out, err io.Writer, level slog.Leveler) *Handler {
	lo := &lockedWriter{w: out}
	le := lo
	if err != out {
		le = &lockedWriter{w: err}
	}
	return &Handler{out: lo, err: le, level: level}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	bufp := bufPool.Get().(*[]byte)
	buf := (*bufp)[:0]
	defer func() {
		if cap(buf) <= maxBufferSize {
			*bufp = buf[:0]
			bufPool.Put(bufp)
		}
	}()

	buf = append(buf, prefix...)
	if !record.Time.IsZero() {
		buf = append(buf, faint...)
		buf = record.Time.AppendFormat(buf, timeFormat)
		buf = append(buf, normalIntensity...)
		buf = append(buf, ' ')
	}

	buf = append(buf, "| "...)
	buf = appendLevel(buf, record.Level)
	buf = append(buf, " | "...)
	buf = append(buf, record.Message...)
	buf = append(buf, " | "...)

	for _, attr := range h.attrs {
		buf = appendAttr(buf, record.Level, "", attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		buf = appendAttr(buf, record.Level, h.group, attr)
		return true
	})

	buf[len(buf)-1] = '\n'

	w := h.out
	if record.Level >= slog.LevelError {
		w = h.err
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write buffer: %w", err)
	}
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := h.clone()
	for _, attr := range attrs {
		attr.Key = h.group + attr.Key
		h2.attrs = append(h2.attrs, attr)
	}
	return h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := h.clone()
	h2.group += name + "."
	return h2
}

func (h *Handler) clone() *Handler {
	return &Handler{
		out:   h.out,
		err:   h.err,
		level: h.level,
		attrs: slices.Clip(h.attrs),
		group: h.group,
	}
}

// appendLevel writes the level label padded to five characters.
func appendLevel(buf []byte, level slog.Level) []byte {
	switch {
	case level >= slog.LevelError:
		buf = append(buf, fgRed...)
	case level >= slog.LevelWarn:
		buf = append(buf, fgYellow...)
	case level >= slog.LevelInfo:
		buf = append(buf, fgGreen...)
	default:
		buf = append(buf, fgMagenta...)
	}
	label := level.String()
	buf = append(buf, label...)
	for i := len(label); i < 5; i++ {
		buf = append(buf, ' ')
	}
	return append(buf, reset...)
}

// appendAttr writes attr as key=value followed by a space. Group values are flattened with
// dotted keys.
func appendAttr(buf []byte, level slog.Level, group string, attr slog.Attr) []byte {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return buf
	}

	if attr.Value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			group += attr.Key + "."
		}
		for _, ga := range attr.Value.Group() {
			buf = appendAttr(buf, level, group, ga)
		}
		return buf
	}

	buf = append(buf, faint...)
	buf = append(buf, bold...)
	buf = append(buf, group...)
	buf = append(buf, attr.Key...)
	buf = append(buf, '=')
	buf = append(buf, normalIntensity...)

	switch attr.Key {
	case "outcome":
		buf = appendBadge(buf, outcomeColor(attr.Value.String()), attr.Value.String())
	case "status":
		buf = appendBadge(buf, levelColor(level), attr.Value.String())
	case "route":
		buf = append(buf, fgGreen...)
		buf = append(buf, attr.Value.String()...)
	case "location", "normalized":
		buf = append(buf, fgYellow...)
		buf = append(buf, attr.Value.String()...)
	case "latency":
		buf = append(buf, latencyColor(attr.Value.Duration())...)
		buf = append(buf, attr.Value.String()...)
	case "error":
		buf = append(buf, fgRed...)
		buf = append(buf, attr.Value.String()...)
	default:
		buf = append(buf, fgCyan...)
		buf = append(buf, attr.Value.String()...)
	}

	buf = append(buf, reset...)
	return append(buf, ' ')
}

func appendBadge(buf []byte, color, value string) []byte {
	buf = append(buf, color...)
	buf = append(buf, ' ')
	buf = append(buf, value...)
	return append(buf, ' ')
}

type lockedWriter struct {
	w io.Writer
	sync.Mutex
}

func (w *lockedWriter) Write(p []byte) (n int, err error) {
	w.Lock()
	n, err = w.w.Write(p)
	w.Unlock()
	return
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return bgRed
	case level >= slog.LevelWarn:
		return bgYellow
	case level >= slog.LevelInfo:
		return bgBlue
	default:
		return bgMagenta
	}
}

func outcomeColor(outcome string) string {
	switch outcome {
	case "resolved":
		return bgGreen
	case "redirect":
		return bgYellow
	case "fallback":
		return bgBlue
	default:
		return bgRed
	}
}

func latencyColor(d time.Duration) string {
	switch {
	case d < 100*time.Millisecond:
		return fgGreen
	case d < 500*time.Millisecond:
		return fgYellow
	default:
		return fgRed
	}
}
