// Package logging builds the zerolog logger of the command line and bridges it to log/slog so that
// the router debug output ends up in the same sink.
package logging

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"

	"github.com/radixpath/radixpath/internal/config"
)

// NewLogger returns a zerolog logger writing to out in the format and from the level of conf.
func NewLogger(out io.Writer, conf config.LoggingConfig) zerolog.Logger {
	if conf.Format == config.LogJSONFormat {
		return zerolog.New(out).Level(conf.Level).With().
			Timestamp().
			Logger()
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).Level(conf.Level).With().
		Timestamp().
		Logger()
}

// NewSlogHandler returns a slog.Handler forwarding records to logger. Records below slog.LevelInfo
// are written at zerolog.DebugLevel.
func NewSlogHandler(logger *zerolog.Logger) slog.Handler {
	return levelHandler{Handler: logr.ToSlogHandler(zerologr.New(logger))}
}

// levelHandler maps slog debug levels to logr verbosity 1, which zerologr writes at debug level.
// Without it, slog.LevelDebug maps to verbosity 4 and is never written.
type levelHandler struct {
	slog.Handler
}

func (h levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.Handler.Enabled(ctx, mapLevel(level))
}

func (h levelHandler) Handle(ctx context.Context, r slog.Record) error {
	r.Level = mapLevel(r.Level)
	return h.Handler.Handle(ctx, r)
}

func (h levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return levelHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h levelHandler) WithGroup(name string) slog.Handler {
	return levelHandler{Handler: h.Handler.WithGroup(name)}
}

func mapLevel(level slog.Level) slog.Level {
	if level < slog.LevelInfo {
		return slog.Level(-1)
	}

	return level
}
