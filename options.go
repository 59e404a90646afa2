// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package radixpath

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/radixpath/radixpath/internal/slogpretty"
)

// Option configures a [Router].
type Option[H any] interface {
	apply(r *Router[H], s *state[H]) error
}

type optionFunc[H any] func(r *Router[H], s *state[H]) error

func (o optionFunc[H]) apply(r *Router[H], s *state[H]) error {
	return o(r, s)
}

// WithLogger sets the logger used to report registrations and lookups at debug level.
// By default, nothing is logged.
func WithLogger[H any](logger *slog.Logger) Option[H] {
	return optionFunc[H](func(r *Router[H], _ *state[H]) error {
		if logger == nil {
			return fmt.Errorf("%w: logger cannot be nil", ErrInvalidConfig)
		}
		r.logger = logger
		return nil
	})
}

// WithLogHandler is like WithLogger but builds the logger from handler.
func WithLogHandler[H any](handler slog.Handler) Option[H] {
	return optionFunc[H](func(r *Router[H], _ *state[H]) error {
		if handler == nil {
			return fmt.Errorf("%w: log handler cannot be nil", ErrInvalidConfig)
		}
		r.logger = slog.New(handler)
		return nil
	})
}

// WithPrettyLogger logs registrations and lookups to os.Stdout and os.Stderr using a
// human-friendly colored format. It's intended for debugging.
func WithPrettyLogger[H any]() Option[H] {
	return WithLogHandler[H](slogpretty.DefaultHandler)
}

// WithDefaultHandler sets the handler returned by lookups that match no route. It's
// equivalent to registering handler for "/".
func WithDefaultHandler[H any](handler H) Option[H] {
	return optionFunc[H](func(_ *Router[H], s *state[H]) error {
		s.def = handler
		s.hasDef = true
		return nil
	})
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
