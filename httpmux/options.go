// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package httpmux

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/radixpath/radixpath"
)

type options struct {
	notFound              http.Handler
	registerer            prometheus.Registerer
	logger                *slog.Logger
	routerOpts            []radixpath.Option[http.Handler]
	middlewares           []Middleware
	redirectTrailingSlash bool
}

func defaultOptions() *options {
	return &options{
		notFound:              http.HandlerFunc(http.NotFound),
		logger:                slog.New(discardHandler{}),
		redirectTrailingSlash: true,
	}
}

// Option configures a [Mux].
type Option interface {
	apply(*options) error
}

type optionFunc func(*options) error

func (o optionFunc) apply(opts *options) error {
	return o(opts)
}

// WithRedirectTrailingSlash enables or disables automatic redirection if the current route can't be matched but a
// handler for the path with (without) the trailing slash exists. Requests are redirected with http status 301 for
// GET and HEAD, and 308 for all other methods. The root path and CONNECT requests are never redirected.
func WithRedirectTrailingSlash(enable bool) Option {
	return optionFunc(func(o *options) error {
		o.redirectTrailingSlash = enable
		return nil
	})
}

// WithNotFoundHandler registers an http.Handler that is called when no route matches and no default handler
// is registered. By default, [http.NotFound] is used.
func WithNotFoundHandler(handler http.Handler) Option {
	return optionFunc(func(o *options) error {
		if handler == nil {
			return fmt.Errorf("%w: not found handler cannot be nil", radixpath.ErrInvalidConfig)
		}
		o.notFound = handler
		return nil
	})
}

// WithMetrics records lookup outcomes and durations with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(o *options) error {
		if reg == nil {
			return fmt.Errorf("%w: registerer cannot be nil", radixpath.ErrInvalidConfig)
		}
		o.registerer = reg
		return nil
	})
}

// WithLogger sets the logger used to report redirects at debug level.
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(o *options) error {
		if logger == nil {
			return fmt.Errorf("%w: logger cannot be nil", radixpath.ErrInvalidConfig)
		}
		o.logger = logger
		return nil
	})
}

// WithRouterOptions applies opts to the router created by [New]. It's ignored by [NewWithRouter].
func WithRouterOptions(opts ...radixpath.Option[http.Handler]) Option {
	return optionFunc(func(o *options) error {
		o.routerOpts = append(o.routerOpts, opts...)
		return nil
	})
}

// WithMiddleware attaches middlewares to the Mux. Middlewares are applied in the order they are provided, the first
// one being the outermost. Nil middlewares are rejected.
func WithMiddleware(m ...Middleware) Option {
	return optionFunc(func(o *options) error {
		for _, mw := range m {
			if mw == nil {
				return fmt.Errorf("%w: middleware cannot be nil", radixpath.ErrInvalidConfig)
			}
		}
		o.middlewares = append(o.middlewares, m...)
		return nil
	})
}
