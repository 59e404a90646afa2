// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

// Package httpmux serves HTTP requests with handlers resolved by a [radixpath.Router].
package httpmux

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/radixpath/radixpath"
)

// Mux is an http.Handler dispatching requests to the handler registered for the request path.
// Captured parameters are available from the request context with [radixpath.ParamsFromContext].
type Mux struct {
	r        *radixpath.Router[http.Handler]
	handler  http.Handler
	notFound http.Handler
	metrics  *metrics
	logger   *slog.Logger
	redirect bool
}

// New returns a ready to use Mux. By default, trailing slash redirect is enabled and unmatched
// requests are answered with [http.NotFound].
func New(opts ...Option) (*Mux, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	r, err := radixpath.New(o.routerOpts...)
	if err != nil {
		return nil, err
	}
	return newMux(r, o)
}

// NewWithRouter returns a Mux serving the routes of r.
func NewWithRouter(r *radixpath.Router[http.Handler], opts ...Option) (*Mux, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return newMux(r, o)
}

func applyOptions(opts []Option) (*options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt.apply(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newMux(r *radixpath.Router[http.Handler], o *options) (*Mux, error) {
	mux := &Mux{
		r:        r,
		notFound: o.notFound,
		logger:   o.logger,
		redirect: o.redirectTrailingSlash,
	}

	if o.registerer != nil {
		m, err := newMetrics(o.registerer)
		if err != nil {
			return nil, err
		}
		mux.metrics = m
	}

	mux.handler = http.HandlerFunc(mux.serve)
	for i := len(o.middlewares) - 1; i >= 0; i-- {
		mux.handler = o.middlewares[i](mux.handler)
	}

	return mux, nil
}

// Handle registers handler for pattern. Registering "/" sets the handler served when no other
// route matches. See [radixpath.Router.Register] for the pattern syntax and errors.
func (m *Mux) Handle(pattern string, handler http.Handler) error {
	return m.r.Register(pattern, handler)
}

// HandleFunc is like Handle but takes an [http.HandlerFunc].
func (m *Mux) HandleFunc(pattern string, fn http.HandlerFunc) error {
	return m.r.Register(pattern, fn)
}

// Router returns the underlying router.
func (m *Mux) Router() *radixpath.Router[http.Handler] {
	return m.r
}

// ServeHTTP is the main entry point to serve a request. It handles all incoming HTTP requests.
func (m *Mux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

func (m *Mux) serve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path := r.URL.Path

	match := m.r.Lookup(path)
	m.observe(match.Kind, start)

	switch match.Kind {
	case radixpath.Resolved:
		if len(match.Params) > 0 {
			r = r.WithContext(radixpath.WithParams(r.Context(), match.Params))
		}
		match.Handler.ServeHTTP(w, r)
		return
	case radixpath.Redirect:
		if m.redirect && r.Method != http.MethodConnect && path != "/" {
			m.redirectTrailingSlash(w, r, path)
			return
		}
	}

	if match.HasHandler() {
		match.Handler.ServeHTTP(w, r)
		return
	}
	m.notFound.ServeHTTP(w, r)
}

func (m *Mux) redirectTrailingSlash(w http.ResponseWriter, r *http.Request, path string) {
	code := http.StatusMovedPermanently
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		// Will be redirected only with the same method (SEO friendly)
		code = http.StatusPermanentRedirect
	}

	url := *r.URL
	url.Path = radixpath.FixTrailingSlash(path)
	url.RawPath = ""

	if m.logger.Enabled(r.Context(), slog.LevelDebug) {
		m.logger.LogAttrs(r.Context(), slog.LevelDebug, "trailing slash redirect",
			slog.String("path", path),
			slog.String("location", url.String()),
			slog.Int("status", code),
		)
	}

	http.Redirect(w, r, url.String(), code)
}

func (m *Mux) observe(kind radixpath.MatchKind, start time.Time) {
	if m.metrics == nil {
		return
	}
	m.metrics.observe(kind, time.Since(start))
}

var _ http.Handler = (*Mux)(nil)

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
