// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

// Package ginmux resolves gin requests with a [radixpath.Router]. The handler returned by
// [Handler] is meant to be installed with gin.Engine.NoRoute or on a catch-all route, so that
// gin delegates the path matching to the router.
package ginmux

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/radixpath/radixpath"
)

type options struct {
	notFound gin.HandlerFunc
	redirect bool
}

func defaultOptions() *options {
	return &options{
		notFound: func(c *gin.Context) {
			c.AbortWithStatus(http.StatusNotFound)
		},
		redirect: true,
	}
}

// Option configures the handler returned by [Handler].
type Option interface {
	apply(*options) error
}

type optionFunc func(*options) error

func (o optionFunc) apply(opts *options) error {
	return o(opts)
}

// WithRedirectTrailingSlash enables or disables the trailing slash redirect. It's enabled by default.
func WithRedirectTrailingSlash(enable bool) Option {
	return optionFunc(func(o *options) error {
		o.redirect = enable
		return nil
	})
}

// WithNotFoundHandler sets the handler called when no route matches and no default handler is
// registered. By default, the request is aborted with http status 404.
func WithNotFoundHandler(handler gin.HandlerFunc) Option {
	return optionFunc(func(o *options) error {
		if handler == nil {
			return fmt.Errorf("%w: not found handler cannot be nil", radixpath.ErrInvalidConfig)
		}
		o.notFound = handler
		return nil
	})
}

// Handler returns a gin.HandlerFunc dispatching requests to the handler registered in r for the
// request path. Captured parameters are appended to gin.Context.Params.
func Handler(r *radixpath.Router[gin.HandlerFunc], opts ...Option) (gin.HandlerFunc, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: router cannot be nil", radixpath.ErrInvalidConfig)
	}

	o := defaultOptions()
	for _, opt := range opts {
		if err := opt.apply(o); err != nil {
			return nil, err
		}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		m := r.Lookup(path)

		switch m.Kind {
		case radixpath.Resolved:
			for _, p := range m.Params {
				c.Params = append(c.Params, gin.Param{Key: p.Key, Value: p.Value})
			}
			m.Handler(c)
			return
		case radixpath.Redirect:
			if o.redirect && c.Request.Method != http.MethodConnect {
				redirectTrailingSlash(c, path)
				return
			}
		}

		if m.HasHandler() {
			m.Handler(c)
			return
		}
		o.notFound(c)
	}, nil
}

// MustHandler is a convenience wrapper for [Handler] and panics on error.
func MustHandler(r *radixpath.Router[gin.HandlerFunc], opts ...Option) gin.HandlerFunc {
	h, err := Handler(r, opts...)
	if err != nil {
		panic(err)
	}
	return h
}

func redirectTrailingSlash(c *gin.Context, path string) {
	code := http.StatusMovedPermanently
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		code = http.StatusPermanentRedirect
	}

	url := *c.Request.URL
	url.Path = radixpath.FixTrailingSlash(path)
	url.RawPath = ""

	c.Redirect(code, url.String())
	c.Abort()
}
