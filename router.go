// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package radixpath

import (
	"context"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Router is a path router built on a radix tree. It normalizes the slashes of incoming
// paths and treats the root path "/" as the slot of a default handler, returned when
// nothing else matches.
//
// Lookups are lock-free and safe for concurrent use, including while routes are being
// registered. Writers are serialized and each write publishes a new version of the tree.
type Router[H any] struct {
	state  atomic.Pointer[state[H]]
	logger *slog.Logger
	mu     sync.Mutex
}

// state is an immutable snapshot of the routes and the default handler.
type state[H any] struct {
	tree   *Tree[H]
	def    H
	hasDef bool
}

// New returns a ready to use Router.
func New[H any](opts ...Option[H]) (*Router[H], error) {
	r := new(Router[H])
	r.logger = slog.New(discardHandler{})

	s := &state[H]{tree: NewTree[H]()}
	for _, opt := range opts {
		if err := opt.apply(r, s); err != nil {
			return nil, err
		}
	}

	r.state.Store(s)
	return r, nil
}

// MustNew is like New but panics on error.
func MustNew[H any](opts ...Option[H]) *Router[H] {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register registers handler for path. If path is "/" once normalized with [NormalizeSlashes],
// handler becomes the default handler. Otherwise path is registered as is, with a leading '/'
// added if missing: "/foo" and "/foo/" are distinct routes. It returns an
// [InvalidPathError] if path is empty or malformed, and a [RouteConflictError] if it conflicts
// with an already registered route. On error, the router is left unmodified.
// This function is safe for concurrent use by multiple goroutine and while the router is
// serving lookups.
func (r *Router[H]) Register(path string, handler H) error {
	txn := r.Txn()
	defer txn.Abort()

	if err := txn.Register(path, handler); err != nil {
		r.logger.Debug("route registration failed", slog.String("path", path), slog.Any("error", err))
		return err
	}

	txn.Commit()
	r.logger.Debug("route registered", slog.String("path", path))
	return nil
}

// MustRegister is a convenience wrapper for [Router.Register] and panics on error.
func (r *Router[H]) MustRegister(path string, handler H) {
	if err := r.Register(path, handler); err != nil {
		panic(err)
	}
}

// SetDefault replaces the default handler. This function is safe for concurrent use by
// multiple goroutine and while the router is serving lookups.
func (r *Router[H]) SetDefault(handler H) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.state.Load()
	r.state.Store(&state[H]{tree: old.tree, def: handler, hasDef: true})
}

// Default returns the default handler and whether one is set.
func (r *Router[H]) Default() (H, bool) {
	s := r.state.Load()
	return s.def, s.hasDef
}

// Lookup resolves path. It first looks up path as is, then its normalized form (see
// [NormalizeSlashes]) if it differs. If neither match, it returns the default handler with
// Kind [Fallback], or Kind [Redirect] if the first lookup recommended a trailing slash
// redirect. Without default handler and redirect recommendation, Kind is [NoMatch].
// Lookup is safe for concurrent use.
func (r *Router[H]) Lookup(path string) Match[H] {
	s := r.state.Load()
	return lookup(r.logger, s.tree, s.def, s.hasDef, path)
}

// Updates executes a function within the context of a read-write managed transaction. If no
// error is returned from the function then the transaction is committed. If an error is returned
// then the entire transaction is aborted. Updates returns any error returned by fn. This function
// is safe for concurrent use by multiple goroutine and while the router is serving lookups.
// However [Txn] itself is NOT tread-safe.
func (r *Router[H]) Updates(fn func(txn *Txn[H]) error) error {
	txn := r.Txn()
	defer func() {
		if p := recover(); p != nil {
			txn.Abort()
			panic(p)
		}
		txn.Abort()
	}()
	if err := fn(txn); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// Txn creates a new read-write transaction. It holds the router write lock until
// [Txn.Commit] or [Txn.Abort] is called, so each Txn must be finalized.
// See also [Router.Updates] for managed transaction.
func (r *Router[H]) Txn() *Txn[H] {
	r.mu.Lock()
	return newTxn(r, r.state.Load())
}

// Routes returns a range iterator over a point-in-time snapshot of the registered routes.
// The default handler is not part of the iteration.
func (r *Router[H]) Routes() iter.Seq2[string, H] {
	return r.state.Load().tree.Routes()
}

// Len returns the number of registered routes, excluding the default handler.
func (r *Router[H]) Len() int {
	return r.state.Load().tree.Len()
}

// String returns a dump of the current tree.
func (r *Router[H]) String() string {
	return r.state.Load().tree.String()
}

func lookup[H any](logger *slog.Logger, tree *Tree[H], def H, hasDef bool, path string) Match[H] {
	debug := logger.Enabled(context.Background(), slog.LevelDebug)

	m := tree.Lookup(path)
	if m.Kind == Resolved {
		if debug {
			logger.LogAttrs(context.Background(), slog.LevelDebug, "route resolved",
				slog.String("path", path),
				slog.String("route", m.Route),
			)
		}
		return m
	}

	tsr := m.Kind == Redirect && path != "/"
	if normalized := NormalizeSlashes(path); normalized != path {
		if nm := tree.Lookup(normalized); nm.Kind == Resolved {
			if debug {
				logger.LogAttrs(context.Background(), slog.LevelDebug, "route resolved after normalization",
					slog.String("path", path),
					slog.String("normalized", normalized),
					slog.String("route", nm.Route),
				)
			}
			return nm
		}
	}

	fallback := Match[H]{Kind: NoMatch, Handler: def, hasHandler: hasDef}
	switch {
	case tsr:
		fallback.Kind = Redirect
	case hasDef:
		fallback.Kind = Fallback
	}

	if debug {
		logger.LogAttrs(context.Background(), slog.LevelDebug, "no route matched",
			slog.String("path", path),
			slog.String("outcome", fallback.Kind.String()),
		)
	}
	return fallback
}
