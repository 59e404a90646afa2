// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package radixpath

import (
	"iter"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

const defaultModifiedCache = 8192

// Txn is a read-write transaction on a [Router]. Registrations made through a Txn are only
// visible to the router once committed, and are visible to the Txn itself immediately.
// Each Txn must be finalized with [Txn.Commit] or [Txn.Abort]. A Txn is NOT thread-safe.
type Txn[H any] struct {
	r       *Router[H]
	tree    *Tree[H]
	def     H
	hasDef  bool
	settled bool
}

func newTxn[H any](r *Router[H], s *state[H]) *Txn[H] {
	writable, err := simplelru.NewLRU[*node[H], struct{}](defaultModifiedCache, nil)
	if err != nil {
		panic(err)
	}

	return &Txn[H]{
		r: r,
		tree: &Tree[H]{
			root:     s.tree.root,
			size:     s.tree.size,
			writable: writable,
		},
		def:    s.def,
		hasDef: s.hasDef,
	}
}

// Register registers handler for path in the transaction. See [Router.Register] for details.
func (txn *Txn[H]) Register(path string, handler H) error {
	if txn.settled {
		return ErrSettledTxn
	}

	if path == "" {
		return newInvalidPathError(path, "path must not be empty")
	}

	if NormalizeSlashes(path) == "/" {
		txn.def = handler
		txn.hasDef = true
		return nil
	}

	if path[0] != slashDelim {
		path = "/" + path
	}

	if err := txn.tree.Insert(path, handler); err != nil {
		return err
	}
	return nil
}

// SetDefault replaces the default handler in the transaction.
func (txn *Txn[H]) SetDefault(handler H) error {
	if txn.settled {
		return ErrSettledTxn
	}
	txn.def = handler
	txn.hasDef = true
	return nil
}

// Lookup performs a lookup against the transaction own view of the routes.
func (txn *Txn[H]) Lookup(path string) Match[H] {
	return lookup(txn.r.logger, txn.tree, txn.def, txn.hasDef, path)
}

// Len returns the number of routes registered in the transaction view.
func (txn *Txn[H]) Len() int {
	return txn.tree.Len()
}

// Routes returns a range iterator over the routes registered in the transaction view.
func (txn *Txn[H]) Routes() iter.Seq2[string, H] {
	return txn.tree.Routes()
}

// Commit publishes the transaction changes and releases the router write lock. Calling Commit
// on a settled transaction is a no-op.
func (txn *Txn[H]) Commit() {
	if txn.settled {
		return
	}
	txn.settled = true

	tree := &Tree[H]{root: txn.tree.root, size: txn.tree.size}
	txn.r.state.Store(&state[H]{tree: tree, def: txn.def, hasDef: txn.hasDef})
	txn.tree.writable = nil
	txn.r.mu.Unlock()

	txn.r.logger.Debug("transaction committed", "routes", tree.size)
}

// Abort discards the transaction changes and releases the router write lock. Calling Abort
// on a settled transaction is a no-op.
func (txn *Txn[H]) Abort() {
	if txn.settled {
		return
	}
	txn.settled = true
	txn.tree.writable = nil
	txn.r.mu.Unlock()
}
