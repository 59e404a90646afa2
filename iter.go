// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package radixpath

import "iter"

func newIterator[H any](n *node[H]) *iterator[H] {
	return &iterator[H]{
		stack: []stack[H]{{edges: []*node[H]{n}}},
	}
}

// iterator walks the tree depth first, in children order.
type iterator[H any] struct {
	stack   []stack[H]
	current *node[H]
	path    string
}

type stack[H any] struct {
	path  string
	edges []*node[H]
}

// fullPath returns the concatenation of the segments from the root to the current node.
func (it *iterator[H]) fullPath() string {
	return it.path
}

func (it *iterator[H]) node() *node[H] {
	return it.current
}

func (it *iterator[H]) hasNextLeaf() bool {
	for it.hasNext() {
		if it.current.isLeaf() {
			return true
		}
	}
	return false
}

func (it *iterator[H]) hasNext() bool {
	if len(it.stack) > 0 {
		n := len(it.stack)
		last := it.stack[n-1]
		elem := last.edges[0]

		if len(last.edges) > 1 {
			it.stack[n-1].edges = last.edges[1:]
		} else {
			it.stack = it.stack[:n-1]
		}

		if len(elem.children) > 0 {
			it.stack = append(it.stack, stack[H]{last.path + elem.path, elem.children})
		}

		it.current = elem
		it.path = last.path + elem.path
		return true
	}

	it.current = nil
	it.path = ""
	return false
}

// Routes returns a range iterator over all registered routes and their handlers, in tree
// order: depth first, siblings by descending priority.
func (t *Tree[H]) Routes() iter.Seq2[string, H] {
	return func(yield func(string, H) bool) {
		it := newIterator(t.root)
		for it.hasNextLeaf() {
			if !yield(it.node().route, it.node().handler) {
				return
			}
		}
	}
}

// nodes returns a range iterator over every node of the tree along with the concatenated
// segments leading to it.
func (t *Tree[H]) nodes() iter.Seq2[string, *node[H]] {
	return func(yield func(string, *node[H]) bool) {
		it := newIterator(t.root)
		for it.hasNext() {
			if !yield(it.fullPath(), it.node()) {
				return
			}
		}
	}
}
