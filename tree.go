// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package radixpath

import (
	"strings"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Tree is a radix tree mapping path patterns to handlers of type H. Patterns may contain
// named parameters (":name") matching a single path segment and a trailing catch-all
// ("*name") matching the rest of the path.
//
// A Tree is not safe for concurrent use when modified directly with [Tree.Insert]. The
// [Router] wraps it with copy-on-write transactions so that lookups can run concurrently
// with registrations.
type Tree[H any] struct {
	root *node[H]
	// writable holds nodes cloned or created in the current transaction. When nil,
	// the tree is modified in place.
	writable *simplelru.LRU[*node[H], struct{}]
	size     int
}

// NewTree returns an empty tree.
func NewTree[H any]() *Tree[H] {
	return &Tree[H]{root: new(node[H])}
}

// Insert registers handler for path. It returns an [InvalidPathError] if path is malformed
// and a [RouteConflictError] if path conflicts with, or is identical to, an already registered
// pattern. On error, the tree is left unmodified.
func (t *Tree[H]) Insert(path string, handler H) error {
	numParams, err := parsePath(path)
	if err != nil {
		return err
	}

	if err = t.conflict(path); err != nil {
		return err
	}

	t.insert(path, handler, numParams)
	t.size++
	return nil
}

// Lookup returns the handler registered for path along with the captured parameters. If no
// handler is found, the returned [Match] reports whether a route exists for the same path with
// (or without) a trailing slash. Lookup never modifies the tree.
func (t *Tree[H]) Lookup(path string) Match[H] {
	n, params, tsr := t.lookup(path)
	if n != nil {
		return Match[H]{
			Kind:    Resolved,
			Route:   n.route,
			Handler: n.handler,
			Params:  params,
		}
	}
	if tsr {
		return Match[H]{Kind: Redirect}
	}
	return Match[H]{Kind: NoMatch}
}

// Has reports whether path is registered as is. Unlike Lookup, wildcards are not expanded.
func (t *Tree[H]) Has(path string) bool {
	n, _, _ := t.lookup(path)
	return n != nil && n.route == path
}

// Len returns the number of registered routes.
func (t *Tree[H]) Len() int {
	return t.size
}

// String returns a dump of the tree. Each line holds a node priority, max params count,
// path, number of children, registered route (or <>), wildcard flag and type.
func (t *Tree[H]) String() string {
	return t.root.String()
}

// conflict walks the tree read-only along the way insert would go and reports any error
// that would make the insertion of path fail.
func (t *Tree[H]) conflict(path string) error {
	fullPath := path
	n := t.root
	if n.path == "" && len(n.children) == 0 {
		return nil
	}

	for {
		i := longestCommonPrefix(path, n.path)
		split := i < len(n.path)

		if i == len(path) {
			if !split && n.isLeaf() {
				return newDuplicateError(fullPath)
			}
			return nil
		}

		path = path[i:]
		if split {
			// After the split, n has exactly one static child.
			if isWildcard(path[0]) {
				return newChildrenConflictError(fullPath, path, fullPath[:len(fullPath)-len(path)]+n.path[i:])
			}
			return nil
		}

		if n.wildChild {
			n = n.children[0]
			if !wildcardMatch(path, n.path) {
				return newWildcardConflictError(fullPath, path, n)
			}
			continue
		}

		c := path[0]
		if n.nType == param && c == slashDelim && len(n.children) == 1 {
			n = n.children[0]
			continue
		}

		if idx := n.indexOf(c); idx >= 0 {
			n = n.children[idx]
			continue
		}

		if isWildcard(c) {
			prefix := fullPath[:len(fullPath)-len(path)]
			if len(n.children) > 0 {
				return newChildrenConflictError(fullPath, path, prefix+string(n.indices))
			}
			if c == catchAllDelim {
				return &RouteConflictError{
					Path:     fullPath,
					Segment:  path,
					Existing: prefix,
					Reason:   "catch-all conflicts with existing handle for the path segment root in path",
				}
			}
		}
		return nil
	}
}

// insert applies the insertion of path. Validation and conflict detection must have been
// done beforehand: insert panics if it encounters an inconsistent state.
func (t *Tree[H]) insert(path string, handler H, numParams uint16) {
	fullPath := path
	n := t.own(t.root)
	t.root = n
	n.priority++

	// Empty tree
	if n.path == "" && len(n.children) == 0 {
		n.maxParams = max(n.maxParams, numParams)
		t.insertChild(n, numParams, path, fullPath, handler)
		n.nType = root
		return
	}

walk:
	for {
		if numParams > n.maxParams {
			n.maxParams = numParams
		}

		i := longestCommonPrefix(path, n.path)
		if i < len(n.path) {
			t.markWritable(n.splitEdge(i))
		}

		if i == len(path) {
			if n.isLeaf() {
				panic("internal error: a handler is already registered for path '" + fullPath + "'")
			}
			n.setHandler(handler, fullPath)
			return
		}

		path = path[i:]

		if n.wildChild {
			n = t.ownChild(n, 0)
			n.priority++

			if numParams > n.maxParams {
				n.maxParams = numParams
			}
			if numParams > 0 {
				numParams--
			}

			if !wildcardMatch(path, n.path) {
				panic("internal error: wildcard '" + n.path + "' does not match path '" + fullPath + "'")
			}
			continue walk
		}

		c := path[0]

		// slash after param
		if n.nType == param && c == slashDelim && len(n.children) == 1 {
			n = t.ownChild(n, 0)
			n.priority++
			continue walk
		}

		if idx := n.indexOf(c); idx >= 0 {
			t.ownChild(n, idx)
			idx = n.incrementChildPriority(idx)
			n = n.children[idx]
			continue walk
		}

		if !isWildcard(c) {
			child := t.markWritable(&node[H]{maxParams: numParams})
			n.indices = append(n.indices, c)
			n.children = append(n.children, child)
			idx := n.incrementChildPriority(len(n.children) - 1)
			n = n.children[idx]
		}
		t.insertChild(n, numParams, path, fullPath, handler)
		return
	}
}

// insertChild inserts the remaining path under n, which must be writable, splitting it
// into static, param and catch-all nodes.
func (t *Tree[H]) insertChild(n *node[H], numParams uint16, path, fullPath string, handler H) {
	var offset int

	for i := 0; i < len(path); i++ {
		c := path[i]
		if !isWildcard(c) {
			continue
		}

		end := i + 1
		for end < len(path) && path[end] != slashDelim {
			end++
		}

		if len(n.children) > 0 {
			panic("internal error: wildcard route '" + path[i:end] + "' conflicts with existing children in path '" + fullPath + "'")
		}

		if c == paramDelim {
			// split path at the beginning of the wildcard
			if i > 0 {
				n.path = path[offset:i]
				offset = i
			}

			child := t.markWritable(&node[H]{nType: param, maxParams: numParams})
			n.children = []*node[H]{child}
			n.wildChild = true
			n = child
			n.priority++
			if numParams > 0 {
				numParams--
			}

			// if the path doesn't end with the wildcard, then there will be another
			// non-wildcard subpath starting with '/'
			if end < len(path) {
				n.path = path[offset:end]
				offset = end

				child = t.markWritable(&node[H]{maxParams: numParams, priority: 1})
				n.children = []*node[H]{child}
				n = child
			}

			i = end - 1
			continue
		}

		if len(n.path) > 0 && n.path[len(n.path)-1] == slashDelim {
			panic("internal error: catch-all conflicts with existing handle for the path segment root in path '" + fullPath + "'")
		}

		i--
		if path[i] != slashDelim {
			panic("internal error: no / before catch-all in path '" + fullPath + "'")
		}

		n.path = path[offset:i]

		// first node: catch-all node with empty path
		child := t.markWritable(&node[H]{wildChild: true, nType: catchAll, maxParams: 1})
		n.children = []*node[H]{child}
		n.indices = []byte{path[i]}
		n = child
		n.priority++

		// second node: node holding the variable
		child = t.markWritable(&node[H]{
			path:      path[i:],
			nType:     catchAll,
			maxParams: 1,
			priority:  1,
		})
		child.setHandler(handler, fullPath)
		n.children = []*node[H]{child}
		return
	}

	// insert remaining path part and handler to the leaf
	n.path = path[offset:]
	n.setHandler(handler, fullPath)
}

func (t *Tree[H]) lookup(path string) (n *node[H], params Params, tsr bool) {
	n = t.root

walk:
	for {
		if len(path) > len(n.path) {
			if path[:len(n.path)] != n.path {
				break walk
			}
			path = path[len(n.path):]

			// If this node does not have a wildcard child, we can just look up
			// the next child node and continue to walk down the tree
			if !n.wildChild {
				if idx := n.indexOf(path[0]); idx >= 0 {
					n = n.children[idx]
					continue walk
				}

				// Nothing found. We can recommend to redirect to the same URL
				// without a trailing slash if a leaf exists for that path.
				tsr = path == "/" && n.isLeaf()
				return nil, nil, tsr
			}

			n = n.children[0]
			switch n.nType {
			case param:
				end := 0
				for end < len(path) && path[end] != slashDelim {
					end++
				}

				if params == nil {
					params = make(Params, 0, n.maxParams)
				}
				params = append(params, Param{
					Key:   n.path[1:],
					Value: path[:end],
				})

				// we need to go deeper
				if end < len(path) {
					if len(n.children) > 0 {
						path = path[end:]
						n = n.children[0]
						continue walk
					}

					tsr = len(path) == end+1
					return nil, nil, tsr
				}

				if n.isLeaf() {
					return n, params, false
				}
				if len(n.children) == 1 {
					// No handle found. Check if a handle for this path + a
					// trailing slash exists for TSR recommendation
					child := n.children[0]
					tsr = child.path == "/" && child.isLeaf()
				}
				return nil, nil, tsr

			case catchAll:
				if params == nil {
					params = make(Params, 0, n.maxParams)
				}
				params = append(params, Param{
					Key:   n.path[2:],
					Value: path,
				})
				return n, params, false

			default:
				panic("internal error: invalid node type " + n.nType.String())
			}
		}

		if path == n.path {
			// We should have reached the node containing the handle.
			if n.isLeaf() {
				return n, params, false
			}

			if path == "/" && n.wildChild && n.nType != root {
				return nil, nil, true
			}

			// No handle found. Check if a handle for this path + a
			// trailing slash exists for trailing slash recommendation
			if idx := n.indexOf(slashDelim); idx >= 0 {
				child := n.children[idx]
				tsr = (len(child.path) == 1 && child.isLeaf()) ||
					(child.nType == catchAll && child.children[0].isLeaf())
			}
			return nil, nil, tsr
		}

		break walk
	}

	// Nothing found. We can recommend to redirect to the same URL with an
	// extra trailing slash if a leaf exists for that path
	tsr = path == "/" ||
		(len(n.path) == len(path)+1 && n.path[len(path)] == slashDelim &&
			path == n.path[:len(n.path)-1] && n.isLeaf())
	return nil, nil, tsr
}

// own returns n itself if it's writable in the current transaction, or a writable copy of n.
func (t *Tree[H]) own(n *node[H]) *node[H] {
	if t.writable == nil {
		return n
	}
	if _, ok := t.writable.Get(n); ok {
		return n
	}
	cp := n.clone()
	t.writable.Add(cp, struct{}{})
	return cp
}

// ownChild makes the child at pos of the writable node n writable and returns it.
func (t *Tree[H]) ownChild(n *node[H], pos int) *node[H] {
	child := t.own(n.children[pos])
	n.children[pos] = child
	return child
}

func (t *Tree[H]) markWritable(n *node[H]) *node[H] {
	if t.writable != nil {
		t.writable.Add(n, struct{}{})
	}
	return n
}

// wildcardMatch reports whether the remaining path starts with the wildcard segment and
// ends at the same segment boundary.
func wildcardMatch(path, wildcard string) bool {
	return len(path) >= len(wildcard) && wildcard == path[:len(wildcard)] &&
		// Adding a child to a catchAll is not possible
		(len(wildcard) >= len(path) || path[len(wildcard)] == slashDelim)
}

func newChildrenConflictError(fullPath, path, existing string) error {
	end := strings.IndexByte(path, slashDelim)
	if end < 0 {
		end = len(path)
	}
	return &RouteConflictError{
		Path:     fullPath,
		Segment:  path[:end],
		Existing: existing,
		Reason:   "wildcard route conflicts with existing children in path",
	}
}

func newWildcardConflictError[H any](fullPath, path string, n *node[H]) error {
	segment := path
	if n.nType != catchAll {
		segment, _, _ = strings.Cut(path, "/")
	}
	return &RouteConflictError{
		Path:     fullPath,
		Segment:  segment,
		Existing: fullPath[:len(fullPath)-len(path)] + n.path,
		Reason:   "conflicts with existing wildcard",
	}
}

func longestCommonPrefix(a, b string) int {
	i := 0
	m := min(len(a), len(b))
	for i < m && a[i] == b[i] {
		i++
	}
	return i
}
