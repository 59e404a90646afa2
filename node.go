// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package radixpath

import (
	"fmt"
	"slices"
	"strings"
)

type nodeType uint8

const (
	static nodeType = iota
	root
	param
	catchAll
)

func (t nodeType) String() string {
	switch t {
	case static:
		return "static"
	case root:
		return "root"
	case param:
		return "param"
	case catchAll:
		return "catchAll"
	default:
		return "unknown"
	}
}

type node[H any] struct {
	// path is the segment of a route which share a common prefix with its parent.
	path string

	// First byte of each static child path, parallel to children.
	indices []byte

	// Child nodes sorted by descending priority. Holds exactly one element if wildChild is true.
	children []*node[H]

	// The registered handler. Only meaningful if leaf is true.
	handler H

	// The full route pattern when it's a leaf node.
	route string

	// Number of leaves reachable through this node, including itself.
	priority uint32

	// Upper bound of wildcards in this subtree, used as params capacity hint.
	maxParams uint16

	nType nodeType

	// Indicate whether the only child is a param or catch-all node.
	wildChild bool

	leaf bool
}

func (n *node[H]) isLeaf() bool {
	return n.leaf
}

func (n *node[H]) setHandler(handler H, route string) {
	n.handler = handler
	n.route = route
	n.leaf = true
}

func (n *node[H]) clearHandler() {
	var zero H
	n.handler = zero
	n.route = ""
	n.leaf = false
}

// indexOf returns the position of the static child starting with c or -1.
func (n *node[H]) indexOf(c byte) int {
	for i := 0; i < len(n.indices); i++ {
		if n.indices[i] == c {
			return i
		}
	}
	return -1
}

// clone returns a shallow copy of n which owns its children and indices slices.
// Child nodes are shared.
func (n *node[H]) clone() *node[H] {
	cp := *n
	cp.indices = slices.Clone(n.indices)
	cp.children = slices.Clone(n.children)
	return &cp
}

// splitEdge shrinks n to its first i bytes. The remaining suffix moves to a new static
// child inheriting the children, indices, wildcard flag and handler of n. n is left with
// exactly this child and no handler. The new child is returned.
func (n *node[H]) splitEdge(i int) *node[H] {
	child := &node[H]{
		path:      n.path[i:],
		wildChild: n.wildChild,
		nType:     static,
		indices:   n.indices,
		children:  n.children,
		handler:   n.handler,
		route:     n.route,
		leaf:      n.leaf,
		priority:  n.priority - 1,
	}

	for _, c := range child.children {
		if c.maxParams > child.maxParams {
			child.maxParams = c.maxParams
		}
	}

	n.children = []*node[H]{child}
	n.indices = []byte{n.path[i]}
	n.path = n.path[:i]
	n.wildChild = false
	n.clearHandler()

	return child
}

// incrementChildPriority increments the priority of the child at pos and moves it toward
// the front while its predecessor has a strictly lower priority. Children of equal priority
// keep their relative order. It returns the new position of the child.
func (n *node[H]) incrementChildPriority(pos int) int {
	cs := n.children
	cs[pos].priority++
	prio := cs[pos].priority

	newPos := pos
	for ; newPos > 0 && cs[newPos-1].priority < prio; newPos-- {
		cs[newPos-1], cs[newPos] = cs[newPos], cs[newPos-1]
		n.indices[newPos-1], n.indices[newPos] = n.indices[newPos], n.indices[newPos-1]
	}

	return newPos
}

func (n *node[H]) String() string {
	var sb strings.Builder
	n.string(&sb, "")
	return sb.String()
}

func (n *node[H]) string(sb *strings.Builder, prefix string) {
	_, _ = fmt.Fprintf(sb, " %02d:%02d %s%s[%d]", n.priority, n.maxParams, prefix, n.path, len(n.children))
	if n.isLeaf() {
		_, _ = fmt.Fprintf(sb, " (%s)", n.route)
	} else {
		sb.WriteString(" <>")
	}
	_, _ = fmt.Fprintf(sb, " %t %s\n", n.wildChild, n.nType)
	for _, child := range n.children {
		child.string(sb, prefix+". ")
	}
}
