// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package radixpath

// MatchKind is the outcome of a lookup.
type MatchKind uint8

const (
	// NoMatch means no route exists for the path.
	NoMatch MatchKind = iota
	// Redirect means no route exists for the path, but one exists for the same path with
	// (or without) a trailing slash.
	Redirect
	// Resolved means a route matched the path.
	Resolved
	// Fallback means no route matched and the router default handler was returned.
	Fallback
)

func (k MatchKind) String() string {
	switch k {
	case NoMatch:
		return "no_match"
	case Redirect:
		return "redirect"
	case Resolved:
		return "resolved"
	case Fallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Match is the result of a lookup.
type Match[H any] struct {
	// Route is the registered pattern that matched. It's empty unless Kind is Resolved.
	Route string
	// Handler is the handler registered for Route, or the default handler of the router
	// if any. It's the zero value of H otherwise.
	Handler H
	// Params holds the captured wildcards, in route order.
	Params Params
	Kind   MatchKind

	hasHandler bool
}

// Found reports whether a route matched the path.
func (m Match[H]) Found() bool {
	return m.Kind == Resolved
}

// TSR reports whether a trailing slash redirect is recommended.
func (m Match[H]) TSR() bool {
	return m.Kind == Redirect
}

// HasHandler reports whether Handler holds a registered or default handler.
func (m Match[H]) HasHandler() bool {
	return m.Kind == Resolved || m.hasHandler
}
