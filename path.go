// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package radixpath

import (
	"math"
	"strings"
)

const (
	slashDelim    byte = '/'
	paramDelim    byte = ':'
	catchAllDelim byte = '*'
)

func isWildcard(c byte) bool {
	return c == paramDelim || c == catchAllDelim
}

// countParams returns the number of wildcards in path, saturating at math.MaxUint16.
func countParams(path string) uint16 {
	var n uint
	for i := 0; i < len(path); i++ {
		if isWildcard(path[i]) {
			n++
		}
	}
	if n >= math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(n)
}

// parsePath validates the wildcard syntax of path and returns its number of wildcards.
// It only looks at the pattern itself: conflicts with already registered routes are
// detected by the tree.
func parsePath(path string) (uint16, error) {
	if path == "" {
		return 0, newInvalidPathError("", "path must not be empty")
	}

	for i := 0; i < len(path); i++ {
		c := path[i]
		if !isWildcard(c) {
			continue
		}

		// find wildcard end (either '/' or path end)
		end := i + 1
		var extra byte
		for end < len(path) && path[end] != slashDelim {
			if extra == 0 && isWildcard(path[end]) {
				extra = path[end]
			}
			end++
		}

		if extra != 0 {
			if c == catchAllDelim || extra == catchAllDelim {
				return 0, &RouteConflictError{
					Path:    path,
					Segment: path[i:end],
					Reason:  "has a catch-all sharing its path segment with another wildcard",
				}
			}
			return 0, newInvalidPathError(path, "only one wildcard per path segment is allowed, has: '"+path[i:end]+"'")
		}

		if end-i < 2 {
			return 0, newInvalidPathError(path, "wildcards must be named with a non-empty name")
		}

		if c == catchAllDelim {
			if end != len(path) {
				return 0, &RouteConflictError{
					Path:    path,
					Segment: path[i:],
					Reason:  "has a catch-all which is not at the end of the path",
				}
			}
			if i == 0 || path[i-1] != slashDelim {
				return 0, newInvalidPathError(path, "no / before catch-all")
			}
		}

		i = end - 1
	}

	return countParams(path), nil
}

// NormalizeSlashes adds a '/' prefix to path if one isn't present and removes every
// trailing slash, except when path is the root itself. NormalizeSlashes is idempotent.
func NormalizeSlashes(path string) string {
	trimmed := path
	for len(trimmed) > 1 && trimmed[len(trimmed)-1] == slashDelim {
		trimmed = trimmed[:len(trimmed)-1]
	}

	if trimmed == "" || trimmed[0] != slashDelim {
		return "/" + trimmed
	}

	return trimmed
}

// FixTrailingSlash returns path with its trailing slash removed, or with one appended
// if it has none. It is the target of a trailing slash redirect. The root path is returned as is.
func FixTrailingSlash(path string) string {
	if path == "" || path == "/" {
		return "/"
	}
	if strings.HasSuffix(path, "/") {
		return path[:len(path)-1]
	}
	return path + "/"
}
