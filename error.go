// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package radixpath

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPath   = errors.New("invalid path")
	ErrRouteConflict = errors.New("route conflict")
	ErrRouteExist    = fmt.Errorf("%w: route already registered", ErrRouteConflict)
	ErrInvalidConfig = errors.New("invalid config")
	ErrSettledTxn    = errors.New("transaction settled")
)

// InvalidPathError is returned when a path pattern is syntactically invalid.
type InvalidPathError struct {
	// Path is the offending pattern.
	Path string
	// Reason describes why the pattern was rejected.
	Reason string
}

func (e *InvalidPathError) Error() string {
	if e.Path == "" {
		return ErrInvalidPath.Error() + ": " + e.Reason
	}
	return ErrInvalidPath.Error() + ": " + e.Reason + " in path '" + e.Path + "'"
}

// Unwrap returns the sentinel value [ErrInvalidPath].
func (e *InvalidPathError) Unwrap() error {
	return ErrInvalidPath
}

// RouteConflictError represents a conflict that occurred during route registration.
// It contains the path being registered, the conflicting segment and the prefix
// already present in the tree.
type RouteConflictError struct {
	// Path is the pattern that was being registered when the conflict was detected.
	Path string
	// Segment is the part of Path that collides with the tree. It may be empty.
	Segment string
	// Existing is the prefix (or full route) already registered at the conflicting position.
	Existing string
	// Reason describes the kind of conflict.
	Reason string

	duplicate bool
}

func (e *RouteConflictError) Error() string {
	var sb strings.Builder
	if e.duplicate {
		sb.WriteString(ErrRouteExist.Error())
		sb.WriteString(": a handler is already registered for path '")
		sb.WriteString(e.Path)
		sb.WriteByte('\'')
		return sb.String()
	}

	sb.WriteString(ErrRouteConflict.Error())
	sb.WriteString(": ")
	if e.Segment != "" {
		sb.WriteByte('\'')
		sb.WriteString(e.Segment)
		sb.WriteString("' in ")
	}
	sb.WriteString("new path '")
	sb.WriteString(e.Path)
	sb.WriteString("' ")
	sb.WriteString(e.Reason)
	if e.Existing != "" {
		sb.WriteString(" '")
		sb.WriteString(e.Existing)
		sb.WriteByte('\'')
	}
	return sb.String()
}

// Unwrap returns the sentinel value [ErrRouteExist] for duplicate registration and
// [ErrRouteConflict] otherwise. Both satisfy errors.Is(err, ErrRouteConflict).
func (e *RouteConflictError) Unwrap() error {
	if e.duplicate {
		return ErrRouteExist
	}
	return ErrRouteConflict
}

func newInvalidPathError(path, reason string) error {
	return &InvalidPathError{Path: path, Reason: reason}
}

func newDuplicateError(path string) error {
	return &RouteConflictError{Path: path, Existing: path, duplicate: true}
}
