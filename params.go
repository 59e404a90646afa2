// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package radixpath

import (
	"context"
	"iter"
)

// paramsKey is the key that holds the Params in a context.Context.
type paramsKey struct{}

// Param is a single wildcard value captured during a lookup.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of captured wildcards, in the order they appear in the matched route.
type Params []Param

// Get the matching wildcard segment by name.
func (p Params) Get(name string) string {
	for i := range p {
		if p[i].Key == name {
			return p[i].Value
		}
	}
	return ""
}

// Has checks whether the parameter exists by name.
func (p Params) Has(name string) bool {
	for i := range p {
		if p[i].Key == name {
			return true
		}
	}

	return false
}

// Clone make a copy of Params.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	cloned := make(Params, len(p))
	copy(cloned, p)
	return cloned
}

// Map returns a read-only map view of p.
func (p Params) Map() ParamsMap {
	return NewParamsMap(p)
}

// ParamsMap is an immutable map view over captured parameters. If a key occurs more than
// once, the last value wins.
type ParamsMap struct {
	m map[string]string
}

// NewParamsMap returns a map view of params. Later modifications of params are not
// reflected in the view.
func NewParamsMap(params Params) ParamsMap {
	m := make(map[string]string, len(params))
	for _, ps := range params {
		m[ps.Key] = ps.Value
	}
	return ParamsMap{m: m}
}

// Get returns the value for key and whether it exists.
func (pm ParamsMap) Get(key string) (string, bool) {
	v, ok := pm.m[key]
	return v, ok
}

// Len returns the number of distinct keys.
func (pm ParamsMap) Len() int {
	return len(pm.m)
}

// Keys returns an iterator over the keys, in no particular order.
func (pm ParamsMap) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for k := range pm.m {
			if !yield(k) {
				return
			}
		}
	}
}

// All returns an iterator over key/value pairs, in no particular order.
func (pm ParamsMap) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for k, v := range pm.m {
			if !yield(k, v) {
				return
			}
		}
	}
}

// WithParams returns a copy of ctx holding params.
func WithParams(ctx context.Context, params Params) context.Context {
	return context.WithValue(ctx, paramsKey{}, params)
}

// ParamsFromContext allows extracting params from the given context.
func ParamsFromContext(ctx context.Context) Params {
	p, _ := ctx.Value(paramsKey{}).(Params)

	return p
}
