// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package ctxval

import "strings"

// Object is a case-insensitive mapping that preserves insertion order,
// adapted from the teacher's orderedmap.Map to add the case-insensitive
// lookup canonical values require. A lazily-built upper-cased index keeps
// repeated Get calls O(1) after the first lookup forces it.
type Object struct {
	keys   []string
	values []Value

	index     map[string]int // upper(key) -> position in keys/values
	indexBuilt bool
}

// NewObject returns an empty, owned Object.
func NewObject() *Object {
	return &Object{}
}

// Set inserts or overwrites key's value, preserving original insertion
// position on overwrite. Comparison is case-insensitive.
func (o *Object) Set(key string, v Value) {
	upper := strings.ToUpper(key)
	if o.indexBuilt {
		if i, ok := o.index[upper]; ok {
			o.values[i] = v
			return
		}
	} else {
		for i, k := range o.keys {
			if strings.ToUpper(k) == upper {
				o.values[i] = v
				return
			}
		}
	}
	o.keys = append(o.keys, key)
	o.values = append(o.values, v)
	if o.indexBuilt {
		o.index[upper] = len(o.keys) - 1
	}
}

func (o *Object) buildIndex() {
	if o.indexBuilt {
		return
	}
	o.index = make(map[string]int, len(o.keys))
	for i, k := range o.keys {
		o.index[strings.ToUpper(k)] = i
	}
	o.indexBuilt = true
}

// Count returns the number of key/value pairs.
func (o *Object) Count() int { return len(o.keys) }

// Keys returns keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// HasKey reports whether key is present, case-insensitively.
func (o *Object) HasKey(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Get looks up key case-insensitively.
func (o *Object) Get(key string) (Value, bool) {
	o.buildIndex()
	if i, ok := o.index[strings.ToUpper(key)]; ok {
		return o.values[i], true
	}
	return Value{}, false
}

// Iterate calls fn for each pair in insertion order.
func (o *Object) Iterate(fn func(key string, v Value)) {
	for i, k := range o.keys {
		fn(k, o.values[i])
	}
}

var _ ObjectCapability = (*Object)(nil)
