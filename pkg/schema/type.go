// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package schema

import "github.com/actionlang/actionlang/pkg/tmpltoken"

// Kind discriminates the seven definition shapes spec §4.H names.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindSequence
	KindMapping
	KindOneOf
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindOneOf:
		return "one-of"
	default:
		return "unknown"
	}
}

// IsScalar reports whether k is one of the four leaf value kinds (as
// opposed to sequence/mapping/one-of).
func (k Kind) IsScalar() bool {
	switch k {
	case KindNull, KindBoolean, KindNumber, KindString:
		return true
	default:
		return false
	}
}

// Property is one ordered, named entry of a mapping definition.
type Property struct {
	Name     string
	TypeName string
	Required bool
}

// Definition is one named entry of a Registry. Only the fields relevant
// to its Kind are populated; the rest are zero.
type Definition struct {
	Name     string
	Kind     Kind
	Position tmpltoken.Position

	// scalar (string only)
	HasConstant     bool
	Constant        string
	IgnoreCase      bool
	RequireNonEmpty bool

	// sequence
	ItemType string

	// mapping
	Properties     []Property
	LooseKeyType   string
	LooseValueType string

	// one-of
	Refs []string

	// every definition, regardless of kind
	ReaderContext    []string
	EvaluatorContext []string
}

// PropertyType returns the declared type name of the named property and
// whether the mapping definition declares it at all.
func (d *Definition) PropertyType(name string) (string, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p.TypeName, true
		}
	}
	return "", false
}

// HasLooseKey reports whether d (a mapping definition) accepts
// additional, loosely-typed keys beyond its declared Properties.
func (d *Definition) HasLooseKey() bool {
	return d.LooseKeyType != "" || d.LooseValueType != ""
}

// Registry is a name-addressed set of definitions, built by Load and
// consulted by the reader while it walks a template against a root type
// name.
type Registry struct {
	byName map[string]*Definition
	order  []string
}

// NewRegistry returns an empty, ready-to-populate Registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]*Definition{}}
}

// Add registers def under its own Name, overwriting any prior
// definition of the same name.
func (r *Registry) Add(def *Definition) {
	if _, exists := r.byName[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.byName[def.Name] = def
}

// Lookup returns the definition named name, if any.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Names returns every registered definition name in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
