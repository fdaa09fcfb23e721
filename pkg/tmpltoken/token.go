// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package tmpltoken

import (
	"strings"

	"github.com/actionlang/actionlang/pkg/ctxval"
)

// Kind discriminates a Token's variant. It is the single source of truth
// for which payload fields on Token are meaningful (spec §3: "tagged sum
// over {Null, Bool, Number, String, Sequence, Mapping,
// BasicExpression(raw-text), InsertExpression}").
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindSequence
	KindMapping
	KindBasicExpression
	KindInsertExpression
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
	case KindBasicExpression:
		return "basic-expression"
	case KindInsertExpression:
		return "insert-expression"
	default:
		return "unknown"
	}
}

// Pair is one key/value entry of a Mapping token. Keys are themselves
// scalar tokens (so an expression key, e.g. `${{ insert }}`, can be told
// apart from a literal string key without a side channel).
type Pair struct {
	Key   *Token
	Value *Token
}

// Token is one node of the template token tree: no sharing, no cycles
// (spec §3). Scalar payloads live directly on the struct rather than
// behind an interface — this mirrors the teacher's yamlmeta nodes, which
// use a discriminant field plus typed payload members instead of one
// interface per kind, and keeps MIN_OBJECT_SIZE-style byte accounting
// trivial to compute from a single struct shape.
type Token struct {
	Kind Kind
	Pos  Position

	boolVal bool
	numVal  float64
	strVal  string

	items []*Token // KindSequence
	pairs []Pair   // KindMapping

	// raw is the unparsed `${{ ... }}` body for Basic/InsertExpression
	// tokens (without the surrounding delimiters).
	raw string

	// index is a lazily-built case-insensitive key index for Mapping
	// tokens, mirroring ctxval.Object's lookup strategy.
	index      map[string]int
	indexBuilt bool
}

// NewNull, NewBool, NewNumber, NewString construct scalar tokens.
func NewNull(pos Position) *Token              { return &Token{Kind: KindNull, Pos: pos} }
func NewBool(b bool, pos Position) *Token      { return &Token{Kind: KindBoolean, boolVal: b, Pos: pos} }
func NewNumber(n float64, pos Position) *Token { return &Token{Kind: KindNumber, numVal: n, Pos: pos} }
func NewString(s string, pos Position) *Token  { return &Token{Kind: KindString, strVal: s, Pos: pos} }

// NewSequence constructs a sequence token owning items in order.
func NewSequence(items []*Token, pos Position) *Token {
	return &Token{Kind: KindSequence, items: items, Pos: pos}
}

// NewMapping constructs a mapping token owning pairs in insertion order.
func NewMapping(pairs []Pair, pos Position) *Token {
	return &Token{Kind: KindMapping, pairs: pairs, Pos: pos}
}

// NewBasicExpression wraps a `${{ raw }}` expression body.
func NewBasicExpression(raw string, pos Position) *Token {
	return &Token{Kind: KindBasicExpression, raw: raw, Pos: pos}
}

// NewInsertExpression marks a `${{ insert }}` directive token.
func NewInsertExpression(pos Position) *Token {
	return &Token{Kind: KindInsertExpression, raw: "insert", Pos: pos}
}

func (t *Token) Bool() bool      { return t.boolVal }
func (t *Token) Number() float64 { return t.numVal }
func (t *Token) Str() string     { return t.strVal }
func (t *Token) Raw() string     { return t.raw }

// Items returns a sequence token's children in order.
func (t *Token) Items() []*Token { return t.items }

// AppendItem appends an item to the end of a sequence token.
func (t *Token) AppendItem(item *Token) {
	t.items = append(t.items, item)
	t.indexBuilt = false
}

// SetItemAt replaces one sequence item in place (the unraveler substituting
// an evaluated BasicExpression for its result).
func (t *Token) SetItemAt(i int, item *Token) {
	t.items[i] = item
}

// RemoveItemAt drops one sequence item (an undefined/erroring expression
// item is skipped rather than surfaced).
func (t *Token) RemoveItemAt(i int) {
	t.items = append(t.items[:i], t.items[i+1:]...)
}

// SpliceItemsAt replaces the item at i with zero or more items, inlining a
// sequence-valued expression's own items at the current position.
func (t *Token) SpliceItemsAt(i int, replacement []*Token) {
	tail := append([]*Token{}, t.items[i+1:]...)
	t.items = append(append(t.items[:i], replacement...), tail...)
}

// Pairs returns a mapping token's pairs in insertion order.
func (t *Token) Pairs() []Pair { return t.pairs }

// SetPairKeyAt replaces one pair's key in place.
func (t *Token) SetPairKeyAt(i int, key *Token) {
	t.pairs[i].Key = key
	t.indexBuilt = false
}

// SetPairValueAt replaces one pair's value in place.
func (t *Token) SetPairValueAt(i int, value *Token) {
	t.pairs[i].Value = value
}

// RemovePairAt drops one mapping pair (an erroring expression key skips
// both the key and its value).
func (t *Token) RemovePairAt(i int) {
	t.pairs = append(t.pairs[:i], t.pairs[i+1:]...)
	t.indexBuilt = false
}

// SplicePairsAt replaces the pair at i with zero or more pairs, merging an
// `${{ insert }}` mapping's own pairs into the enclosing mapping in place.
func (t *Token) SplicePairsAt(i int, replacement []Pair) {
	tail := append([]Pair{}, t.pairs[i+1:]...)
	t.pairs = append(append(t.pairs[:i], replacement...), tail...)
	t.indexBuilt = false
}

// AppendPair appends a pair, invalidating the lazily-built index.
func (t *Token) AppendPair(p Pair) {
	t.pairs = append(t.pairs, p)
	t.indexBuilt = false
}

func (t *Token) buildIndex() {
	if t.indexBuilt {
		return
	}
	t.index = make(map[string]int, len(t.pairs))
	for i, p := range t.pairs {
		if p.Key != nil && p.Key.Kind == KindString {
			t.index[strings.ToUpper(p.Key.strVal)] = i
		}
	}
	t.indexBuilt = true
}

// HasKey reports whether a mapping token has key, case-insensitively
// (identical rules to ctxval.Object per spec §3).
func (t *Token) HasKey(key string) bool {
	_, ok := t.Get(key)
	return ok
}

// Get looks up a mapping token's value by key, case-insensitively.
func (t *Token) Get(key string) (*Token, bool) {
	if t.Kind != KindMapping {
		return nil, false
	}
	t.buildIndex()
	i, ok := t.index[strings.ToUpper(key)]
	if !ok {
		return nil, false
	}
	return t.pairs[i].Value, true
}

// Keys returns a mapping token's keys in insertion order, as their raw
// string form (non-string/expression keys render as "").
func (t *Token) Keys() []string {
	out := make([]string, len(t.pairs))
	for i, p := range t.pairs {
		if p.Key != nil && p.Key.Kind == KindString {
			out[i] = p.Key.strVal
		}
	}
	return out
}

// Count returns a mapping token's number of pairs.
func (t *Token) Count() int { return len(t.pairs) }

// ToCanonicalValue converts a fully-realized (expression-free) token tree
// into a canonical ctxval.Value, e.g. so a template value can be handed to
// an expression as a named-context binding.
func (t *Token) ToCanonicalValue() ctxval.Value {
	switch t.Kind {
	case KindNull:
		return ctxval.Null
	case KindBoolean:
		return ctxval.NewBool(t.boolVal)
	case KindNumber:
		return ctxval.NewNumber(t.numVal)
	case KindString:
		return ctxval.NewString(t.strVal)
	case KindSequence:
		items := make([]ctxval.Value, len(t.items))
		for i, it := range t.items {
			items[i] = it.ToCanonicalValue()
		}
		return ctxval.NewArray(items)
	case KindMapping:
		obj := ctxval.NewObject()
		for _, p := range t.pairs {
			if p.Key == nil || p.Key.Kind != KindString {
				continue
			}
			obj.Set(p.Key.strVal, p.Value.ToCanonicalValue())
		}
		return ctxval.NewObjectValue(obj)
	default:
		// Basic/InsertExpression tokens are not representable as a value;
		// callers must expand the tree first (package unravel does this).
		return ctxval.Null
	}
}

// FromCanonicalValue builds a token tree from a canonical value, e.g. so
// an expression's array/object result can re-enter the template tree
// (spec §3: "tokens are created by the reader and by the evaluator").
func FromCanonicalValue(v ctxval.Value, pos Position) *Token {
	switch v.Kind() {
	case ctxval.KindNull:
		return NewNull(pos)
	case ctxval.KindBoolean:
		return NewBool(v.Bool(), pos)
	case ctxval.KindNumber:
		return NewNumber(v.Number(), pos)
	case ctxval.KindString:
		return NewString(v.RawString(), pos)
	case ctxval.KindArray:
		arr, _ := v.Array()
		items := make([]*Token, arr.Len())
		for i := 0; i < arr.Len(); i++ {
			iv, _ := arr.At(i)
			items[i] = FromCanonicalValue(iv, pos)
		}
		return NewSequence(items, pos)
	case ctxval.KindObject:
		obj, _ := v.Object()
		var pairs []Pair
		for _, k := range obj.Keys() {
			ov, _ := obj.Get(k)
			pairs = append(pairs, Pair{Key: NewString(k, pos), Value: FromCanonicalValue(ov, pos)})
		}
		return NewMapping(pairs, pos)
	default:
		return NewNull(pos)
	}
}
