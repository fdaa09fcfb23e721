// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package expr

import "github.com/actionlang/actionlang/pkg/ctxval"

// Kind tags a lexed token. It is the single source of truth for a
// Token's variant.
type Kind int

const (
	KindStartGroup Kind = iota
	KindStartIndex
	KindStartParameters
	KindEndGroup
	KindEndIndex
	KindEndParameters
	KindSeparator
	KindDereference
	KindWildcard
	KindNot
	KindNotEqual
	KindEqual
	KindLessThan
	KindLessThanOrEqual
	KindGreaterThan
	KindGreaterThanOrEqual
	KindAnd
	KindOr
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindPropertyName
	KindFunction
	KindNamedContext
	KindUnexpected
)

func (k Kind) String() string {
	names := [...]string{
		"StartGroup", "StartIndex", "StartParameters", "EndGroup", "EndIndex",
		"EndParameters", "Separator", "Dereference", "Wildcard", "Not",
		"NotEqual", "Equal", "LessThan", "LessThanOrEqual", "GreaterThan",
		"GreaterThanOrEqual", "And", "Or", "Null", "Boolean", "Number",
		"String", "PropertyName", "Function", "NamedContext", "Unexpected",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "Unknown"
	}
	return names[k]
}

// IsLogicalOperator reports whether k is one of the comparison/boolean
// operator kinds (matches spec §4.C's "LogicalOperator" umbrella).
func (k Kind) IsLogicalOperator() bool {
	switch k {
	case KindNot, KindNotEqual, KindEqual, KindLessThan, KindLessThanOrEqual,
		KindGreaterThan, KindGreaterThanOrEqual, KindAnd, KindOr:
		return true
	default:
		return false
	}
}

// Token is one lexical unit: a kind, the raw source text it came from,
// its zero-based source index, and — for literal kinds — the already
// parsed canonical value.
type Token struct {
	Kind    Kind
	Raw     string
	Index   int // zero-based source offset
	Literal ctxval.Value
}

// Position is the one-based position reported in errors.
func (t Token) Position() int { return t.Index + 1 }
