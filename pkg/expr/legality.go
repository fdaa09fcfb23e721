// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package expr

// valueStart is the set of kinds legal wherever an operand begins: at the
// start of the expression, after a separator, after an opening bracket,
// or after any logical operator (unary or binary — both expect an
// operand next).
var valueStart = map[Kind]bool{
	KindStartGroup: true, KindNot: true, KindNull: true, KindBoolean: true,
	KindNumber: true, KindString: true, KindNamedContext: true, KindFunction: true,
}

// operatorContinuation is the set of kinds legal immediately after a
// completed operand.
var operatorContinuation = map[Kind]bool{
	KindDereference: true, KindStartIndex: true, KindEndGroup: true,
	KindEndIndex: true, KindEndParameters: true, KindSeparator: true,
	KindEqual: true, KindNotEqual: true, KindLessThan: true,
	KindLessThanOrEqual: true, KindGreaterThan: true, KindGreaterThanOrEqual: true,
	KindAnd: true, KindOr: true,
}

// isOperandEnd reports whether kind can be the last token of a completed
// operand (used to decide whether end-of-input is legal there too).
func isOperandEnd(kind Kind) bool {
	switch kind {
	case KindNull, KindBoolean, KindNumber, KindString, KindNamedContext,
		KindPropertyName, KindWildcard, KindEndGroup, KindEndIndex, KindEndParameters:
		return true
	default:
		return false
	}
}

// Tokenize lexes the entire src and rewrites any token that is illegal
// given its predecessor into KindUnexpected, exactly as spec §4.C
// requires ("An unexpected sequence yields a TokenKind.Unexpected token
// (not an exception)").
func Tokenize(src string) []Token {
	l := NewLexer(src)
	var out []Token
	var prev Kind
	hasPrev := false

	for {
		tok, ok := l.Next()
		if !ok {
			break
		}
		if tok.Kind != KindUnexpected && !legalNext(prev, hasPrev, tok.Kind) {
			tok.Kind = KindUnexpected
		}
		out = append(out, tok)
		prev = tok.Kind
		hasPrev = true
	}
	return out
}

func legalNext(prev Kind, hasPrev bool, next Kind) bool {
	if !hasPrev {
		return valueStart[next]
	}
	switch prev {
	case KindDereference:
		return next == KindPropertyName || next == KindWildcard
	case KindStartIndex:
		return valueStart[next] || next == KindWildcard
	case KindFunction:
		return next == KindStartParameters
	case KindStartGroup, KindStartParameters, KindSeparator, KindNot,
		KindEqual, KindNotEqual, KindLessThan, KindLessThanOrEqual,
		KindGreaterThan, KindGreaterThanOrEqual, KindAnd, KindOr:
		return valueStart[next]
	default:
		if isOperandEnd(prev) {
			return operatorContinuation[next]
		}
		return false
	}
}
