// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionlang/actionlang/pkg/expr"
)

func kinds(toks []expr.Token) []expr.Kind {
	out := make([]expr.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeOperators(t *testing.T) {
	toks := expr.Tokenize("1 == 2 && 3 != 4")
	assert.Equal(t, []expr.Kind{
		expr.KindNumber, expr.KindEqual, expr.KindNumber, expr.KindAnd,
		expr.KindNumber, expr.KindNotEqual, expr.KindNumber,
	}, kinds(toks))
}

func TestTokenizeStringWithEscapedQuote(t *testing.T) {
	toks := expr.Tokenize("'it''s ok'")
	require.Len(t, toks, 1)
	assert.Equal(t, "it's ok", toks[0].Literal.RawString())
}

func TestTokenizeFunctionVsNamedContext(t *testing.T) {
	toks := expr.Tokenize("contains(a, b)")
	require.True(t, len(toks) > 0)
	assert.Equal(t, expr.KindFunction, toks[0].Kind)
}

func TestTokenizePropertyNameAfterDereference(t *testing.T) {
	toks := expr.Tokenize("github.event")
	require.Len(t, toks, 3)
	assert.Equal(t, expr.KindNamedContext, toks[0].Kind)
	assert.Equal(t, expr.KindDereference, toks[1].Kind)
	assert.Equal(t, expr.KindPropertyName, toks[2].Kind)
}

func TestTokenizeSingleAmpersandIsUnexpected(t *testing.T) {
	toks := expr.Tokenize("1 & 2")
	require.Len(t, toks, 3)
	assert.Equal(t, expr.KindUnexpected, toks[1].Kind)
}

func TestTokenizeNegativeAndExponentNumbers(t *testing.T) {
	toks := expr.Tokenize("-3.5e2")
	require.Len(t, toks, 1)
	assert.Equal(t, float64(-350), toks[0].Literal.Number())
}

func TestTokenizeKeywordsCaseInsensitive(t *testing.T) {
	toks := expr.Tokenize("true && FALSE && Null")
	require.Len(t, toks, 5)
	assert.Equal(t, expr.KindBoolean, toks[0].Kind)
	assert.Equal(t, expr.KindBoolean, toks[2].Kind)
	assert.Equal(t, expr.KindNull, toks[4].Kind)
}

func TestIllegalSequenceMarkedUnexpected(t *testing.T) {
	toks := expr.Tokenize(". 1")
	assert.Equal(t, expr.KindUnexpected, toks[0].Kind)
}
