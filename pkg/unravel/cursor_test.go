// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package unravel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionlang/actionlang/pkg/ctxval"
	"github.com/actionlang/actionlang/pkg/expr"
	"github.com/actionlang/actionlang/pkg/tmpltoken"
	"github.com/actionlang/actionlang/pkg/unravel"
)

func pos() tmpltoken.Position { return tmpltoken.NewPosition("t.json", 1, 1) }

func newEvalCtx(context map[string]ctxval.Value) *expr.EvalContext {
	return expr.NewEvalContext(nil, nil, context, expr.EvalOptions{})
}

func TestAllowScalarEvaluatesRootExpression(t *testing.T) {
	tree := tmpltoken.NewBasicExpression("fromJson('3')", pos())
	c := unravel.NewCursor(tree, newEvalCtx(nil))

	tok, ok := c.AllowScalar(true)
	require.True(t, ok)
	assert.Equal(t, tmpltoken.KindNumber, tok.Kind)
	assert.Equal(t, float64(3), tok.Number())
}

func TestAllowScalarSurfacesExpressionWhenNotExpanding(t *testing.T) {
	tree := tmpltoken.NewBasicExpression("1 + 2", pos())
	c := unravel.NewCursor(tree, newEvalCtx(nil))

	tok, ok := c.AllowScalar(false)
	require.True(t, ok)
	assert.Equal(t, tmpltoken.KindBasicExpression, tok.Kind)
	assert.Equal(t, "1 + 2", tok.Raw())
}

func TestSequenceExpressionItemInlinesArrayResult(t *testing.T) {
	context := map[string]ctxval.Value{
		"github": ctxval.NewObjectValue(func() *ctxval.Object {
			o := ctxval.NewObject()
			o.Set("items", ctxval.NewArray([]ctxval.Value{ctxval.NewNumber(2), ctxval.NewNumber(3)}))
			return o
		}()),
	}
	items := []*tmpltoken.Token{
		tmpltoken.NewNumber(1, pos()),
		tmpltoken.NewBasicExpression("github.items", pos()),
		tmpltoken.NewNumber(4, pos()),
	}
	tree := tmpltoken.NewSequence(items, pos())
	c := unravel.NewCursor(tree, newEvalCtx(context))

	require.True(t, c.AllowSequenceStart(true))
	var got []float64
	for {
		tok, ok := c.AllowScalar(true)
		if !ok {
			break
		}
		got = append(got, tok.Number())
	}
	require.True(t, c.AllowSequenceEnd(true))
	assert.Equal(t, []float64{1, 2, 3, 4}, got)
}

func TestMappingValueExpressionEvaluates(t *testing.T) {
	context := map[string]ctxval.Value{"name": ctxval.NewString("Ada")}
	pairs := []tmpltoken.Pair{
		{Key: tmpltoken.NewString("greeting", pos()), Value: tmpltoken.NewBasicExpression("name", pos())},
	}
	tree := tmpltoken.NewMapping(pairs, pos())
	c := unravel.NewCursor(tree, newEvalCtx(context))

	require.True(t, c.AllowMappingStart(true))
	key, ok := c.AllowScalar(true)
	require.True(t, ok)
	assert.Equal(t, "greeting", key.Str())
	val, ok := c.AllowScalar(true)
	require.True(t, ok)
	assert.Equal(t, "Ada", val.Str())
	require.True(t, c.AllowMappingEnd(true))
}

func TestMappingValueExpressionErrorSubstitutesEmptyString(t *testing.T) {
	pairs := []tmpltoken.Pair{
		{Key: tmpltoken.NewString("x", pos()), Value: tmpltoken.NewBasicExpression("undefinedFn()", pos())},
	}
	tree := tmpltoken.NewMapping(pairs, pos())
	c := unravel.NewCursor(tree, newEvalCtx(nil))

	require.True(t, c.AllowMappingStart(true))
	_, ok := c.AllowScalar(true)
	require.True(t, ok)
	val, ok := c.AllowScalar(true)
	require.True(t, ok)
	assert.Equal(t, tmpltoken.KindString, val.Kind)
	assert.Equal(t, "", val.Str())
	require.True(t, c.AllowMappingEnd(true))
	assert.NotEmpty(t, c.Errors())
}

func TestSequenceItemExpressionErrorIsSkipped(t *testing.T) {
	items := []*tmpltoken.Token{
		tmpltoken.NewNumber(1, pos()),
		tmpltoken.NewBasicExpression("undefinedFn()", pos()),
		tmpltoken.NewNumber(2, pos()),
	}
	tree := tmpltoken.NewSequence(items, pos())
	c := unravel.NewCursor(tree, newEvalCtx(nil))

	require.True(t, c.AllowSequenceStart(true))
	var got []float64
	for {
		tok, ok := c.AllowScalar(true)
		if !ok {
			break
		}
		got = append(got, tok.Number())
	}
	require.True(t, c.AllowSequenceEnd(true))
	assert.Equal(t, []float64{1, 2}, got)
	assert.NotEmpty(t, c.Errors())
}

func TestInsertExpressionMergesPairsInPlace(t *testing.T) {
	inserted := tmpltoken.NewMapping([]tmpltoken.Pair{
		{Key: tmpltoken.NewString("b", pos()), Value: tmpltoken.NewNumber(2, pos())},
		{Key: tmpltoken.NewString("c", pos()), Value: tmpltoken.NewNumber(3, pos())},
	}, pos())
	pairs := []tmpltoken.Pair{
		{Key: tmpltoken.NewString("a", pos()), Value: tmpltoken.NewNumber(1, pos())},
		{Key: tmpltoken.NewInsertExpression(pos()), Value: inserted},
		{Key: tmpltoken.NewString("d", pos()), Value: tmpltoken.NewNumber(4, pos())},
	}
	tree := tmpltoken.NewMapping(pairs, pos())
	c := unravel.NewCursor(tree, newEvalCtx(nil))

	require.True(t, c.AllowMappingStart(true))
	var keys []string
	for {
		key, ok := c.AllowScalar(true)
		if !ok {
			break
		}
		keys = append(keys, key.Str())
		_, ok = c.AllowScalar(true)
		require.True(t, ok)
	}
	require.True(t, c.AllowMappingEnd(true))
	assert.Equal(t, []string{"a", "b", "c", "d"}, keys)
}

func TestDepthAndByteAccountingReleasedOnScopeExit(t *testing.T) {
	tree := tmpltoken.NewSequence([]*tmpltoken.Token{
		tmpltoken.NewMapping(nil, pos()),
	}, pos())
	evalCtx := newEvalCtx(nil)
	c := unravel.NewCursor(tree, evalCtx)

	before := evalCtx.Counter.Current()
	require.True(t, c.AllowSequenceStart(true))
	require.True(t, c.AllowMappingStart(true))
	require.True(t, c.AllowMappingEnd(true))
	require.True(t, c.AllowSequenceEnd(true))
	assert.Equal(t, before, evalCtx.Counter.Current())
	assert.Equal(t, 0, evalCtx.Depth.Current())
}
