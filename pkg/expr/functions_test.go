// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionlang/actionlang/pkg/ctxval"
	"github.com/actionlang/actionlang/pkg/expr"
)

func TestContainsSearchesArrayElementsByAbstractEquality(t *testing.T) {
	ctx := map[string]ctxval.Value{
		"nums": ctxval.NewArray([]ctxval.Value{ctxval.NewNumber(1), ctxval.NewNumber(2), ctxval.NewNumber(3)}),
	}
	assert.True(t, ctxval.Truthy(evalSrc(t, "contains(nums, '2')", ctx)))
	assert.False(t, ctxval.Truthy(evalSrc(t, "contains(nums, 4)", ctx)))
}

func TestFunctionArityErrors(t *testing.T) {
	_, err := expr.Parse("contains('a')", expr.ParseOptions{Functions: expr.NewFunctionTable()})
	require.Error(t, err)

	_, err = expr.Parse("startsWith('a', 'b', 'c')", expr.ParseOptions{Functions: expr.NewFunctionTable()})
	require.Error(t, err)
}

func TestUnrecognizedFunctionErrors(t *testing.T) {
	_, err := expr.Parse("bogus(1)", expr.ParseOptions{Functions: expr.NewFunctionTable()})
	require.Error(t, err)
}

func TestSyntaxOnlyModeAllowsUnrecognizedFunction(t *testing.T) {
	tree, err := expr.Parse("bogus(1)", expr.ParseOptions{Functions: expr.NewFunctionTable(), SyntaxOnly: true})
	require.NoError(t, err)
	ctx := expr.NewEvalContext(nil, nil, nil, expr.EvalOptions{})
	v, err := expr.EvaluateTree(tree, ctx)
	require.NoError(t, err)
	assert.Equal(t, ctxval.KindNull, v.Kind())
}

func TestFormatUnterminatedPlaceholderErrors(t *testing.T) {
	tree, err := expr.Parse("format('a {0', 1)", expr.ParseOptions{Functions: expr.NewFunctionTable()})
	require.NoError(t, err)
	ctx := expr.NewEvalContext(nil, nil, nil, expr.EvalOptions{})
	_, err = expr.EvaluateTree(tree, ctx)
	require.Error(t, err)
}

func TestFormatMissingArgumentErrors(t *testing.T) {
	tree, err := expr.Parse("format('{1}', 1)", expr.ParseOptions{Functions: expr.NewFunctionTable()})
	require.NoError(t, err)
	ctx := expr.NewEvalContext(nil, nil, nil, expr.EvalOptions{})
	_, err = expr.EvaluateTree(tree, ctx)
	require.Error(t, err)
}
