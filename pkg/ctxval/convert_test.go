// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package ctxval_test

import (
	"math"
	"testing"

	"github.com/actionlang/actionlang/pkg/ctxval"
	"github.com/stretchr/testify/require"
)

func TestFalsyValues(t *testing.T) {
	falsy := []ctxval.Value{
		ctxval.Null,
		ctxval.NewBool(false),
		ctxval.NewNumber(0),
		ctxval.NewString(""),
	}
	for _, v := range falsy {
		require.True(t, ctxval.Falsy(v), "%#v should be falsy", v)
	}
}

func TestCollectionsAlwaysTruthy(t *testing.T) {
	require.True(t, ctxval.Truthy(ctxval.NewArray(nil)))
	require.True(t, ctxval.Truthy(ctxval.NewObjectValue(ctxval.NewObject())))
}

func TestAbstractEqualNumberStringCoercion(t *testing.T) {
	require.True(t, ctxval.AbstractEqual(ctxval.NewNumber(1), ctxval.NewString("1")))
}

func TestAbstractEqualStringCaseInsensitive(t *testing.T) {
	require.True(t, ctxval.AbstractEqual(ctxval.NewString("Hello"), ctxval.NewString("HELLO")))
}

func TestAbstractEqualNaNNeverEqual(t *testing.T) {
	nan := ctxval.NewNumber(math.NaN())
	require.False(t, ctxval.AbstractEqual(nan, nan))
}

func TestAbstractEqualCollectionsAreReference(t *testing.T) {
	obj := ctxval.NewObject()
	a := ctxval.NewObjectValue(obj)
	b := ctxval.NewObjectValue(obj)
	require.True(t, ctxval.AbstractEqual(a, b))
	require.False(t, ctxval.AbstractEqual(a, ctxval.NewObjectValue(ctxval.NewObject())))
}

func TestConvertNegativeZeroToString(t *testing.T) {
	require.Equal(t, "0", ctxval.ConvertToString(ctxval.NewNumber(math.Copysign(0, -1))))
}
