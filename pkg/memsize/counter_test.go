// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package memsize_test

import (
	"testing"

	"github.com/actionlang/actionlang/pkg/memsize"
	"github.com/stretchr/testify/require"
)

func TestCounterAddWithinLimit(t *testing.T) {
	c := memsize.NewCounter(100)
	require.NoError(t, c.Add(40))
	require.NoError(t, c.Add(60))
	require.Equal(t, 100, c.Current())
}

func TestCounterAddExceedsLimit(t *testing.T) {
	c := memsize.NewCounter(100)
	require.NoError(t, c.Add(90))
	err := c.Add(20)
	require.Error(t, err)
	require.Equal(t, 90, c.Current(), "failed add must not change the total")
}

func TestCounterSubtractNeverNegative(t *testing.T) {
	c := memsize.NewCounter(100)
	require.NoError(t, c.Add(10))
	c.Subtract(50)
	require.Equal(t, 0, c.Current())
}

func TestStringCostMatchesFormula(t *testing.T) {
	require.Equal(t, 26, memsize.StringCost(""))
	require.Equal(t, 26+2*5, memsize.StringCost("hello"))
}

func TestDepthGuardPushPop(t *testing.T) {
	d := memsize.NewDepthGuard(2)
	require.NoError(t, d.Push())
	require.NoError(t, d.Push())
	require.Error(t, d.Push())
	d.Pop()
	require.NoError(t, d.Push())
}
