// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package tmpltoken_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionlang/actionlang/pkg/tmpltoken"
)

func TestMappingCaseInsensitiveLookup(t *testing.T) {
	pos := tmpltoken.NewUnknownPosition()
	m := tmpltoken.NewMapping([]tmpltoken.Pair{
		{Key: tmpltoken.NewString("Name", pos), Value: tmpltoken.NewString("actionlang", pos)},
	}, pos)
	v, ok := m.Get("NAME")
	require.True(t, ok)
	assert.Equal(t, "actionlang", v.Str())
}

func TestPersistedRoundTripScalarsAndCollections(t *testing.T) {
	pos := tmpltoken.NewPosition("wf.yml", 3, 5)
	seq := tmpltoken.NewSequence([]*tmpltoken.Token{
		tmpltoken.NewString("build", pos),
		tmpltoken.NewNumber(2, pos),
		tmpltoken.NewBool(true, pos),
		tmpltoken.NewNull(pos),
	}, pos)

	b, err := json.Marshal(seq)
	require.NoError(t, err)

	var out tmpltoken.Token
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, tmpltoken.KindSequence, out.Kind)
	require.Len(t, out.Items(), 4)
	assert.Equal(t, "build", out.Items()[0].Str())
	assert.Equal(t, float64(2), out.Items()[1].Number())
	assert.True(t, out.Items()[2].Bool())
	assert.Equal(t, tmpltoken.KindNull, out.Items()[3].Kind)
}

func TestPersistedRoundTripMapping(t *testing.T) {
	pos := tmpltoken.NewUnknownPosition()
	m := tmpltoken.NewMapping([]tmpltoken.Pair{
		{Key: tmpltoken.NewString("a", pos), Value: tmpltoken.NewNumber(1, pos)},
	}, pos)
	b, err := json.Marshal(m)
	require.NoError(t, err)

	var out tmpltoken.Token
	require.NoError(t, json.Unmarshal(b, &out))
	v, ok := out.Get("a")
	require.True(t, ok)
	assert.Equal(t, float64(1), v.Number())
}

func TestBareJSONPrimitiveRoundTrip(t *testing.T) {
	var out tmpltoken.Token
	require.NoError(t, json.Unmarshal([]byte(`"hello"`), &out))
	assert.Equal(t, tmpltoken.KindString, out.Kind)
	assert.Equal(t, "hello", out.Str())
}

func TestToCanonicalValueRoundTrip(t *testing.T) {
	pos := tmpltoken.NewUnknownPosition()
	m := tmpltoken.NewMapping([]tmpltoken.Pair{
		{Key: tmpltoken.NewString("a", pos), Value: tmpltoken.NewNumber(1, pos)},
		{Key: tmpltoken.NewString("b", pos), Value: tmpltoken.NewString("x", pos)},
	}, pos)
	v := m.ToCanonicalValue()
	obj, ok := v.Object()
	require.True(t, ok)
	assert.Equal(t, 2, obj.Count())
}
