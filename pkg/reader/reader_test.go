// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package reader_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/k14s/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionlang/actionlang/pkg/objsource"
	"github.com/actionlang/actionlang/pkg/reader"
	"github.com/actionlang/actionlang/pkg/schema"
	"github.com/actionlang/actionlang/pkg/tmpltoken"
)

func loadSchema(t *testing.T, doc string) *schema.Registry {
	t.Helper()
	reg, err := schema.Load(objsource.NewJSONSource(strings.NewReader(doc)), "schema.json")
	require.NoError(t, err)
	return reg
}

func TestReadTemplatePlainMapping(t *testing.T) {
	reg := loadSchema(t, `{
		"name": {"kind": "string"},
		"age": {"kind": "number"},
		"person": {"kind": "mapping", "properties": {
			"name": {"type": "name", "required": true},
			"age": {"type": "age", "required": false}
		}}
	}`)

	src := objsource.NewJSONSource(strings.NewReader(`{"name": "Ada", "age": 36}`))
	ctx := reader.NewContext(reg, 0, 0, "doc.json")
	tok, bytes, err := reader.ReadTemplate(ctx, "person", src)
	require.NoError(t, err)
	assert.Greater(t, bytes, 0)
	assert.Equal(t, tmpltoken.KindMapping, tok.Kind)

	nameTok, ok := tok.Get("name")
	require.True(t, ok)
	assert.Equal(t, tmpltoken.KindString, nameTok.Kind)
	assert.Equal(t, "Ada", nameTok.Str())
}

func TestReadTemplateMissingRequiredProperty(t *testing.T) {
	reg := loadSchema(t, `{
		"name": {"kind": "string"},
		"person": {"kind": "mapping", "properties": {
			"name": {"type": "name", "required": true}
		}}
	}`)
	src := objsource.NewJSONSource(strings.NewReader(`{}`))
	ctx := reader.NewContext(reg, 0, 0, "doc.json")
	_, _, err := reader.ReadTemplate(ctx, "person", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestReadTemplateUnexpectedSequence(t *testing.T) {
	reg := loadSchema(t, `{"name": {"kind": "string"}}`)
	src := objsource.NewJSONSource(strings.NewReader(`[1,2,3]`))
	ctx := reader.NewContext(reg, 0, 0, "doc.json")
	_, _, err := reader.ReadTemplate(ctx, "name", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sequence")
}

func TestReadTemplateEmbeddedExpressionBecomesBasicExpressionToken(t *testing.T) {
	reg := loadSchema(t, `{
		"name": {"kind": "string"},
		"greeting": {"kind": "string", "evaluatorContext": ["github"]}
	}`)
	src := objsource.NewJSONSource(strings.NewReader(`"Hello ${{ github.actor }}!"`))
	ctx := reader.NewContext(reg, 0, 0, "doc.json")
	tok, _, err := reader.ReadTemplate(ctx, "greeting", src)
	require.NoError(t, err)
	assert.Equal(t, tmpltoken.KindBasicExpression, tok.Kind)
	assert.Contains(t, tok.Raw(), "format(")
}

func TestReadTemplateCollapsesSingleQuotedExpressionToLiteral(t *testing.T) {
	reg := loadSchema(t, `{"greeting": {"kind": "string", "evaluatorContext": ["github"]}}`)
	src := objsource.NewJSONSource(strings.NewReader(`"${{ 'hello' }}"`))
	ctx := reader.NewContext(reg, 0, 0, "doc.json")
	tok, _, err := reader.ReadTemplate(ctx, "greeting", src)
	require.NoError(t, err)
	assert.Equal(t, tmpltoken.KindString, tok.Kind)
	assert.Equal(t, "hello", tok.Str())
}

func TestReadTemplateRejectsExpressionWhereNoStringTypePermitted(t *testing.T) {
	reg := loadSchema(t, `{"flag": {"kind": "boolean"}}`)
	src := objsource.NewJSONSource(strings.NewReader(`"${{ true }}"`))
	ctx := reader.NewContext(reg, 0, 0, "doc.json")
	_, _, err := reader.ReadTemplate(ctx, "flag", src)
	require.Error(t, err)
}

func TestReadTemplateOneOfAmbiguousMappingDiagnostic(t *testing.T) {
	reg := loadSchema(t, `{
		"name": {"kind": "string"},
		"greeting": {"kind": "string"},
		"a": {"kind": "mapping", "properties": {"name": {"type": "name", "required": true}}},
		"b": {"kind": "mapping", "properties": {"greeting": {"type": "greeting", "required": true}}},
		"u": {"kind": "one-of", "refs": ["a", "b"]}
	}`)
	src := objsource.NewJSONSource(strings.NewReader(`{}`))
	ctx := reader.NewContext(reg, 0, 0, "doc.json")
	_, _, err := reader.ReadTemplate(ctx, "u", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestReadTemplateOneOfResolvesByProperty(t *testing.T) {
	reg := loadSchema(t, `{
		"name": {"kind": "string"},
		"greeting": {"kind": "string"},
		"a": {"kind": "mapping", "properties": {"name": {"type": "name", "required": true}}},
		"b": {"kind": "mapping", "properties": {"greeting": {"type": "greeting", "required": true}}},
		"u": {"kind": "one-of", "refs": ["a", "b"]}
	}`)
	src := objsource.NewJSONSource(strings.NewReader(`{"greeting": "hi"}`))
	ctx := reader.NewContext(reg, 0, 0, "doc.json")
	tok, _, err := reader.ReadTemplate(ctx, "u", src)
	require.NoError(t, err)
	v, ok := tok.Get("greeting")
	require.True(t, ok)
	assert.Equal(t, "hi", v.Str())
}

func TestReadTemplateLooseMapping(t *testing.T) {
	reg := loadSchema(t, `{
		"k": {"kind": "string"},
		"v": {"kind": "number"},
		"m": {"kind": "mapping", "looseKey": "k", "looseValue": "v"}
	}`)
	src := objsource.NewJSONSource(strings.NewReader(`{"a": 1, "b": 2}`))
	ctx := reader.NewContext(reg, 0, 0, "doc.json")
	tok, _, err := reader.ReadTemplate(ctx, "m", src)
	require.NoError(t, err)
	assert.Equal(t, 2, tok.Count())
}

func TestReadTemplateChargesBytesAgainstLimit(t *testing.T) {
	reg := loadSchema(t, `{"name": {"kind": "string"}}`)
	src := objsource.NewJSONSource(strings.NewReader(`"` + strings.Repeat("x", 1000) + `"`))
	ctx := reader.NewContext(reg, 10, 0, "doc.json")
	_, _, err := reader.ReadTemplate(ctx, "name", src)
	require.Error(t, err)
}

// requireGoldenPersistedForm asserts tok's persisted JSON form matches
// expected line for line, printing a unified diff on mismatch instead of
// dumping both blobs, since a single flipped field deep in a nested
// mapping is otherwise unreadable in a raw JSON comparison.
func requireGoldenPersistedForm(t *testing.T, tok *tmpltoken.Token, expected string) {
	t.Helper()
	got, err := json.MarshalIndent(tok, "", "  ")
	require.NoError(t, err)
	gotStr := string(got)
	if gotStr != expected {
		t.Fatalf("persisted form does not match golden output; diff expected...actual:\n%v",
			difflib.PPDiff(strings.Split(expected, "\n"), strings.Split(gotStr, "\n")))
	}
}

func TestPersistedFormGoldenOutput(t *testing.T) {
	pos := tmpltoken.NewUnknownPosition()
	tok := tmpltoken.NewMapping([]tmpltoken.Pair{
		{Key: tmpltoken.NewString("name", pos), Value: tmpltoken.NewString("Ada", pos)},
		{Key: tmpltoken.NewString("age", pos), Value: tmpltoken.NewNumber(36, pos)},
	}, pos)

	requireGoldenPersistedForm(t, tok, `{
  "type": 2,
  "map": [
    {
      "key": {
        "type": 0,
        "lit": "name"
      },
      "value": {
        "type": 0,
        "lit": "Ada"
      }
    },
    {
      "key": {
        "type": 0,
        "lit": "age"
      },
      "value": {
        "type": 6,
        "num": 36
      }
    }
  ]
}`)
}
