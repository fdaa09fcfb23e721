// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package schema_test

import (
	"strings"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionlang/actionlang/pkg/objsource"
	"github.com/actionlang/actionlang/pkg/schema"
)

func load(t *testing.T, doc string) (*schema.Registry, error) {
	t.Helper()
	return schema.Load(objsource.NewJSONSource(strings.NewReader(doc)), "test.json")
}

func TestLoadSimpleMapping(t *testing.T) {
	reg, err := load(t, `{
		"name": {"kind": "string"},
		"age": {"kind": "number"},
		"person": {"kind": "mapping", "properties": {
			"name": {"type": "name", "required": true},
			"age": {"type": "age", "required": false}
		}}
	}`)
	require.NoError(t, err)

	def, ok := reg.Lookup("person")
	require.True(t, ok)
	assert.Equal(t, schema.KindMapping, def.Kind)
	typeName, ok := def.PropertyType("name")
	assert.True(t, ok)
	assert.Equal(t, "name", typeName)
}

func TestLoadRejectsUnknownKind(t *testing.T) {
	_, err := load(t, `{"x": {"kind": "bogus"}}`)
	require.Error(t, err)
}

func TestLoadSequenceRequiresExistingItemType(t *testing.T) {
	_, err := load(t, `{
		"list": {"kind": "sequence", "itemType": "missing"}
	}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "itemType")
}

func TestLoadMappingRequiresPropertiesOrLoose(t *testing.T) {
	_, err := load(t, `{"empty": {"kind": "mapping"}}`)
	require.Error(t, err)
}

func TestLoadStringConstantAndRequireNonEmptyMutuallyExclusive(t *testing.T) {
	_, err := load(t, `{
		"s": {"kind": "string", "constant": "x", "requireNonEmpty": true}
	}`)
	require.Error(t, err)
}

func TestLoadOneOfRejectsDuplicateMembers(t *testing.T) {
	_, err := load(t, `{
		"n": {"kind": "null"},
		"u": {"kind": "one-of", "refs": ["n", "n"]}
	}`)
	require.Error(t, err)
}

func TestLoadOneOfRejectsTwoUnconstrainedStrings(t *testing.T) {
	_, err := load(t, `{
		"s1": {"kind": "string"},
		"s2": {"kind": "string"},
		"u": {"kind": "one-of", "refs": ["s1", "s2"]}
	}`)
	require.Error(t, err)
}

func TestLoadOneOfAllowsStringsDisambiguatedByConstant(t *testing.T) {
	_, err := load(t, `{
		"yes": {"kind": "string", "constant": "yes"},
		"no": {"kind": "string", "constant": "no"},
		"u": {"kind": "one-of", "refs": ["yes", "no"]}
	}`)
	require.NoError(t, err)
}

func TestLoadOneOfRejectsIndistinguishableMappings(t *testing.T) {
	_, err := load(t, `{
		"name": {"kind": "string"},
		"a": {"kind": "mapping", "properties": {"name": {"type": "name", "required": true}}},
		"b": {"kind": "mapping", "properties": {"name": {"type": "name", "required": true}}},
		"u": {"kind": "one-of", "refs": ["a", "b"]}
	}`)
	require.Error(t, err)
}

func TestLoadOneOfAllowsMappingsDisambiguatedByProperty(t *testing.T) {
	_, err := load(t, `{
		"name": {"kind": "string"},
		"greeting": {"kind": "string"},
		"a": {"kind": "mapping", "properties": {"name": {"type": "name", "required": true}}},
		"b": {"kind": "mapping", "properties": {"greeting": {"type": "greeting", "required": true}}},
		"u": {"kind": "one-of", "refs": ["a", "b"]}
	}`)
	require.NoError(t, err)
}

func TestMatchPropertyAndFilterNarrowsCandidates(t *testing.T) {
	reg, err := load(t, `{
		"name": {"kind": "string"},
		"greeting": {"kind": "string"},
		"a": {"kind": "mapping", "properties": {"name": {"type": "name", "required": true}}},
		"b": {"kind": "mapping", "properties": {"greeting": {"type": "greeting", "required": true}}},
		"u": {"kind": "one-of", "refs": ["a", "b"]}
	}`)
	require.NoError(t, err)

	uDef, _ := reg.Lookup("u")
	candidates := schema.GetDefinitionsOfType(reg, uDef, schema.KindMapping)
	require.Len(t, candidates, 2)

	typeName, ok := schema.MatchPropertyAndFilter(&candidates, "name")
	require.True(t, ok)
	assert.Equal(t, "name", typeName)
	require.Len(t, candidates, 1)
	assert.Equal(t, "a", candidates[0].Name)
}

func TestGetScalarDefinitionsExpandsOneOfOnce(t *testing.T) {
	reg, err := load(t, `{
		"n": {"kind": "null"},
		"b": {"kind": "boolean"},
		"u": {"kind": "one-of", "refs": ["n", "b"]}
	}`)
	require.NoError(t, err)

	uDef, _ := reg.Lookup("u")
	scalars := schema.GetScalarDefinitions(reg, uDef)
	assert.Len(t, scalars, 2)
}

// TestFuzzedDefinitionNamesNeverPanicValidate feeds one-of definitions
// whose names and references are fuzzed (including self-, duplicate and
// dangling references) straight into Validate to confirm the
// cross-reference checks degrade to ordinary errors rather than panicking.
func TestFuzzedDefinitionNamesNeverPanicValidate(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(0, 3)
	for i := 0; i < 50; i++ {
		reg := schema.NewRegistry()
		var names []string
		f.Fuzz(&names)
		for _, n := range names {
			if n == "" {
				continue
			}
			def := &schema.Definition{Name: n, Kind: schema.KindOneOf, Refs: names}
			reg.Add(def)
		}
		assert.NotPanics(t, func() { schema.Validate(reg) })
	}
}
