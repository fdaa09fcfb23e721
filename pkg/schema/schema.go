// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"

	"github.com/actionlang/actionlang/pkg/objsource"
	"github.com/actionlang/actionlang/pkg/tmpltoken"
)

// GetScalarDefinitions resolves def to the set of scalar (Null, Boolean,
// Number, String) definitions it can stand for, expanding a one-of
// definition exactly once (spec §4.H: "both expanding one-of once" —
// nested one-ofs-of-one-ofs are not flattened further).
func GetScalarDefinitions(reg *Registry, def *Definition) []*Definition {
	return getDefinitionsMatching(reg, def, func(d *Definition) bool { return d.Kind.IsScalar() })
}

// GetDefinitionsOfType resolves def to the set of referenced definitions
// of exactly kind, expanding a one-of definition exactly once.
func GetDefinitionsOfType(reg *Registry, def *Definition, kind Kind) []*Definition {
	return getDefinitionsMatching(reg, def, func(d *Definition) bool { return d.Kind == kind })
}

func getDefinitionsMatching(reg *Registry, def *Definition, match func(*Definition) bool) []*Definition {
	if def == nil {
		return nil
	}
	if def.Kind != KindOneOf {
		if match(def) {
			return []*Definition{def}
		}
		return nil
	}
	var out []*Definition
	for _, ref := range def.Refs {
		rd, ok := reg.Lookup(ref)
		if !ok {
			continue
		}
		if match(rd) {
			out = append(out, rd)
		}
	}
	return out
}

// MatchPropertyAndFilter is the one-of disambiguation mechanism (spec
// §4.H): given a set of candidate mapping definitions and a property
// name just encountered in the template being read, it returns that
// property's declared type name from the first candidate that declares
// it, and removes every candidate from *candidates that does NOT declare
// the property — narrowing the remaining ambiguity as each subsequent
// property is read.
func MatchPropertyAndFilter(candidates *[]*Definition, propName string) (string, bool) {
	var kept []*Definition
	typeName, found := "", false
	for _, c := range *candidates {
		t, ok := c.PropertyType(propName)
		if !ok {
			continue
		}
		kept = append(kept, c)
		if !found {
			typeName, found = t, true
		}
	}
	*candidates = kept
	return typeName, found
}

// Load reads a user schema document from src, checking its shape as it
// descends through it, assembles a Registry from it, and cross-checks
// the result with Validate. fileName is used only for diagnostics.
func Load(src objsource.Source, fileName string) (*Registry, error) {
	if err := src.ValidateStart(); err != nil {
		return nil, err
	}
	reg := NewRegistry()
	if _, ok := src.AllowMappingStart(); !ok {
		return nil, fmt.Errorf("%s: a schema document must be a mapping of definition name to definition body", fileName)
	}
	for {
		if src.AllowMappingEnd() {
			break
		}
		key, ok := src.AllowLiteral()
		if !ok {
			return nil, loadErr(src, fileName, "expected a definition name")
		}
		def, err := readDefinition(src, fileName, key.S, key.Line, key.Col)
		if err != nil {
			return nil, err
		}
		reg.Add(def)
	}
	if err := src.ValidateEnd(); err != nil {
		return nil, err
	}
	if errs := Validate(reg); len(errs) > 0 {
		return nil, errs[0]
	}
	return reg, nil
}

func loadErr(src objsource.Source, fileName, msg string) error {
	if err := src.Err(); err != nil {
		return fmt.Errorf("%s: %w", fileName, err)
	}
	return fmt.Errorf("%s: %s", fileName, msg)
}

// readDefinition parses one definition body: a mapping carrying a
// "kind" property plus kind-specific fields, per spec §4.H.
func readDefinition(src objsource.Source, fileName, name string, line, col int) (*Definition, error) {
	pos := tmpltoken.NewPosition(fileName, line, col)
	if _, ok := src.AllowMappingStart(); !ok {
		return nil, loadErr(src, fileName, fmt.Sprintf("definition %q: expected a mapping", name))
	}
	def := &Definition{Name: name, Position: pos}
	kindSeen := false
	for {
		if src.AllowMappingEnd() {
			break
		}
		key, ok := src.AllowLiteral()
		if !ok {
			return nil, loadErr(src, fileName, fmt.Sprintf("definition %q: expected a property name", name))
		}
		switch key.S {
		case "kind":
			lit, ok := src.AllowLiteral()
			if !ok {
				return nil, loadErr(src, fileName, fmt.Sprintf("definition %q: kind must be a string", name))
			}
			k, ok := parseKind(lit.S)
			if !ok {
				return nil, fmt.Errorf("%s: definition %q: unknown kind %q", fileName, name, lit.S)
			}
			def.Kind = k
			kindSeen = true
		case "constant":
			lit, ok := src.AllowLiteral()
			if !ok {
				return nil, loadErr(src, fileName, fmt.Sprintf("definition %q: constant must be a scalar", name))
			}
			def.HasConstant = true
			def.Constant = lit.S
		case "ignoreCase":
			lit, ok := src.AllowLiteral()
			if !ok {
				return nil, loadErr(src, fileName, fmt.Sprintf("definition %q: ignoreCase must be a boolean", name))
			}
			def.IgnoreCase = lit.B
		case "requireNonEmpty":
			lit, ok := src.AllowLiteral()
			if !ok {
				return nil, loadErr(src, fileName, fmt.Sprintf("definition %q: requireNonEmpty must be a boolean", name))
			}
			def.RequireNonEmpty = lit.B
		case "itemType":
			lit, ok := src.AllowLiteral()
			if !ok {
				return nil, loadErr(src, fileName, fmt.Sprintf("definition %q: itemType must be a string", name))
			}
			def.ItemType = lit.S
		case "looseKey":
			lit, ok := src.AllowLiteral()
			if !ok {
				return nil, loadErr(src, fileName, fmt.Sprintf("definition %q: looseKey must be a string", name))
			}
			def.LooseKeyType = lit.S
		case "looseValue":
			lit, ok := src.AllowLiteral()
			if !ok {
				return nil, loadErr(src, fileName, fmt.Sprintf("definition %q: looseValue must be a string", name))
			}
			def.LooseValueType = lit.S
		case "properties":
			props, err := readProperties(src, fileName, name)
			if err != nil {
				return nil, err
			}
			def.Properties = props
		case "refs":
			refs, err := readStringList(src, fileName, name, "refs")
			if err != nil {
				return nil, err
			}
			def.Refs = refs
		case "readerContext":
			ctx, err := readStringList(src, fileName, name, "readerContext")
			if err != nil {
				return nil, err
			}
			def.ReaderContext = ctx
		case "evaluatorContext":
			ctx, err := readStringList(src, fileName, name, "evaluatorContext")
			if err != nil {
				return nil, err
			}
			def.EvaluatorContext = ctx
		default:
			return nil, fmt.Errorf("%s: definition %q: unexpected property %q", fileName, name, key.S)
		}
	}
	if !kindSeen {
		return nil, fmt.Errorf("%s: definition %q: missing required property \"kind\"", fileName, name)
	}
	return def, nil
}

func parseKind(s string) (Kind, bool) {
	switch s {
	case "null":
		return KindNull, true
	case "boolean":
		return KindBoolean, true
	case "number":
		return KindNumber, true
	case "string":
		return KindString, true
	case "sequence":
		return KindSequence, true
	case "mapping":
		return KindMapping, true
	case "one-of":
		return KindOneOf, true
	default:
		return 0, false
	}
}

func readProperties(src objsource.Source, fileName, defName string) ([]Property, error) {
	if _, ok := src.AllowMappingStart(); !ok {
		return nil, loadErr(src, fileName, fmt.Sprintf("definition %q: properties must be a mapping", defName))
	}
	var props []Property
	for {
		if src.AllowMappingEnd() {
			break
		}
		key, ok := src.AllowLiteral()
		if !ok {
			return nil, loadErr(src, fileName, fmt.Sprintf("definition %q: expected a property name", defName))
		}
		if _, ok := src.AllowMappingStart(); !ok {
			return nil, loadErr(src, fileName, fmt.Sprintf("definition %q: property %q must be a mapping", defName, key.S))
		}
		p := Property{Name: key.S}
		for {
			if src.AllowMappingEnd() {
				break
			}
			pk, ok := src.AllowLiteral()
			if !ok {
				return nil, loadErr(src, fileName, fmt.Sprintf("definition %q: property %q: expected a field name", defName, key.S))
			}
			switch pk.S {
			case "type":
				lit, _ := src.AllowLiteral()
				p.TypeName = lit.S
			case "required":
				lit, _ := src.AllowLiteral()
				p.Required = lit.B
			default:
				return nil, fmt.Errorf("%s: definition %q: property %q: unexpected field %q", fileName, defName, key.S, pk.S)
			}
		}
		props = append(props, p)
	}
	return props, nil
}

func readStringList(src objsource.Source, fileName, defName, field string) ([]string, error) {
	if _, ok := src.AllowSequenceStart(); !ok {
		return nil, loadErr(src, fileName, fmt.Sprintf("definition %q: %s must be a sequence", defName, field))
	}
	var out []string
	for {
		if src.AllowSequenceEnd() {
			break
		}
		lit, ok := src.AllowLiteral()
		if !ok {
			return nil, loadErr(src, fileName, fmt.Sprintf("definition %q: %s entries must be strings", defName, field))
		}
		out = append(out, lit.S)
	}
	return out, nil
}
