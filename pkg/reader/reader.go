// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package reader

import (
	"fmt"
	"strings"

	"github.com/actionlang/actionlang/pkg/ctxval"
	"github.com/actionlang/actionlang/pkg/memsize"
	"github.com/actionlang/actionlang/pkg/objsource"
	"github.com/actionlang/actionlang/pkg/schema"
	"github.com/actionlang/actionlang/pkg/tmpltoken"
)

// Context threads the schema registry and the shared byte/depth
// accounting through one ReadTemplate call, mirroring how
// expr.EvalContext threads memsize state through one expression
// evaluation (spec §9: both halves of the system charge through the
// same memsize primitives).
type Context struct {
	Registry *schema.Registry
	Counter  *memsize.Counter
	Depth    *memsize.DepthGuard
	FileID   string
}

// NewContext builds a Context ready for ReadTemplate. A non-positive
// maxBytes/maxDepth falls back to the memsize package defaults.
func NewContext(reg *schema.Registry, maxBytes, maxDepth int, fileID string) *Context {
	return &Context{
		Registry: reg,
		Counter:  memsize.NewCounter(maxBytes),
		Depth:    memsize.NewDepthGuard(maxDepth),
		FileID:   fileID,
	}
}

// ReadTemplate implements readTemplate(ctx, rootTypeName, eventSource,
// fileId) -> {value, bytes} (spec §4.I). It returns the parsed token
// tree and the total bytes charged to ctx.Counter while reading it.
func ReadTemplate(ctx *Context, rootTypeName string, src objsource.Source) (*tmpltoken.Token, int, error) {
	if err := src.ValidateStart(); err != nil {
		return nil, 0, err
	}
	def, ok := ctx.Registry.Lookup(rootTypeName)
	if !ok {
		return nil, 0, fmt.Errorf("%s: unknown root type %q", ctx.FileID, rootTypeName)
	}
	before := ctx.Counter.Current()
	tok, err := readValue(ctx, def, src)
	if err != nil {
		return nil, 0, err
	}
	if err := src.ValidateEnd(); err != nil {
		return nil, 0, err
	}
	return tok, ctx.Counter.Current() - before, nil
}

func sourceErr(ctx *Context, src objsource.Source, msg string) error {
	if err := src.Err(); err != nil {
		return fmt.Errorf("%s: %w", ctx.FileID, err)
	}
	return fmt.Errorf("%s: %s", ctx.FileID, msg)
}

// readValue implements the per-target-definition dispatch of spec §4.I's
// algorithm: try a literal, then a sequence, then a mapping, in that
// event-consuming order (the reader never looks ahead beyond what the
// source itself already committed to by returning a matching Allow*).
func readValue(ctx *Context, def *schema.Definition, src objsource.Source) (*tmpltoken.Token, error) {
	if lit, ok := src.AllowLiteral(); ok {
		return parseScalar(ctx, def, lit)
	}
	if handle, ok := src.AllowSequenceStart(); ok {
		return readSequence(ctx, def, src, handle)
	}
	if handle, ok := src.AllowMappingStart(); ok {
		return readMapping(ctx, def, src, handle)
	}
	return nil, sourceErr(ctx, src, "expected a value")
}

// readAny is used for mapping values whose key was an expression: the
// declared type can't be resolved statically, so the value is read
// structurally without a schema.Definition to validate against.
func readAny(ctx *Context, src objsource.Source) (*tmpltoken.Token, error) {
	if lit, ok := src.AllowLiteral(); ok {
		return literalToken(ctx, lit)
	}
	if handle, ok := src.AllowSequenceStart(); ok {
		pos := tmpltoken.NewPosition(ctx.FileID, handle.Line(), handle.Col())
		if err := ctx.Depth.Push(); err != nil {
			return nil, err
		}
		defer ctx.Depth.Pop()
		var items []*tmpltoken.Token
		for !src.AllowSequenceEnd() {
			item, err := readAny(ctx, src)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if err := ctx.Counter.Add(memsize.MinObjectSize); err != nil {
			return nil, err
		}
		return tmpltoken.NewSequence(items, pos), nil
	}
	if handle, ok := src.AllowMappingStart(); ok {
		pos := tmpltoken.NewPosition(ctx.FileID, handle.Line(), handle.Col())
		if err := ctx.Depth.Push(); err != nil {
			return nil, err
		}
		defer ctx.Depth.Pop()
		var pairs []tmpltoken.Pair
		for !src.AllowMappingEnd() {
			keyLit, ok := src.AllowLiteral()
			if !ok {
				return nil, sourceErr(ctx, src, "expected a mapping key")
			}
			keyTok, err := literalToken(ctx, keyLit)
			if err != nil {
				return nil, err
			}
			valTok, err := readAny(ctx, src)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, tmpltoken.Pair{Key: keyTok, Value: valTok})
		}
		if err := ctx.Counter.Add(memsize.MinObjectSize); err != nil {
			return nil, err
		}
		return tmpltoken.NewMapping(pairs, pos), nil
	}
	return nil, sourceErr(ctx, src, "expected a value")
}

func literalToken(ctx *Context, lit objsource.Literal) (*tmpltoken.Token, error) {
	pos := tmpltoken.NewPosition(ctx.FileID, lit.Line, lit.Col)
	switch lit.Kind {
	case ctxval.KindString:
		if err := ctx.Counter.Add(memsize.StringCost(lit.S)); err != nil {
			return nil, err
		}
		return tmpltoken.NewString(lit.S, pos), nil
	case ctxval.KindNumber:
		if err := ctx.Counter.Add(memsize.MinObjectSize); err != nil {
			return nil, err
		}
		return tmpltoken.NewNumber(lit.N, pos), nil
	case ctxval.KindBoolean:
		if err := ctx.Counter.Add(memsize.MinObjectSize); err != nil {
			return nil, err
		}
		return tmpltoken.NewBool(lit.B, pos), nil
	default:
		if err := ctx.Counter.Add(memsize.MinObjectSize); err != nil {
			return nil, err
		}
		return tmpltoken.NewNull(pos), nil
	}
}

func readSequence(ctx *Context, def *schema.Definition, src objsource.Source, handle objsource.SequenceHandle) (*tmpltoken.Token, error) {
	pos := tmpltoken.NewPosition(ctx.FileID, handle.Line(), handle.Col())
	candidates := schema.GetDefinitionsOfType(ctx.Registry, def, schema.KindSequence)
	if len(candidates) == 0 {
		skipValue(src, sequenceAlreadyOpen)
		return nil, fmt.Errorf("%s (Line: %d, Col: %d): a sequence was not expected here", ctx.FileID, handle.Line(), handle.Col())
	}
	seqDef := candidates[0]
	itemDef, ok := ctx.Registry.Lookup(seqDef.ItemType)
	if !ok {
		return nil, fmt.Errorf("%s: sequence definition %q references undefined item type %q", ctx.FileID, seqDef.Name, seqDef.ItemType)
	}
	if err := ctx.Depth.Push(); err != nil {
		return nil, err
	}
	defer ctx.Depth.Pop()

	var items []*tmpltoken.Token
	for !src.AllowSequenceEnd() {
		item, err := readValue(ctx, itemDef, src)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := ctx.Counter.Add(memsize.MinObjectSize); err != nil {
		return nil, err
	}
	return tmpltoken.NewSequence(items, pos), nil
}

// skipValue mirrors the already-open collection/value's structure to
// balance its End events, so the source cursor lands exactly where the
// caller would expect had the value matched (spec §4.I: "skip every
// nested event (using skipValue, which mirrors the structure to balance
// end events)"). sequenceAlreadyOpen/mappingAlreadyOpen tell it whether
// the caller already consumed the opening Start event.
type openKind int

const (
	sequenceAlreadyOpen openKind = iota
	mappingAlreadyOpen
	noneAlreadyOpen
)

func skipValue(src objsource.Source, already openKind) {
	switch already {
	case sequenceAlreadyOpen:
		for !src.AllowSequenceEnd() {
			skipValue(src, noneAlreadyOpen)
		}
		return
	case mappingAlreadyOpen:
		for !src.AllowMappingEnd() {
			skipValue(src, noneAlreadyOpen) // key
			skipValue(src, noneAlreadyOpen) // value
		}
		return
	}
	if _, ok := src.AllowLiteral(); ok {
		return
	}
	if _, ok := src.AllowSequenceStart(); ok {
		skipValue(src, sequenceAlreadyOpen)
		return
	}
	if _, ok := src.AllowMappingStart(); ok {
		skipValue(src, mappingAlreadyOpen)
		return
	}
}

func readMapping(ctx *Context, def *schema.Definition, src objsource.Source, handle objsource.MappingHandle) (*tmpltoken.Token, error) {
	pos := tmpltoken.NewPosition(ctx.FileID, handle.Line(), handle.Col())
	candidates := schema.GetDefinitionsOfType(ctx.Registry, def, schema.KindMapping)
	if len(candidates) == 0 {
		skipValue(src, mappingAlreadyOpen)
		return nil, fmt.Errorf("%s (Line: %d, Col: %d): a mapping was not expected here", ctx.FileID, handle.Line(), handle.Col())
	}

	if err := ctx.Depth.Push(); err != nil {
		return nil, err
	}
	defer ctx.Depth.Pop()

	if len(candidates) == 1 && len(candidates[0].Properties) == 0 && candidates[0].HasLooseKey() {
		pairs, err := readLooseMapping(ctx, candidates[0], src)
		if err != nil {
			return nil, err
		}
		if err := ctx.Counter.Add(memsize.MinObjectSize); err != nil {
			return nil, err
		}
		return tmpltoken.NewMapping(pairs, pos), nil
	}

	var pairs []tmpltoken.Pair
	seen := map[string]bool{}
	usedExpressionKey := false

	for !src.AllowMappingEnd() {
		keyLit, ok := src.AllowLiteral()
		if !ok {
			return nil, sourceErr(ctx, src, "expected a mapping key")
		}

		if keyLit.Kind == ctxval.KindString && looksLikeExpression(keyLit.S) {
			if !anyReaderContextAllowed(candidates) {
				return nil, fmt.Errorf("%s (Line: %d, Col: %d): expression keys are not allowed here", ctx.FileID, keyLit.Line, keyLit.Col)
			}
			keyTok, err := parseScalarString(ctx, unionReaderContext(candidates), keyLit)
			if err != nil {
				return nil, err
			}
			valTok, err := readAny(ctx, src)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, tmpltoken.Pair{Key: keyTok, Value: valTok})
			usedExpressionKey = true
			continue
		}

		if keyLit.Kind != ctxval.KindString {
			return nil, fmt.Errorf("%s (Line: %d, Col: %d): mapping keys must be strings", ctx.FileID, keyLit.Line, keyLit.Col)
		}
		keyUpper := strings.ToUpper(keyLit.S)
		if seen[keyUpper] {
			return nil, fmt.Errorf("%s (Line: %d, Col: %d): duplicate key %q", ctx.FileID, keyLit.Line, keyLit.Col, keyLit.S)
		}
		seen[keyUpper] = true

		keyTok, err := literalToken(ctx, keyLit)
		if err != nil {
			return nil, err
		}

		prev := candidates
		if typeName, ok := schema.MatchPropertyAndFilter(&candidates, keyLit.S); ok {
			valueDef, ok := ctx.Registry.Lookup(typeName)
			if !ok {
				return nil, fmt.Errorf("%s: property %q references undefined type %q", ctx.FileID, keyLit.S, typeName)
			}
			valTok, err := readValue(ctx, valueDef, src)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, tmpltoken.Pair{Key: keyTok, Value: valTok})
			continue
		}
		candidates = prev

		if loose := looseCandidate(candidates); loose != nil {
			looseValDef, ok := ctx.Registry.Lookup(loose.LooseValueType)
			if !ok {
				return nil, fmt.Errorf("%s: looseValue references undefined type %q", ctx.FileID, loose.LooseValueType)
			}
			valTok, err := readValue(ctx, looseValDef, src)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, tmpltoken.Pair{Key: keyTok, Value: valTok})
			continue
		}

		return nil, fmt.Errorf("%s (Line: %d, Col: %d): unexpected value %q", ctx.FileID, keyLit.Line, keyLit.Col, keyLit.S)
	}

	if len(candidates) > 1 {
		return nil, fmt.Errorf("%s (Line: %d, Col: %d): ambiguous mapping; one of the following properties is required to disambiguate: %s",
			ctx.FileID, handle.Line(), handle.Col(), strings.Join(nonSharedPropertyNames(candidates), ", "))
	}
	if len(candidates) == 1 && !usedExpressionKey {
		if err := checkRequiredProperties(ctx, candidates[0], seen, handle); err != nil {
			return nil, err
		}
	}

	if err := ctx.Counter.Add(memsize.MinObjectSize); err != nil {
		return nil, err
	}
	return tmpltoken.NewMapping(pairs, pos), nil
}

func readLooseMapping(ctx *Context, def *schema.Definition, src objsource.Source) ([]tmpltoken.Pair, error) {
	keyDef, ok := ctx.Registry.Lookup(def.LooseKeyType)
	if !ok {
		return nil, fmt.Errorf("%s: looseKey references undefined type %q", ctx.FileID, def.LooseKeyType)
	}
	valDef, ok := ctx.Registry.Lookup(def.LooseValueType)
	if !ok {
		return nil, fmt.Errorf("%s: looseValue references undefined type %q", ctx.FileID, def.LooseValueType)
	}
	var pairs []tmpltoken.Pair
	for !src.AllowMappingEnd() {
		keyTok, err := readValue(ctx, keyDef, src)
		if err != nil {
			return nil, err
		}
		valTok, err := readValue(ctx, valDef, src)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, tmpltoken.Pair{Key: keyTok, Value: valTok})
	}
	return pairs, nil
}

func looseCandidate(candidates []*schema.Definition) *schema.Definition {
	if len(candidates) == 1 && candidates[0].HasLooseKey() {
		return candidates[0]
	}
	return nil
}

func checkRequiredProperties(ctx *Context, def *schema.Definition, seen map[string]bool, handle objsource.MappingHandle) error {
	var missing []string
	for _, p := range def.Properties {
		if p.Required && !seen[strings.ToUpper(p.Name)] {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s (Line: %d, Col: %d): missing required propert%s: %s",
			ctx.FileID, handle.Line(), handle.Col(), plural(len(missing)), strings.Join(missing, ", "))
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func nonSharedPropertyNames(candidates []*schema.Definition) []string {
	counts := map[string]int{}
	for _, c := range candidates {
		for _, p := range c.Properties {
			counts[p.Name]++
		}
	}
	var names []string
	for name, n := range counts {
		if n < len(candidates) {
			names = append(names, name)
		}
	}
	return names
}

func anyReaderContextAllowed(candidates []*schema.Definition) bool {
	for _, c := range candidates {
		if len(c.ReaderContext) > 0 {
			return true
		}
	}
	return false
}

func unionReaderContext(candidates []*schema.Definition) []string {
	var out []string
	for _, c := range candidates {
		out = append(out, c.ReaderContext...)
	}
	return out
}

func looksLikeExpression(s string) bool {
	trimmed := strings.TrimSpace(s)
	return strings.HasPrefix(trimmed, "${{") && strings.HasSuffix(trimmed, "}}")
}
