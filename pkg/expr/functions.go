// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/actionlang/actionlang/pkg/ctxval"
	"github.com/actionlang/actionlang/pkg/memsize"
)

// FunctionDef describes one built-in function: its arity bounds (spec
// §4.F table) and its evaluator. MaxArgs of -1 means unbounded.
type FunctionDef struct {
	Name    string
	MinArgs int
	MaxArgs int
	Eval    func(ctx *EvalContext, args []Node) (ctxval.Value, MemoryHint, error)
}

// FunctionTable is a case-insensitive registry of built-ins, looked up by
// the parser while binding FunctionCallNode.Def (spec §4.D).
type FunctionTable struct {
	byName map[string]*FunctionDef
}

// NewFunctionTable builds a table preloaded with every built-in spec §4.F
// defines: contains, startsWith, endsWith, join, format, toJson, fromJson.
func NewFunctionTable() FunctionTable {
	t := FunctionTable{byName: map[string]*FunctionDef{}}
	for _, def := range []*FunctionDef{
		{Name: "contains", MinArgs: 2, MaxArgs: 2, Eval: evalContains},
		{Name: "startsWith", MinArgs: 2, MaxArgs: 2, Eval: evalStartsWith},
		{Name: "endsWith", MinArgs: 2, MaxArgs: 2, Eval: evalEndsWith},
		{Name: "join", MinArgs: 1, MaxArgs: 2, Eval: evalJoin},
		{Name: "format", MinArgs: 1, MaxArgs: -1, Eval: evalFormat},
		{Name: "toJson", MinArgs: 1, MaxArgs: 1, Eval: evalToJson},
		{Name: "fromJson", MinArgs: 1, MaxArgs: 1, Eval: evalFromJson},
	} {
		t.byName[strings.ToUpper(def.Name)] = def
	}
	return t
}

// Lookup finds a function by name, case-insensitively.
func (t FunctionTable) Lookup(name string) (*FunctionDef, bool) {
	def, ok := t.byName[strings.ToUpper(name)]
	return def, ok
}

func evalArgs(ctx *EvalContext, nodes []Node) ([]ctxval.Value, error) {
	out := make([]ctxval.Value, len(nodes))
	for i, n := range nodes {
		v, err := ctx.evaluate(n)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func evalContains(ctx *EvalContext, args []Node) (ctxval.Value, MemoryHint, error) {
	vals, err := evalArgs(ctx, args)
	if err != nil {
		return ctxval.Null, MemoryHint{}, err
	}
	haystack, needle := vals[0], vals[1]
	if arr, ok := haystack.Array(); ok {
		for i := 0; i < arr.Len(); i++ {
			v, _ := arr.At(i)
			if ctxval.AbstractEqual(v, needle) {
				return ctxval.NewBool(true), MemoryHint{}, nil
			}
		}
		return ctxval.NewBool(false), MemoryHint{}, nil
	}
	h := strings.ToUpper(ctxval.ConvertToString(haystack))
	n := strings.ToUpper(ctxval.ConvertToString(needle))
	return ctxval.NewBool(strings.Contains(h, n)), MemoryHint{}, nil
}

func evalStartsWith(ctx *EvalContext, args []Node) (ctxval.Value, MemoryHint, error) {
	vals, err := evalArgs(ctx, args)
	if err != nil {
		return ctxval.Null, MemoryHint{}, err
	}
	s := strings.ToUpper(ctxval.ConvertToString(vals[0]))
	prefix := strings.ToUpper(ctxval.ConvertToString(vals[1]))
	return ctxval.NewBool(strings.HasPrefix(s, prefix)), MemoryHint{}, nil
}

func evalEndsWith(ctx *EvalContext, args []Node) (ctxval.Value, MemoryHint, error) {
	vals, err := evalArgs(ctx, args)
	if err != nil {
		return ctxval.Null, MemoryHint{}, err
	}
	s := strings.ToUpper(ctxval.ConvertToString(vals[0]))
	suffix := strings.ToUpper(ctxval.ConvertToString(vals[1]))
	return ctxval.NewBool(strings.HasSuffix(s, suffix)), MemoryHint{}, nil
}

// evalJoin implements join(array) and join(array, sep); the default
// separator is a single space (spec §4.F).
func evalJoin(ctx *EvalContext, args []Node) (ctxval.Value, MemoryHint, error) {
	vals, err := evalArgs(ctx, args)
	if err != nil {
		return ctxval.Null, MemoryHint{}, err
	}
	sep := " "
	if len(vals) == 2 {
		sep = ctxval.ConvertToString(vals[1])
	}
	arr, ok := vals[0].Array()
	if !ok {
		return ctxval.NewString(ctxval.ConvertToString(vals[0])), MemoryHint{}, nil
	}
	parts := make([]string, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		v, _ := arr.At(i)
		parts[i] = ctxval.ConvertToString(v)
	}
	joined := strings.Join(parts, sep)
	return ctxval.NewString(joined), MemoryHint{Bytes: memsize.StringCost(joined), HasBytes: true, IsTotal: true}, nil
}

func evalFormat(ctx *EvalContext, args []Node) (ctxval.Value, MemoryHint, error) {
	vals, err := evalArgs(ctx, args)
	if err != nil {
		return ctxval.Null, MemoryHint{}, err
	}
	fmtStr := ctxval.ConvertToString(vals[0])
	out, ferr := formatString(fmtStr, vals[1:])
	if ferr != nil {
		return ctxval.Null, MemoryHint{}, ferr
	}
	return ctxval.NewString(out), MemoryHint{Bytes: memsize.StringCost(out), HasBytes: true, IsTotal: true}, nil
}

// evalToJson renders a canonical value as two-space-indented JSON, walking
// the value tree with an explicit stack (spec §4.F: "non-recursive
// ancestor-stack traversal") rather than recursive descent, so a
// pathologically deep document can't blow the Go call stack.
func evalToJson(ctx *EvalContext, args []Node) (ctxval.Value, MemoryHint, error) {
	vals, err := evalArgs(ctx, args)
	if err != nil {
		return ctxval.Null, MemoryHint{}, err
	}
	out := toJSONString(vals[0])
	return ctxval.NewString(out), MemoryHint{Bytes: memsize.StringCost(out), HasBytes: true, IsTotal: true}, nil
}

// evalFromJson parses a JSON document via the host parser and converts it
// into canonical Values. The hint's Bytes is the full deep size of the
// parsed tree, and it is reported as IsTotal so the JSON text argument is
// not also retained as "children evaluated."
func evalFromJson(ctx *EvalContext, args []Node) (ctxval.Value, MemoryHint, error) {
	vals, err := evalArgs(ctx, args)
	if err != nil {
		return ctxval.Null, MemoryHint{}, err
	}
	s := ctxval.ConvertToString(vals[0])
	var decoded interface{}
	if jerr := json.Unmarshal([]byte(s), &decoded); jerr != nil {
		return ctxval.Null, MemoryHint{}, fmt.Errorf("fromJson: invalid JSON: %w", jerr)
	}
	v := FromGoValue(decoded)
	sizer := memsize.NewCounter(ctx.Counter.Max())
	if serr := ctxval.AddContextData(sizer, v, true); serr != nil {
		return ctxval.Null, MemoryHint{}, serr
	}
	return v, MemoryHint{Bytes: sizer.Current(), HasBytes: true, IsTotal: true}, nil
}

// FromGoValue converts a tree decoded by encoding/json (nil/bool/float64/
// string/[]interface{}/map[string]interface{}) into a canonical Value,
// sorting object keys for deterministic iteration order. Exported for the
// CLI command packages, which decode the same request/context JSON shape
// fromJson() parses at evaluation time.
func FromGoValue(v interface{}) ctxval.Value {
	switch t := v.(type) {
	case nil:
		return ctxval.Null
	case bool:
		return ctxval.NewBool(t)
	case float64:
		return ctxval.NewNumber(t)
	case string:
		return ctxval.NewString(t)
	case []interface{}:
		items := make([]ctxval.Value, len(t))
		for i, e := range t {
			items[i] = FromGoValue(e)
		}
		return ctxval.NewArray(items)
	case map[string]interface{}:
		obj := ctxval.NewObject()
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			obj.Set(k, FromGoValue(t[k]))
		}
		return ctxval.NewObjectValue(obj)
	default:
		return ctxval.Null
	}
}

func toJSONString(root ctxval.Value) string {
	var sb strings.Builder
	type frame struct {
		v       ctxval.Value
		arr     ctxval.ArrayCapability
		obj     ctxval.ObjectCapability
		keys    []string
		idx     int
		indent  int
	}
	writeIndent := func(n int) {
		sb.WriteString(strings.Repeat("  ", n))
	}
	writeScalar := func(v ctxval.Value) {
		switch v.Kind() {
		case ctxval.KindNull:
			sb.WriteString("null")
		case ctxval.KindBoolean:
			if v.Bool() {
				sb.WriteString("true")
			} else {
				sb.WriteString("false")
			}
		case ctxval.KindNumber:
			sb.WriteString(ctxval.FormatNumber(v.Number()))
		case ctxval.KindString:
			b, _ := json.Marshal(v.RawString())
			sb.Write(b)
		}
	}

	var stack []*frame
	push := func(v ctxval.Value, indent int) {
		arr, obj, ok := v.GetCollectionCapability()
		if !ok {
			writeScalar(v)
			return
		}
		fr := &frame{v: v, arr: arr, obj: obj, indent: indent}
		if obj != nil {
			fr.keys = obj.Keys()
		}
		stack = append(stack, fr)
		if arr != nil {
			sb.WriteString("[")
		} else {
			sb.WriteString("{")
		}
	}
	push(root, 0)

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		var length int
		if top.arr != nil {
			length = top.arr.Len()
		} else {
			length = len(top.keys)
		}
		if top.idx >= length {
			if top.idx > 0 {
				sb.WriteString("\n")
				writeIndent(top.indent)
			}
			if top.arr != nil {
				sb.WriteString("]")
			} else {
				sb.WriteString("}")
			}
			stack = stack[:len(stack)-1]
			continue
		}
		if top.idx > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
		writeIndent(top.indent + 1)

		if top.arr != nil {
			v, _ := top.arr.At(top.idx)
			top.idx++
			push(v, top.indent+1)
		} else {
			key := top.keys[top.idx]
			v, _ := top.obj.Get(key)
			top.idx++
			kb, _ := json.Marshal(key)
			sb.Write(kb)
			sb.WriteString(": ")
			push(v, top.indent+1)
		}
	}
	return sb.String()
}
