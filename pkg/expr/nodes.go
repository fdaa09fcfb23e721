// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"math"

	"github.com/actionlang/actionlang/pkg/ctxval"
)

func (n *LiteralNode) evaluateCore(ctx *EvalContext) (ctxval.Value, MemoryHint, error) {
	return n.Value, MemoryHint{}, nil
}
func (n *LiteralNode) traceFullyRealized() bool { return false }
func (n *LiteralNode) describe() string         { return ctxval.ConvertToString(n.Value) }

func (n *NamedContextNode) evaluateCore(ctx *EvalContext) (ctxval.Value, MemoryHint, error) {
	return ctx.NamedContext(n.Name), MemoryHint{}, nil
}
func (n *NamedContextNode) traceFullyRealized() bool { return false }
func (n *NamedContextNode) describe() string         { return n.Name }

func (n *NoOpNode) evaluateCore(ctx *EvalContext) (ctxval.Value, MemoryHint, error) {
	return ctxval.Null, MemoryHint{}, nil
}
func (n *NoOpNode) traceFullyRealized() bool { return false }
func (n *NoOpNode) describe() string         { return "" }

func (n *NotNode) evaluateCore(ctx *EvalContext) (ctxval.Value, MemoryHint, error) {
	v, err := ctx.evaluate(n.Operand)
	if err != nil {
		return ctxval.Null, MemoryHint{}, err
	}
	return ctxval.NewBool(ctxval.Falsy(v)), MemoryHint{}, nil
}
func (n *NotNode) traceFullyRealized() bool { return false }
func (n *NotNode) describe() string         { return "!" + n.Operand.describe() }

func (n *CompareNode) evaluateCore(ctx *EvalContext) (ctxval.Value, MemoryHint, error) {
	l, err := ctx.evaluate(n.Left)
	if err != nil {
		return ctxval.Null, MemoryHint{}, err
	}
	r, err := ctx.evaluate(n.Right)
	if err != nil {
		return ctxval.Null, MemoryHint{}, err
	}
	var result bool
	switch n.Op {
	case CompareEq:
		result = ctxval.AbstractEqual(l, r)
	case CompareNeq:
		result = !ctxval.AbstractEqual(l, r)
	case CompareLt:
		result = ctxval.AbstractLess(l, r)
	case CompareLe:
		result = ctxval.AbstractLessOrEqual(l, r)
	case CompareGt:
		result = ctxval.AbstractGreater(l, r)
	case CompareGe:
		result = ctxval.AbstractGreaterOrEqual(l, r)
	}
	return ctxval.NewBool(result), MemoryHint{}, nil
}
func (n *CompareNode) traceFullyRealized() bool { return false }
func (n *CompareNode) describe() string         { return n.Left.describe() + " <op> " + n.Right.describe() }

// AndNode / OrNode short-circuit over N (already flattened) operands,
// returning the first falsy/truthy operand rather than a boolean — the
// last operand wins if every prior one passed.
func (n *AndNode) evaluateCore(ctx *EvalContext) (ctxval.Value, MemoryHint, error) {
	var last ctxval.Value
	for i, op := range n.Operands {
		v, err := ctx.evaluate(op)
		if err != nil {
			return ctxval.Null, MemoryHint{}, err
		}
		last = v
		if ctxval.Falsy(v) {
			return v, MemoryHint{}, nil
		}
		_ = i
	}
	return last, MemoryHint{}, nil
}
func (n *AndNode) traceFullyRealized() bool { return false }
func (n *AndNode) describe() string         { return "(&& chain)" }

func (n *OrNode) evaluateCore(ctx *EvalContext) (ctxval.Value, MemoryHint, error) {
	var last ctxval.Value
	for _, op := range n.Operands {
		v, err := ctx.evaluate(op)
		if err != nil {
			return ctxval.Null, MemoryHint{}, err
		}
		last = v
		if ctxval.Truthy(v) {
			return v, MemoryHint{}, nil
		}
	}
	return last, MemoryHint{}, nil
}
func (n *OrNode) traceFullyRealized() bool { return false }
func (n *OrNode) describe() string         { return "(|| chain)" }

// IndexNode implements `.`, `[]`, and `*`, including the cascade rule for
// indexing into an already-filtered array (spec §4.E).
func (n *IndexNode) evaluateCore(ctx *EvalContext) (ctxval.Value, MemoryHint, error) {
	leftVal, err := ctx.evaluate(n.Left)
	if err != nil {
		return ctxval.Null, MemoryHint{}, err
	}

	if fa, ok := asFilteredArray(leftVal); ok {
		var results []ctxval.Value
		for _, item := range fa.Items() {
			sub, _, err := n.applyTo(ctx, item)
			if err != nil {
				return ctxval.Null, MemoryHint{}, err
			}
			if subfa, ok := asFilteredArray(sub); ok {
				results = append(results, subfa.Items()...)
				continue
			}
			if sub.Kind() == ctxval.KindNull {
				continue
			}
			results = append(results, sub)
		}
		return ctxval.NewArrayCapability(ctxval.NewFilteredArray(results)), MemoryHint{}, nil
	}

	return n.applyTo(ctx, leftVal)
}

func (n *IndexNode) applyTo(ctx *EvalContext, leftVal ctxval.Value) (ctxval.Value, MemoryHint, error) {
	if n.Wildcard {
		arr, obj, ok := leftVal.GetCollectionCapability()
		if !ok {
			return ctxval.NewArrayCapability(ctxval.NewFilteredArray(nil)), MemoryHint{}, nil
		}
		if arr != nil {
			items := make([]ctxval.Value, 0, arr.Len())
			for i := 0; i < arr.Len(); i++ {
				if v, ok := arr.At(i); ok {
					items = append(items, v)
				}
			}
			return ctxval.NewArrayCapability(ctxval.NewFilteredArray(items)), MemoryHint{}, nil
		}
		items := make([]ctxval.Value, 0, obj.Count())
		for _, k := range obj.Keys() {
			if v, ok := obj.Get(k); ok {
				items = append(items, v)
			}
		}
		return ctxval.NewArrayCapability(ctxval.NewFilteredArray(items)), MemoryHint{}, nil
	}

	idxVal, err := ctx.evaluate(n.Index)
	if err != nil {
		return ctxval.Null, MemoryHint{}, err
	}

	arr, obj, ok := leftVal.GetCollectionCapability()
	if !ok {
		return ctxval.Null, MemoryHint{}, nil
	}
	if arr != nil {
		if idxVal.Kind() != ctxval.KindNumber {
			return ctxval.Null, MemoryHint{}, nil
		}
		f := math.Floor(idxVal.Number())
		if math.IsNaN(f) || f < 0 || f >= 2147483648 {
			return ctxval.Null, MemoryHint{}, nil
		}
		v, ok := arr.At(int(f))
		if !ok {
			return ctxval.Null, MemoryHint{}, nil
		}
		return v, MemoryHint{}, nil
	}

	var key string
	if idxVal.Kind() == ctxval.KindString {
		key = idxVal.RawString()
	} else if idxVal.Kind() == ctxval.KindArray || idxVal.Kind() == ctxval.KindObject {
		return ctxval.Null, MemoryHint{}, nil
	} else {
		key = ctxval.ConvertToString(idxVal)
	}
	v, ok := obj.Get(key)
	if !ok {
		return ctxval.Null, MemoryHint{}, nil
	}
	return v, MemoryHint{}, nil
}

func (n *IndexNode) traceFullyRealized() bool { return false }
func (n *IndexNode) describe() string {
	if n.Wildcard {
		return n.Left.describe() + ".*"
	}
	return n.Left.describe() + "[...]"
}

func asFilteredArray(v ctxval.Value) (*ctxval.FilteredArray, bool) {
	c, ok := v.Array()
	if !ok {
		return nil, false
	}
	fa, ok := c.(*ctxval.FilteredArray)
	return fa, ok
}

func (n *FunctionCallNode) evaluateCore(ctx *EvalContext) (ctxval.Value, MemoryHint, error) {
	if n.Def == nil {
		return ctxval.Null, MemoryHint{}, fmt.Errorf("function '%s' has no implementation bound", n.Name)
	}
	return n.Def.Eval(ctx, n.Args)
}
func (n *FunctionCallNode) traceFullyRealized() bool { return true }
func (n *FunctionCallNode) describe() string {
	s := n.Name + "("
	for i, a := range n.Args {
		if i > 0 {
			s += ", "
		}
		s += a.describe()
	}
	return s + ")"
}
