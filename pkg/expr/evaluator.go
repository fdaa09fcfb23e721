// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"strings"

	"github.com/actionlang/actionlang/pkg/ctxval"
	"github.com/actionlang/actionlang/pkg/memsize"
)

// TraceWriter is the thin collaborator spec §1 calls out: callers supply
// a sink for verbose per-node traces (e.g. a CLI's --debug log).
type TraceWriter interface {
	Verbosef(format string, args ...interface{})
}

// NopTraceWriter discards every trace line.
type NopTraceWriter struct{}

func (NopTraceWriter) Verbosef(string, ...interface{}) {}

// DefaultTraceMemoryBudget is the default cap (spec §4.E) on how many
// bytes of "realized expression" strings may be cached per evaluation.
const DefaultTraceMemoryBudget = 1024 * 1024 // 1 MiB

// EvalOptions configures one evaluate-tree call.
type EvalOptions struct {
	MaxBytes          int
	MaxDepth          int
	TraceMemoryBudget int
}

// EvalContext is the opaque per-evaluation state threaded through every
// node's evaluateCore: the named-context bindings, extension state,
// trace sink, and the memory/depth accounting from package memsize.
type EvalContext struct {
	Trace   TraceWriter
	State   interface{}
	Context map[string]ctxval.Value

	Counter *memsize.Counter
	Depth   *memsize.DepthGuard

	traceBudget *memsize.Counter
	level       int
	realized    map[Node]string
}

// EvaluationResult pairs an evaluated value with its trace log.
// EvaluateTree itself returns (ctxval.Value, error), not this type.
type EvaluationResult struct {
	Value ctxval.Value
	Log   []string
}

// NewEvalContext constructs an EvalContext ready for EvaluateTree.
func NewEvalContext(trace TraceWriter, state interface{}, context map[string]ctxval.Value, opts EvalOptions) *EvalContext {
	if trace == nil {
		trace = NopTraceWriter{}
	}
	budget := opts.TraceMemoryBudget
	if budget <= 0 {
		budget = DefaultTraceMemoryBudget
	}
	return &EvalContext{
		Trace:       trace,
		State:       state,
		Context:     context,
		Counter:     memsize.NewCounter(opts.MaxBytes),
		Depth:       memsize.NewDepthGuard(opts.MaxDepth),
		traceBudget: memsize.NewCounter(budget),
		realized:    map[Node]string{},
	}
}

// EvaluateTree runs the per-node algorithm described in spec §4.E over
// the whole tree and returns the canonical result.
func EvaluateTree(tree Node, ctx *EvalContext) (ctxval.Value, error) {
	return ctx.evaluate(tree)
}

// NamedContext resolves name against the bound context values,
// case-insensitively. Missing bindings evaluate to null rather than
// erroring — an unset `env.FOO`-style reference is a common, expected
// case in this language.
func (ctx *EvalContext) NamedContext(name string) ctxval.Value {
	upper := strings.ToUpper(name)
	for k, v := range ctx.Context {
		if strings.ToUpper(k) == upper {
			return v
		}
	}
	return ctxval.Null
}

func (ctx *EvalContext) evaluate(node Node) (ctxval.Value, error) {
	ctx.level++
	defer func() { ctx.level-- }()

	if err := ctx.Depth.Push(); err != nil {
		return ctxval.Null, err
	}
	defer ctx.Depth.Pop()

	ctx.Trace.Verbosef("(%d) Evaluating %s", ctx.level, node.describe())

	before := ctx.Counter.Current()
	val, hint, err := node.evaluateCore(ctx)
	if err != nil {
		return ctxval.Null, err
	}
	childCost := ctx.Counter.Current() - before

	var resultCost int
	switch {
	case hint.HasBytes:
		resultCost = hint.Bytes
	case val.Kind() == ctxval.KindString:
		resultCost = memsize.StringCost(val.RawString())
	default:
		resultCost = memsize.MinObjectSize
	}
	if err := ctx.Counter.Add(resultCost); err != nil {
		return ctxval.Null, err
	}
	if hint.IsTotal {
		// The result's own cost fully represents the value; whatever was
		// charged evaluating children to produce it (e.g. format/join's
		// arguments, or fromJson's JSON text argument) was transient and
		// must not also be retained — otherwise amplifying functions would
		// be billed once per argument AND once for the combined result.
		ctx.Counter.Subtract(childCost)
	}

	if node.traceFullyRealized() {
		ctx.cacheRealized(node, val)
	}

	return val, nil
}

func (ctx *EvalContext) cacheRealized(node Node, val ctxval.Value) {
	s := ctxval.ConvertToString(val)
	cost := memsize.StringCost(s)
	if ctx.traceBudget.Add(cost) != nil {
		return // trace budget exhausted: silently stop caching, never fails evaluation
	}
	ctx.realized[node] = s
}

// Realized returns the cached "realized expression" form for node, if
// any was captured during evaluation.
func (ctx *EvalContext) Realized(node Node) (string, bool) {
	s, ok := ctx.realized[node]
	return s, ok
}
