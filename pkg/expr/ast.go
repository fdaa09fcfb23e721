// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package expr

import "github.com/actionlang/actionlang/pkg/ctxval"

// MemoryHint lets a node's evaluateCore tell the evaluator how to charge
// bytes for its result, instead of the evaluator guessing (spec §4.E
// step 4).
type MemoryHint struct {
	Bytes   int
	HasBytes bool
	IsTotal bool // result's full size is already known; depth column may be trimmed
}

// Node is the closed sum of expression tree variants (spec §9: "A closed
// sum of {Literal, Wildcard, NamedContext, Index, And, Or, Not, Eq, Neq,
// Lt, Le, Gt, Ge, Function(kind)} captures every variant; functions vary
// only in evaluate-core.").
type Node interface {
	evaluateCore(ctx *EvalContext) (ctxval.Value, MemoryHint, error)

	// traceFullyRealized reports whether this node's formatted result
	// should be cached for upstream "realized expression" traces.
	traceFullyRealized() bool

	// describe renders the node back to a source-like expression string,
	// used both for realized-expression traces and for diagnostics.
	describe() string
}

// LiteralNode wraps an already-parsed scalar.
type LiteralNode struct {
	Value ctxval.Value
}

// NamedContextNode resolves an identifier against the evaluation
// context's named-context bindings at evaluation time.
type NamedContextNode struct {
	Name string
}

// IndexNode implements both the `.` (dereference) and `[]` (index)
// operators, and carries the wildcard (`*`) flag for filtered-array
// production.
type IndexNode struct {
	Left     Node
	Index    Node // nil when Wildcard is true
	Wildcard bool
}

// AndNode / OrNode hold N (already flattened) operands; spec §4.D
// requires flattening so chains short-circuit over N-ary operands rather
// than nesting pairwise.
type AndNode struct{ Operands []Node }
type OrNode struct{ Operands []Node }

// NotNode negates its operand's truthiness.
type NotNode struct{ Operand Node }

// CompareOp discriminates the six comparison operators.
type CompareOp int

const (
	CompareEq CompareOp = iota
	CompareNeq
	CompareLt
	CompareLe
	CompareGt
	CompareGe
)

// CompareNode implements ==, !=, <, <=, >, >=.
type CompareNode struct {
	Op    CompareOp
	Left  Node
	Right Node
}

// FunctionCallNode invokes a built-in function by name.
type FunctionCallNode struct {
	Name string
	Args []Node
	Def  *FunctionDef
}

// NoOpNode is produced in syntax-only parse mode for identifiers that
// cannot be resolved (spec §4.D: "Unknown identifiers: error unless a
// syntax-only mode is in effect (in which case a no-op node is
// created).").
type NoOpNode struct{}

// Depth computes the expression tree's nesting depth, used to enforce
// spec §3's "Expression trees have depth ≤ 50".
func Depth(n Node) int {
	switch t := n.(type) {
	case *LiteralNode, *NamedContextNode, *NoOpNode:
		return 1
	case *IndexNode:
		d := Depth(t.Left)
		if t.Index != nil {
			if id := Depth(t.Index); id > d {
				d = id
			}
		}
		return d + 1
	case *AndNode:
		return 1 + maxDepth(t.Operands)
	case *OrNode:
		return 1 + maxDepth(t.Operands)
	case *NotNode:
		return 1 + Depth(t.Operand)
	case *CompareNode:
		l, r := Depth(t.Left), Depth(t.Right)
		if r > l {
			l = r
		}
		return l + 1
	case *FunctionCallNode:
		return 1 + maxDepth(t.Args)
	default:
		return 1
	}
}

func maxDepth(nodes []Node) int {
	m := 0
	for _, n := range nodes {
		if d := Depth(n); d > m {
			m = d
		}
	}
	return m
}
