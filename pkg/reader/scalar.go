// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package reader

import (
	"fmt"
	"strings"

	"github.com/actionlang/actionlang/pkg/ctxval"
	"github.com/actionlang/actionlang/pkg/expr"
	"github.com/actionlang/actionlang/pkg/memsize"
	"github.com/actionlang/actionlang/pkg/objsource"
	"github.com/actionlang/actionlang/pkg/schema"
	"github.com/actionlang/actionlang/pkg/tmpltoken"
)

// segment is one alternating literal/expression piece of a split scalar
// string (spec §4.I's parseScalar).
type segment struct {
	isExpr bool
	text   string // literal text, or the expression source without ${{ }}
}

// splitSegments scans s for `${{ ... }}` spans, respecting single-quoted
// strings inside the expression so a literal `}` inside a quoted string
// doesn't prematurely close the span.
func splitSegments(s string) ([]segment, error) {
	var segs []segment
	i := 0
	for i < len(s) {
		idx := strings.Index(s[i:], "${{")
		if idx < 0 {
			if i < len(s) {
				segs = append(segs, segment{text: s[i:]})
			}
			break
		}
		idx += i
		if idx > i {
			segs = append(segs, segment{text: s[i:idx]})
		}
		j := idx + 3
		inQuote := false
		closed := -1
		for j < len(s) {
			c := s[j]
			if c == '\'' {
				inQuote = !inQuote
			} else if !inQuote && c == '}' && j+1 < len(s) && s[j+1] == '}' {
				closed = j
				break
			}
			j++
		}
		if closed < 0 {
			return nil, fmt.Errorf("unterminated expression starting at offset %d", idx)
		}
		segs = append(segs, segment{isExpr: true, text: s[idx+3 : closed]})
		i = closed + 2
	}
	if len(segs) == 0 {
		segs = append(segs, segment{text: ""})
	}
	return segs, nil
}

// parseScalar implements spec §4.I's parseScalar + validation-against-D
// step for one literal value read from the event source.
func parseScalar(ctx *Context, def *schema.Definition, lit objsource.Literal) (*tmpltoken.Token, error) {
	if lit.Kind != ctxval.KindString {
		if err := validateNonStringScalar(ctx, def, lit); err != nil {
			return nil, err
		}
		return literalToken(ctx, lit)
	}
	return parseScalarStringAgainst(ctx, def.EvaluatorContext, lit, stringDefinitionOf(ctx, def))
}

// parseScalarString is also used for mapping keys that are themselves
// expressions, where there is no single scalar Definition to validate
// literal text against (allowedContext is supplied directly instead).
func parseScalarString(ctx *Context, allowedContext []string, lit objsource.Literal) (*tmpltoken.Token, error) {
	return parseScalarStringAgainst(ctx, allowedContext, lit, nil)
}

// restrictedContext turns a definition's possibly-nil allowed-context
// list into a non-nil slice before handing it to expr.Parse: nil means
// "allow any named context" there (the standalone expressions CLI's
// open-ended case), but a definition that simply never declared one
// must restrict to zero allowed names, not fall through to unrestricted.
func restrictedContext(allowed []string) []string {
	if allowed == nil {
		return []string{}
	}
	return allowed
}

func stringDefinitionOf(ctx *Context, def *schema.Definition) *schema.Definition {
	for _, c := range schema.GetScalarDefinitions(ctx.Registry, def) {
		if c.Kind == schema.KindString {
			return c
		}
	}
	return nil
}

func parseScalarStringAgainst(ctx *Context, allowedContext []string, lit objsource.Literal, stringDef *schema.Definition) (*tmpltoken.Token, error) {
	pos := tmpltoken.NewPosition(ctx.FileID, lit.Line, lit.Col)
	segs, err := splitSegments(lit.S)
	if err != nil {
		return nil, fmt.Errorf("%s (Line: %d, Col: %d): %v", ctx.FileID, lit.Line, lit.Col, err)
	}

	hasExpr := false
	for _, s := range segs {
		if s.isExpr {
			hasExpr = true
			break
		}
	}

	if !hasExpr {
		if stringDef == nil {
			return nil, fmt.Errorf("%s (Line: %d, Col: %d): a string was not expected here", ctx.FileID, lit.Line, lit.Col)
		}
		if err := validateStringPredicates(ctx, stringDef, lit.S, lit.Line, lit.Col); err != nil {
			return nil, err
		}
		if err := ctx.Counter.Add(memsize.StringCost(lit.S)); err != nil {
			return nil, err
		}
		return tmpltoken.NewString(lit.S, pos), nil
	}

	if len(allowedContext) == 0 && stringDef == nil {
		return nil, fmt.Errorf("%s (Line: %d, Col: %d): expressions are not allowed here", ctx.FileID, lit.Line, lit.Col)
	}

	if len(segs) == 1 {
		exprText := strings.TrimSpace(segs[0].text)
		if exprText == "insert" {
			if err := ctx.Counter.Add(memsize.MinObjectSize); err != nil {
				return nil, err
			}
			return tmpltoken.NewInsertExpression(pos), nil
		}

		tree, perr := expr.Parse(segs[0].text, expr.ParseOptions{
			Functions:            expr.NewFunctionTable(),
			AllowedNamedContexts: restrictedContext(allowedContext),
			SyntaxOnly:           true,
		})
		if perr != nil {
			return nil, fmt.Errorf("%s (Line: %d, Col: %d): %v", ctx.FileID, lit.Line, lit.Col, perr)
		}
		if litNode, ok := tree.(*expr.LiteralNode); ok && litNode.Value.Kind() == ctxval.KindString && stringDef != nil {
			s := litNode.Value.RawString()
			if err := validateStringPredicates(ctx, stringDef, s, lit.Line, lit.Col); err != nil {
				return nil, err
			}
			if err := ctx.Counter.Add(memsize.StringCost(s)); err != nil {
				return nil, err
			}
			return tmpltoken.NewString(s, pos), nil
		}
		if err := ctx.Counter.Add(memsize.MinObjectSize); err != nil {
			return nil, err
		}
		return tmpltoken.NewBasicExpression(segs[0].text, pos), nil
	}

	if stringDef == nil {
		return nil, fmt.Errorf("%s (Line: %d, Col: %d): a string was not expected here", ctx.FileID, lit.Line, lit.Col)
	}
	rewritten := rewriteAsFormatCall(segs)
	if _, perr := expr.Parse(rewritten, expr.ParseOptions{
		Functions:            expr.NewFunctionTable(),
		AllowedNamedContexts: restrictedContext(allowedContext),
		SyntaxOnly:           true,
	}); perr != nil {
		return nil, fmt.Errorf("%s (Line: %d, Col: %d): %v", ctx.FileID, lit.Line, lit.Col, perr)
	}
	if err := ctx.Counter.Add(memsize.MinObjectSize); err != nil {
		return nil, err
	}
	return tmpltoken.NewBasicExpression(rewritten, pos), nil
}

// rewriteAsFormatCall turns alternating literal/expression segments into
// a single `format('...{0}...{1}...', arg0, arg1, ...)` expression
// source, per spec §4.I: "literal pieces have ' / { / } doubled to
// survive format" — the outer doubling (' -> '') escapes for the
// expression string-literal lexer, the inner doubling ({ -> {{, } -> }})
// escapes for format()'s own placeholder syntax.
func rewriteAsFormatCall(segs []segment) string {
	var tmpl strings.Builder
	var args []string
	argIndex := 0
	for _, s := range segs {
		if s.isExpr {
			tmpl.WriteString(fmt.Sprintf("{%d}", argIndex))
			args = append(args, s.text)
			argIndex++
			continue
		}
		escaped := strings.ReplaceAll(s.text, "'", "''")
		escaped = strings.ReplaceAll(escaped, "{", "{{")
		escaped = strings.ReplaceAll(escaped, "}", "}}")
		tmpl.WriteString(escaped)
	}
	var b strings.Builder
	b.WriteString("format('")
	b.WriteString(tmpl.String())
	b.WriteString("'")
	for _, a := range args {
		b.WriteString(", ")
		b.WriteString(a)
	}
	b.WriteString(")")
	return b.String()
}

func validateNonStringScalar(ctx *Context, def *schema.Definition, lit objsource.Literal) error {
	want := schema.KindNull
	switch lit.Kind {
	case ctxval.KindBoolean:
		want = schema.KindBoolean
	case ctxval.KindNumber:
		want = schema.KindNumber
	case ctxval.KindNull:
		want = schema.KindNull
	}
	for _, c := range schema.GetScalarDefinitions(ctx.Registry, def) {
		if c.Kind == want {
			return nil
		}
	}
	return fmt.Errorf("%s (Line: %d, Col: %d): a %s was not expected here", ctx.FileID, lit.Line, lit.Col, want)
}

func validateStringPredicates(ctx *Context, def *schema.Definition, s string, line, col int) error {
	if def.HasConstant {
		match := def.Constant == s
		if def.IgnoreCase {
			match = strings.EqualFold(def.Constant, s)
		}
		if !match {
			return fmt.Errorf("%s (Line: %d, Col: %d): expected the constant value %q, got %q", ctx.FileID, line, col, def.Constant, s)
		}
	}
	if def.RequireNonEmpty && s == "" {
		return fmt.Errorf("%s (Line: %d, Col: %d): a non-empty string was expected here", ctx.FileID, line, col)
	}
	return nil
}
