// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package unravel

import (
	"fmt"

	"github.com/actionlang/actionlang/pkg/ctxval"
	"github.com/actionlang/actionlang/pkg/expr"
	"github.com/actionlang/actionlang/pkg/memsize"
	"github.com/actionlang/actionlang/pkg/tmpltoken"
)

// parentKind describes what a pending token is nested under, which the
// unravel(expand) table (spec §4.J) branches on.
type parentKind int

const (
	parentRoot parentKind = iota
	parentSequenceItem
	parentMappingKey
	parentMappingValue
)

// frame is one open sequence/mapping scope. The cursor's position is
// always derivable from the frame stack: the top frame's (idx, atKey)
// picks out exactly one pending child, or "end of scope" once idx runs
// off the end.
type frame struct {
	tok    *tmpltoken.Token // KindSequence or KindMapping
	idx    int
	atKey  bool // mapping only: true while idx's key hasn't been consumed yet
	charge int  // bytes charged when this frame was pushed, released on pop
}

// Cursor is the unraveler's cursor over one root token tree (spec §4.J).
// It shares its EvalContext (and therefore its memsize.Counter/DepthGuard)
// with the expressions it evaluates along the way, so byte and depth
// accounting is continuous across evaluating expressions and walking the
// tree. The reader charges its own Counter (reader.Context), separate
// from this one.
type Cursor struct {
	root   *tmpltoken.Token
	stack  []*frame
	evalCt *expr.EvalContext
	errs   []error
}

// NewCursor starts a cursor at the root of tree, ready for read operations.
func NewCursor(tree *tmpltoken.Token, evalCtx *expr.EvalContext) *Cursor {
	return &Cursor{root: tree, evalCt: evalCtx}
}

// Errors returns the soft errors recorded while substituting failed
// expressions (spec §4.J's error-recovery policy: never abort traversal).
func (c *Cursor) Errors() []error { return c.errs }

func (c *Cursor) recordError(err error) {
	c.errs = append(c.errs, err)
}

// current returns the token pending at the cursor's position, its
// parent-kind, and whether the current scope is instead exhausted (i.e.
// an End event is due).
func (c *Cursor) current() (tok *tmpltoken.Token, pk parentKind, atEnd bool) {
	if len(c.stack) == 0 {
		if c.root == nil {
			return nil, parentRoot, true
		}
		return c.root, parentRoot, false
	}
	top := c.stack[len(c.stack)-1]
	switch top.tok.Kind {
	case tmpltoken.KindSequence:
		items := top.tok.Items()
		if top.idx >= len(items) {
			return nil, parentSequenceItem, true
		}
		return items[top.idx], parentSequenceItem, false
	case tmpltoken.KindMapping:
		pairs := top.tok.Pairs()
		if top.idx >= len(pairs) {
			return nil, parentMappingKey, true
		}
		if top.atKey {
			return pairs[top.idx].Key, parentMappingKey, false
		}
		return pairs[top.idx].Value, parentMappingValue, false
	}
	return nil, parentRoot, true
}

// replace substitutes the token at the cursor's current position in
// place, without moving the cursor.
func (c *Cursor) replace(tok *tmpltoken.Token) {
	if len(c.stack) == 0 {
		c.root = tok
		return
	}
	top := c.stack[len(c.stack)-1]
	switch top.tok.Kind {
	case tmpltoken.KindSequence:
		top.tok.SetItemAt(top.idx, tok)
	case tmpltoken.KindMapping:
		if top.atKey {
			top.tok.SetPairKeyAt(top.idx, tok)
		} else {
			top.tok.SetPairValueAt(top.idx, tok)
		}
	}
}

// advance moves the cursor past whatever is at the current position
// (spec §4.J's "BasicExpression, end -> advance to next sibling" row,
// generalized to every leaf the caller consumes).
func (c *Cursor) advance() {
	if len(c.stack) == 0 {
		c.root = nil
		return
	}
	top := c.stack[len(c.stack)-1]
	switch top.tok.Kind {
	case tmpltoken.KindSequence:
		top.idx++
	case tmpltoken.KindMapping:
		if top.atKey {
			top.atKey = false
		} else {
			top.idx++
			top.atKey = true
		}
	}
}

// evaluate parses and evaluates a BasicExpression token's raw text against
// the cursor's shared EvalContext.
func (c *Cursor) evaluate(tok *tmpltoken.Token) (ctxval.Value, error) {
	tree, err := expr.Parse(tok.Raw(), expr.ParseOptions{Functions: expr.NewFunctionTable()})
	if err != nil {
		return ctxval.Value{}, err
	}
	return expr.EvaluateTree(tree, c.evalCt)
}

// resolveInsertValue resolves an `${{ insert }}` directive's paired value
// into a mapping token, evaluating it first if it is itself an expression.
func (c *Cursor) resolveInsertValue(tok *tmpltoken.Token) (*tmpltoken.Token, error) {
	switch tok.Kind {
	case tmpltoken.KindMapping:
		return tok, nil
	case tmpltoken.KindBasicExpression:
		val, err := c.evaluate(tok)
		if err != nil {
			return nil, err
		}
		result := tmpltoken.FromCanonicalValue(val, tok.Pos)
		if result.Kind != tmpltoken.KindMapping {
			return nil, fmt.Errorf("an insert directive's value must evaluate to a mapping")
		}
		return result, nil
	default:
		return nil, fmt.Errorf("an insert directive's value must be a mapping")
	}
}

// unravel implements spec §4.J's unravel(expand) algorithm: while the
// token at the cursor's current position is an expression and expand is
// true, evaluate it and substitute per the table below, then recheck.
// With expand=false an expression token is left as-is for the caller.
func (c *Cursor) unravel(expand bool) error {
	for {
		tok, pk, atEnd := c.current()
		if atEnd || tok == nil {
			return nil
		}
		if !expand {
			return nil
		}

		switch tok.Kind {
		case tmpltoken.KindBasicExpression:
			val, evalErr := c.evaluate(tok)
			switch pk {
			case parentRoot:
				if evalErr != nil {
					c.recordError(evalErr)
					c.replace(tmpltoken.NewString("", tok.Pos))
					return nil
				}
				c.replace(tmpltoken.FromCanonicalValue(val, tok.Pos))
				return nil

			case parentSequenceItem:
				if evalErr != nil {
					c.recordError(evalErr)
					c.removeCurrentItem()
					continue
				}
				if arr, ok := val.Array(); ok {
					c.spliceCurrentItem(arrayToTokens(arr, tok.Pos))
					continue
				}
				c.replace(tmpltoken.FromCanonicalValue(val, tok.Pos))
				return nil

			case parentMappingKey:
				if evalErr != nil {
					c.recordError(evalErr)
					c.removeCurrentPair()
					continue
				}
				c.replace(tmpltoken.NewString(valueToKeyString(val), tok.Pos))
				return nil

			case parentMappingValue:
				if evalErr != nil {
					c.recordError(evalErr)
					c.replace(tmpltoken.NewString("", tok.Pos))
					return nil
				}
				c.replace(tmpltoken.FromCanonicalValue(val, tok.Pos))
				return nil
			}

		case tmpltoken.KindInsertExpression:
			if pk != parentMappingKey {
				c.recordError(fmt.Errorf("an insert directive is only allowed as a mapping key"))
				c.replace(tmpltoken.NewString("", tok.Pos))
				return nil
			}
			top := c.stack[len(c.stack)-1]
			valueTok := top.tok.Pairs()[top.idx].Value
			merged, err := c.resolveInsertValue(valueTok)
			if err != nil {
				c.recordError(err)
				c.replace(tmpltoken.NewString("${{ insert }}", tok.Pos))
				return nil
			}
			c.spliceCurrentPair(merged.Pairs())
			continue

		default:
			return nil
		}
	}
}

func valueToKeyString(v ctxval.Value) string {
	return ctxval.ConvertToString(v)
}

func arrayToTokens(arr ctxval.ArrayCapability, pos tmpltoken.Position) []*tmpltoken.Token {
	out := make([]*tmpltoken.Token, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		v, _ := arr.At(i)
		out[i] = tmpltoken.FromCanonicalValue(v, pos)
	}
	return out
}

func (c *Cursor) removeCurrentItem() {
	top := c.stack[len(c.stack)-1]
	top.tok.RemoveItemAt(top.idx)
}

func (c *Cursor) spliceCurrentItem(items []*tmpltoken.Token) {
	top := c.stack[len(c.stack)-1]
	top.tok.SpliceItemsAt(top.idx, items)
}

func (c *Cursor) removeCurrentPair() {
	top := c.stack[len(c.stack)-1]
	top.tok.RemovePairAt(top.idx)
}

func (c *Cursor) spliceCurrentPair(pairs []tmpltoken.Pair) {
	top := c.stack[len(c.stack)-1]
	kept := make([]tmpltoken.Pair, 0, len(pairs))
	for _, p := range pairs {
		if p.Key != nil && p.Key.Kind == tmpltoken.KindString && top.tok.HasKey(p.Key.Str()) {
			c.recordError(fmt.Errorf("'%s' is already defined", p.Key.Str()))
			continue
		}
		kept = append(kept, p)
	}
	top.tok.SplicePairsAt(top.idx, kept)
}

// AllowScalar returns the scalar (or, with expand=false, expression)
// token at the cursor's current position and advances past it, or
// (nil, false) if the position doesn't hold a scalar.
func (c *Cursor) AllowScalar(expand bool) (*tmpltoken.Token, bool) {
	if err := c.unravel(expand); err != nil {
		c.recordError(err)
		return nil, false
	}
	tok, _, atEnd := c.current()
	if atEnd || tok == nil {
		return nil, false
	}
	switch tok.Kind {
	case tmpltoken.KindNull, tmpltoken.KindBoolean, tmpltoken.KindNumber, tmpltoken.KindString:
		c.advance()
		return tok, true
	case tmpltoken.KindBasicExpression, tmpltoken.KindInsertExpression:
		if !expand {
			c.advance()
			return tok, true
		}
	}
	return nil, false
}

// AllowSequenceStart descends into a sequence at the current position,
// pushing a new frame, or returns false if the position isn't a sequence.
func (c *Cursor) AllowSequenceStart(expand bool) bool {
	if err := c.unravel(expand); err != nil {
		c.recordError(err)
		return false
	}
	tok, _, atEnd := c.current()
	if atEnd || tok == nil || tok.Kind != tmpltoken.KindSequence {
		return false
	}
	return c.pushFrame(tok, false) == nil
}

// AllowSequenceEnd closes the innermost sequence frame if it is fully
// consumed, advancing the parent cursor past it.
func (c *Cursor) AllowSequenceEnd(expand bool) bool {
	if len(c.stack) == 0 {
		return false
	}
	top := c.stack[len(c.stack)-1]
	if top.tok.Kind != tmpltoken.KindSequence {
		return false
	}
	if err := c.unravel(expand); err != nil {
		c.recordError(err)
		return false
	}
	if top.idx < len(top.tok.Items()) {
		return false
	}
	c.popFrame()
	return true
}

// AllowMappingStart descends into a mapping at the current position,
// pushing a new frame, or returns false if the position isn't a mapping.
func (c *Cursor) AllowMappingStart(expand bool) bool {
	if err := c.unravel(expand); err != nil {
		c.recordError(err)
		return false
	}
	tok, _, atEnd := c.current()
	if atEnd || tok == nil || tok.Kind != tmpltoken.KindMapping {
		return false
	}
	return c.pushFrame(tok, true) == nil
}

// AllowMappingEnd closes the innermost mapping frame if it is fully
// consumed (cursor sitting just past the last value), advancing the
// parent cursor past it.
func (c *Cursor) AllowMappingEnd(expand bool) bool {
	if len(c.stack) == 0 {
		return false
	}
	top := c.stack[len(c.stack)-1]
	if top.tok.Kind != tmpltoken.KindMapping {
		return false
	}
	if err := c.unravel(expand); err != nil {
		c.recordError(err)
		return false
	}
	if !top.atKey || top.idx < len(top.tok.Pairs()) {
		return false
	}
	c.popFrame()
	return true
}

// ReadEnd is AllowSequenceEnd's strict counterpart: it errors rather than
// returning false when the cursor isn't at the end of the innermost
// sequence.
func (c *Cursor) ReadEnd(expand bool) error {
	if c.AllowSequenceEnd(expand) {
		return nil
	}
	return fmt.Errorf("expected the end of a sequence")
}

// ReadMappingEnd is AllowMappingEnd's strict counterpart.
func (c *Cursor) ReadMappingEnd(expand bool) error {
	if c.AllowMappingEnd(expand) {
		return nil
	}
	return fmt.Errorf("expected the end of a mapping")
}

// SkipSequenceItem discards the current sequence item structurally,
// without evaluating it.
func (c *Cursor) SkipSequenceItem() {
	if len(c.stack) == 0 {
		return
	}
	top := c.stack[len(c.stack)-1]
	if top.tok.Kind == tmpltoken.KindSequence && top.idx < len(top.tok.Items()) {
		top.idx++
	}
}

// SkipMappingKey discards the current mapping key structurally, moving
// the cursor to its paired value without evaluating the key.
func (c *Cursor) SkipMappingKey() {
	if len(c.stack) == 0 {
		return
	}
	top := c.stack[len(c.stack)-1]
	if top.tok.Kind == tmpltoken.KindMapping && top.atKey {
		top.atKey = false
	}
}

// SkipMappingValue discards the current mapping value structurally,
// advancing to the next key without evaluating it.
func (c *Cursor) SkipMappingValue() {
	if len(c.stack) == 0 {
		return
	}
	top := c.stack[len(c.stack)-1]
	if top.tok.Kind == tmpltoken.KindMapping && !top.atKey {
		top.idx++
		top.atKey = true
	}
}

func (c *Cursor) pushFrame(tok *tmpltoken.Token, atKey bool) error {
	if err := c.evalCt.Depth.Push(); err != nil {
		return err
	}
	if err := c.evalCt.Counter.Add(memsize.MinObjectSize); err != nil {
		c.evalCt.Depth.Pop()
		return err
	}
	c.stack = append(c.stack, &frame{tok: tok, atKey: atKey, charge: memsize.MinObjectSize})
	return nil
}

func (c *Cursor) popFrame() {
	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.evalCt.Depth.Pop()
	c.evalCt.Counter.Subtract(top.charge)
	c.advance()
}
