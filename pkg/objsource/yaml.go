// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package objsource

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/actionlang/actionlang/pkg/ctxval"
)

// yamlFrame tracks one open sequence/mapping node: which node it is, and
// the index of the child currently exposed as "pending". For a mapping
// node, Content is the flat [key0, val0, key1, val1, ...] list yaml.v3
// produces, so key and value scalars are served as ordinary pending
// nodes one after another — exactly like the JSON source's Token()
// stream does for object keys.
type yamlFrame struct {
	node *yaml.Node
	idx  int
}

// yamlSource drives object-source events by walking an already-parsed
// *yaml.Node tree node-by-node rather than calling Decode into
// interface{} — doing so lets it refuse to dereference an AliasNode
// before it expands, since yaml.v3 has no direct "disable aliases" flag
// (spec §6.1: YAML sources "must disable anchors/aliases to prevent
// exponential expansion attacks").
type yamlSource struct {
	stack   []*yamlFrame
	pending *yaml.Node
	err     error
}

// NewYAMLSource parses data as a single YAML document and builds an
// object-event Source over it.
func NewYAMLSource(data []byte) (Source, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	s := &yamlSource{}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		s.pending = doc.Content[0]
	}
	return s, nil
}

func (s *yamlSource) ValidateStart() error { return nil }

func (s *yamlSource) ValidateEnd() error {
	if s.err != nil {
		return s.err
	}
	if s.pending != nil || len(s.stack) > 0 {
		return fmt.Errorf("unexpected trailing YAML content")
	}
	return nil
}

func (s *yamlSource) Err() error { return s.err }

// rejectIfAlias reports whether the pending node is an alias/anchor
// reference, recording a sticky error and refusing to serve it.
func (s *yamlSource) rejectIfAlias() bool {
	if s.pending == nil || s.pending.Kind != yaml.AliasNode {
		return false
	}
	s.err = fmt.Errorf("line %d: YAML anchors/aliases are not allowed", s.pending.Line)
	return true
}

// advanceWithinFrame is called whenever the currently pending child (a
// consumed scalar, or a nested collection whose End event just fired)
// has been fully accounted for; it moves the cursor to the next sibling
// in the innermost open frame, or to "exhausted" (pending=nil) when none
// remain.
func (s *yamlSource) advanceWithinFrame() {
	if len(s.stack) == 0 {
		s.pending = nil
		return
	}
	top := s.stack[len(s.stack)-1]
	top.idx++
	if top.idx < len(top.node.Content) {
		s.pending = top.node.Content[top.idx]
	} else {
		s.pending = nil
	}
}

func (s *yamlSource) AllowLiteral() (Literal, bool) {
	if s.err != nil || s.pending == nil {
		return Literal{}, false
	}
	if s.rejectIfAlias() {
		return Literal{}, false
	}
	n := s.pending
	if n.Kind != yaml.ScalarNode {
		return Literal{}, false
	}
	lit := scalarLiteral(n)
	s.advanceWithinFrame()
	return lit, true
}

func scalarLiteral(n *yaml.Node) Literal {
	switch n.Tag {
	case "!!null":
		return Literal{Kind: ctxval.KindNull, Line: n.Line, Col: n.Column}
	case "!!bool":
		var b bool
		_ = n.Decode(&b)
		return Literal{Kind: ctxval.KindBoolean, B: b, Line: n.Line, Col: n.Column}
	case "!!int", "!!float":
		var f float64
		_ = n.Decode(&f)
		return Literal{Kind: ctxval.KindNumber, N: f, Line: n.Line, Col: n.Column}
	default:
		return Literal{Kind: ctxval.KindString, S: n.Value, Line: n.Line, Col: n.Column}
	}
}

func (s *yamlSource) AllowSequenceStart() (SequenceHandle, bool) {
	if s.err != nil || s.pending == nil {
		return SequenceHandle{}, false
	}
	if s.rejectIfAlias() {
		return SequenceHandle{}, false
	}
	n := s.pending
	if n.Kind != yaml.SequenceNode {
		return SequenceHandle{}, false
	}
	s.stack = append(s.stack, &yamlFrame{node: n, idx: 0})
	if len(n.Content) > 0 {
		s.pending = n.Content[0]
	} else {
		s.pending = nil
	}
	return SequenceHandle{line: n.Line, col: n.Column}, true
}

func (s *yamlSource) AllowSequenceEnd() bool {
	return s.allowFrameEnd(yaml.SequenceNode)
}

func (s *yamlSource) AllowMappingStart() (MappingHandle, bool) {
	if s.err != nil || s.pending == nil {
		return MappingHandle{}, false
	}
	if s.rejectIfAlias() {
		return MappingHandle{}, false
	}
	n := s.pending
	if n.Kind != yaml.MappingNode {
		return MappingHandle{}, false
	}
	s.stack = append(s.stack, &yamlFrame{node: n, idx: 0})
	if len(n.Content) > 0 {
		s.pending = n.Content[0]
	} else {
		s.pending = nil
	}
	return MappingHandle{line: n.Line, col: n.Column}, true
}

func (s *yamlSource) AllowMappingEnd() bool {
	return s.allowFrameEnd(yaml.MappingNode)
}

func (s *yamlSource) allowFrameEnd(kind yaml.Kind) bool {
	if s.err != nil || len(s.stack) == 0 {
		return false
	}
	top := s.stack[len(s.stack)-1]
	if top.node.Kind != kind || top.idx < len(top.node.Content) {
		return false
	}
	s.stack = s.stack[:len(s.stack)-1]
	s.advanceWithinFrame()
	return true
}
