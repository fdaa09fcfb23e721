// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package objsource

import "github.com/actionlang/actionlang/pkg/ctxval"

// Literal is one of the four scalar kinds an object source can hand back
// from AllowLiteral.
type Literal struct {
	Kind ctxval.Kind // KindNull, KindBoolean, KindNumber, or KindString
	B    bool
	N    float64
	S    string
	Line int // 0 when unavailable
	Col  int
}

// SequenceHandle and MappingHandle are opaque per spec §6.1 ("opaque
// seq-handle" / "opaque map-handle"); sources use them only to remember
// which collection is currently open. The reader reads only their
// Line/Col, for error positions.
type SequenceHandle struct{ line, col int }
type MappingHandle struct{ line, col int }

func (h SequenceHandle) Line() int { return h.line }
func (h SequenceHandle) Col() int  { return h.col }
func (h MappingHandle) Line() int  { return h.line }
func (h MappingHandle) Col() int   { return h.col }

// Source is the seven-operation contract spec §6.1 defines. Every
// Allow* method both returns the matched value AND advances the cursor
// when it matches, or reports !ok and leaves the cursor untouched so the
// reader can try a different shape (spec: "returns the value AND
// advances if it matches; returns none/false otherwise").
type Source interface {
	ValidateStart() error
	ValidateEnd() error

	AllowLiteral() (Literal, bool)
	AllowSequenceStart() (SequenceHandle, bool)
	AllowSequenceEnd() bool
	AllowMappingStart() (MappingHandle, bool)
	AllowMappingEnd() bool

	// Err reports a sticky hard error detected during traversal (e.g. a
	// rejected YAML alias/anchor, or a malformed token) that a string of
	// false-returning Allow* calls alone can't distinguish from "no shape
	// matched, try another". Callers should check Err() once every Allow*
	// candidate for the current position has returned false.
	Err() error
}
