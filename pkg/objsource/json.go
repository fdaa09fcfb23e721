// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package objsource

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/actionlang/actionlang/pkg/ctxval"
)

// jsonSource drives object-source events from a host JSON document using
// encoding/json's streaming Token() API (spec's AMBIENT STACK: no
// ecosystem library in the retrieved pack offers a token-level JSON event
// stream, so stdlib is used here — see DESIGN.md). A single token of
// lookahead lets AllowLiteral/AllowSequenceStart/AllowMappingStart peek
// the next token's shape before committing to consume it, matching the
// "returns the value AND advances if it matches" contract.
type jsonSource struct {
	dec     *json.Decoder
	buf     json.Token
	bufErr  error
	hasBuf  bool
	started bool
	err     error
}

// NewJSONSource builds an object-event Source over r.
func NewJSONSource(r io.Reader) Source {
	return &jsonSource{dec: json.NewDecoder(r)}
}

func (s *jsonSource) peek() (json.Token, error) {
	if !s.hasBuf {
		s.buf, s.bufErr = s.dec.Token()
		s.hasBuf = true
	}
	return s.buf, s.bufErr
}

func (s *jsonSource) consume() {
	s.hasBuf = false
}

func (s *jsonSource) ValidateStart() error {
	s.started = true
	return nil
}

func (s *jsonSource) ValidateEnd() error {
	tok, err := s.peek()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("unexpected trailing content: %v", tok)
}

func (s *jsonSource) Err() error { return s.err }

func (s *jsonSource) AllowLiteral() (Literal, bool) {
	tok, err := s.peek()
	if err != nil {
		return Literal{}, false
	}
	if _, ok := tok.(json.Delim); ok {
		return Literal{}, false
	}
	s.consume()
	switch v := tok.(type) {
	case nil:
		return Literal{Kind: ctxval.KindNull}, true
	case bool:
		return Literal{Kind: ctxval.KindBoolean, B: v}, true
	case float64:
		return Literal{Kind: ctxval.KindNumber, N: v}, true
	case string:
		return Literal{Kind: ctxval.KindString, S: v}, true
	default:
		s.err = fmt.Errorf("unexpected JSON token %T", tok)
		return Literal{}, false
	}
}

func (s *jsonSource) AllowSequenceStart() (SequenceHandle, bool) {
	tok, err := s.peek()
	if err != nil {
		return SequenceHandle{}, false
	}
	d, ok := tok.(json.Delim)
	if !ok || d != '[' {
		return SequenceHandle{}, false
	}
	s.consume()
	return SequenceHandle{}, true
}

func (s *jsonSource) AllowSequenceEnd() bool {
	tok, err := s.peek()
	if err != nil {
		return false
	}
	d, ok := tok.(json.Delim)
	if !ok || d != ']' {
		return false
	}
	s.consume()
	return true
}

func (s *jsonSource) AllowMappingStart() (MappingHandle, bool) {
	tok, err := s.peek()
	if err != nil {
		return MappingHandle{}, false
	}
	d, ok := tok.(json.Delim)
	if !ok || d != '{' {
		return MappingHandle{}, false
	}
	s.consume()
	return MappingHandle{}, true
}

func (s *jsonSource) AllowMappingEnd() bool {
	tok, err := s.peek()
	if err != nil {
		return false
	}
	d, ok := tok.(json.Delim)
	if !ok || d != '}' {
		return false
	}
	s.consume()
	return true
}
