// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package schema

import "fmt"

// ValidationError reports one problem found either while loading a user
// schema document or while cross-checking an assembled Registry. Its
// rendering follows the "<file> (Line: L, Col: C) <message>" convention
// tmpltoken.Position uses elsewhere, rather than the boxed,
// source-line-quoting style; a schema error always names the offending
// definition, which makes the extra source-line decoration redundant.
type ValidationError struct {
	Position positionLike
	Message  string
}

// positionLike is satisfied by tmpltoken.Position; an unknown position
// renders as an empty string and the message is then left unprefixed.
type positionLike interface {
	String() string
}

func (e ValidationError) Error() string {
	if e.Position == nil {
		return e.Message
	}
	return e.Position.String() + e.Message
}

// NewValidationError builds a ValidationError for definition name at pos.
func NewValidationError(name string, pos positionLike, format string, args ...interface{}) error {
	return ValidationError{Position: pos, Message: fmt.Sprintf("%s: %s", name, fmt.Sprintf(format, args...))}
}
