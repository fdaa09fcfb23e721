// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package reader implements the schema-validating template reader (spec
§4.I): ReadTemplate walks an object-event source (package objsource)
against a schema.Registry and a root definition name, producing a
tmpltoken.Token tree plus the number of bytes charged to do so.

Scalar strings are split into literal/expression segments by
parseScalar; a single embedded expression becomes a BasicExpression
token (or collapses to a plain string literal when it is nothing more
than a quoted string), and multiple segments are rewritten as one
format(...) call so the unraveler only ever has to evaluate a single
expression per scalar position.
*/
package reader
