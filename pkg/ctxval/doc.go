// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package ctxval implements the canonical value universe that the expression
evaluator operates over: null, boolean, number, string, array, and object.

Values are either primitive (fully owned by the Value itself) or wrap an
external collection that satisfies the ArrayCapability or ObjectCapability
contract. Wrapping never deep-copies the underlying collection, so a huge
externally-supplied context (e.g. a workflow's `github` context) can be
indexed in O(1) without paying to clone it into the canonical form first.

Equality and ordering follow a JavaScript-like "abstract" comparison with
one deliberate deviation: string comparison is case-insensitive.
*/
package ctxval
