// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package unravel implements the just-in-time template unraveler (spec
§4.J): a cursor over a tmpltoken.Token tree that lazily evaluates
BasicExpression and InsertExpression tokens as the caller walks the
tree, rather than resolving the whole tree up front.

The cursor exposes the same event shape as package objsource/package
reader (AllowScalar/AllowSequenceStart/AllowSequenceEnd/
AllowMappingStart/AllowMappingEnd, plus the stricter ReadEnd/
ReadMappingEnd and the Skip* family), each taking an expand flag: with
expand=false an expression token is surfaced to the caller untouched
(used by callers that want to detect "this value is dynamic" without
paying for evaluation); with expand=true the cursor evaluates it in
place per the unravel(expand) algorithm and only then re-checks what
is at the current position.

Token trees are not shared (spec §3), so the cursor mutates the tree
destructively as it resolves expressions — a sequence-valued expansion
splices its items in at the current position, an insert directive
splices a mapping's pairs into the enclosing mapping, and a plain
scalar result simply replaces the expression token. This keeps the
"cursor holds at most one live path" identity rule cheap: there is
never a second copy of the subtree to keep in sync.
*/
package unravel
