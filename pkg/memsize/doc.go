// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package memsize provides the bounded resource accounting used by every
other package in this module: a monotonic byte counter and a nesting-depth
guard.

Tokens read by the template reader, canonical values produced during
expression evaluation, and reader/unraveler frames are charged against a
Counter and released when they go out of scope, so amplification attacks
(e.g. repeated `format`/`join` calls) are bounded by max_bytes. The
reader charges a Counter of its own (reader.Context); expression
evaluation and the unraveler's frames share the EvalContext's Counter.
The two are not combined into one total, and the template tokens the
unraveler builds from expression results are not charged.
*/
package memsize
