// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package schema implements the schema model (spec §3/§4.H): tagged-sum
definitions over {Null, Boolean, Number, String, Sequence, Mapping,
OneOf}, a name-addressed Registry for cross-referencing them, and the
validation pass that checks sequence item types, mapping loose-key/value
pairing, and one-of disambiguation constraints.

A user-authored schema document is itself read through the same
object-event source contract (package objsource) the template reader
uses, its shape checked by direct structural descent in Load (no
meta-schema Registry is built), then assembled into a Registry of
Definition values.
*/
package schema
