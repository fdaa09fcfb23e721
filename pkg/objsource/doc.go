// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

// Package objsource implements the object-event source contract consumed
// by the template reader and schema loader (spec §6.1): a single-pass
// stream of validate/allow-literal/allow-sequence/allow-mapping events
// driven from a host JSON or YAML document. Callers see no lookahead; the
// JSON source buffers one token internally.
package objsource
