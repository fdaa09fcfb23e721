// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

// Package tmpltoken implements the template token model (spec §3/§4.G): a
// tree-shaped, tagged sum of scalar/sequence/mapping/expression variants
// with optional file/line/column provenance, plus the persisted compact
// JSON form (spec §6.3).
package tmpltoken
