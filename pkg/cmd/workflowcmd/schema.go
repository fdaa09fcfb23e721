// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package workflowcmd

import (
	"sync"

	"github.com/actionlang/actionlang/pkg/schema"
)

// documentRootType is the root definition name every parsed workflow
// file is read against.
const documentRootType = "document"

var (
	documentSchemaOnce sync.Once
	documentSchema     *schema.Registry
)

// sharedDocumentSchema returns the process-wide document schema,
// building it on first use and reusing the same immutable Registry for
// every later call (spec §5: "The internal-schema singleton is
// initialized on first use and is afterwards read-only").
func sharedDocumentSchema() *schema.Registry {
	documentSchemaOnce.Do(func() {
		reg := buildDocumentSchema()
		if errs := schema.Validate(reg); len(errs) > 0 {
			panic("workflowcmd: built-in document schema is invalid: " + errs[0].Error())
		}
		documentSchema = reg
	})
	return documentSchema
}

// buildDocumentSchema assembles the permissive schema.Registry workflow
// files are read against: spec.md's Non-goals explicitly exclude "the
// concrete schema contents of any particular workflow format", so rather
// than hard-coding a GitHub-Actions-shaped schema, parse-workflow accepts
// any well-formed YAML/JSON document — a "document" one-of over every
// scalar kind plus a self-referencing sequence/mapping.
func buildDocumentSchema() *schema.Registry {
	reg := schema.NewRegistry()
	reg.Add(&schema.Definition{Name: "null-type", Kind: schema.KindNull})
	reg.Add(&schema.Definition{Name: "boolean-type", Kind: schema.KindBoolean})
	reg.Add(&schema.Definition{Name: "number-type", Kind: schema.KindNumber})
	reg.Add(&schema.Definition{Name: "string-type", Kind: schema.KindString})
	reg.Add(&schema.Definition{Name: "sequence-type", Kind: schema.KindSequence, ItemType: documentRootType})
	reg.Add(&schema.Definition{
		Name: "mapping-type", Kind: schema.KindMapping,
		LooseKeyType: "string-type", LooseValueType: documentRootType,
	})
	reg.Add(&schema.Definition{
		Name: documentRootType, Kind: schema.KindOneOf,
		Refs: []string{"null-type", "boolean-type", "number-type", "string-type", "sequence-type", "mapping-type"},
	})
	return reg
}
