// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package pkg is the collection of packages that make up this module: an
expression language (lexer, parser, evaluator, built-in functions), a
schema-validating template reader, and a just-in-time template
unraveler, wrapped in three stdin/stdout CLIs.

# Layering

	pkg/memsize   -- byte/depth accounting shared by every layer above it
	pkg/ctxval    -- the canonical value model expressions operate on
	pkg/expr      -- the expression lexer/parser/evaluator/built-ins (§4.C-F)
	pkg/tmpltoken -- the template token tree (§3)
	pkg/objsource -- JSON/YAML object-event sources template reading walks (§6.1)
	pkg/schema    -- the schema model, loader, and cross-reference validator (§4.H)
	pkg/reader    -- the schema-validating template reader (§4.I)
	pkg/unravel   -- the just-in-time template unraveler (§4.J)
	pkg/config    -- process-wide evaluation limit defaults (TOML + flags)
	pkg/cliio     -- the trace/output writer and stdin/stdout request framing (§6.2)
	pkg/cmd/*     -- the three CLI commands, one per binary under ./cmd

# Entry points

This module builds into three executables, one per §6.2 CLI surface:

	./cmd/wexpr      // evaluate batches of standalone expressions
	./cmd/wtemplate  // read+unravel templates against a schema
	./cmd/wworkflow  // parse/evaluate a multi-file workflow

Each binary is a thin main() that constructs a pkg/cmd/*cmd.Options and
runs it; the framing, evaluation, and error handling live in the
pkg/cmd/*cmd packages so they can be tested without a subprocess.
*/
package pkg
