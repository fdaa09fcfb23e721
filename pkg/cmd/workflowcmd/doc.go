// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package workflowcmd wires the workflows CLI (spec §6.2): a
command-dispatching request carrying either "parse-workflow" (read every
file of a multi-file workflow, whose entry file must be among them, into
token trees against the built-in permissive document schema) or "evaluate-strategy" (fan a
matrix expression's result out into the set of named-context bindings
each matrix leg evaluates against — the §6.2 SUPPLEMENTED FEATURE this
module's `evaluate-strategy` command implements).
*/
package workflowcmd
