// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package cmd is home to the three cobra.Command implementations behind
this module's binaries (not to be confused with ./cmd, which holds
each binary's bootstrapping main()):

	pkg/cmd/exprcmd     -- wexpr:     batch-evaluate standalone expressions
	pkg/cmd/templatecmd -- wtemplate: read+unravel templates against a schema
	pkg/cmd/workflowcmd -- wworkflow: parse/evaluate a multi-file workflow

Each subpackage exposes an Options type with NewOptions/NewCmd/Run,
following the same shape the teacher's pkg/cmd/template used for its
own "template" command, and each Run implements the §6.2 stdin/stdout
JSON request framing via pkg/cliio.
*/
package cmd
