// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package exprcmd wires the expressions CLI (spec §6.2): batches of
standalone expressions, each evaluated against a shared caller-supplied
context and reported independently so one failing expression in a batch
never aborts the rest.
*/
package exprcmd
