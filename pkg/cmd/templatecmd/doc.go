// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package templatecmd wires the templates CLI (spec §6.2): each request
loads a schema, then reads and unravels a batch of templates against it,
reporting each template's fully-expanded value (or the soft errors its
unraveling recorded) independently.
*/
package templatecmd
