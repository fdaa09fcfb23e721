// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package cliio provides the output writer and request/response framing
the three CLI binaries (§6.2) share, adapted from the teacher's
pkg/cmd/core.PlainUI. PlainUI implements expr.TraceWriter, so it can
serve as an evaluation trace sink; the CLI commands use it for --debug
output and collect evaluation traces with their own per-request writer.
*/
package cliio

import (
	"fmt"
	"io"
	"os"
)

// PlainUI writes plain output to stdout and, when Debug is set,
// verbose/debug traces to stderr — the same split the teacher's
// PlainUI uses so template output on stdout never mixes with
// diagnostic noise.
type PlainUI struct {
	debug bool
	out   io.Writer
	err   io.Writer
}

// NewPlainUI constructs a PlainUI writing to stdout/stderr.
func NewPlainUI(debug bool) PlainUI {
	return PlainUI{debug: debug, out: os.Stdout, err: os.Stderr}
}

// NewPlainUIWriters constructs a PlainUI over caller-supplied writers,
// for tests that want to capture output without touching os.Stdout.
func NewPlainUIWriters(debug bool, out, err io.Writer) PlainUI {
	return PlainUI{debug: debug, out: out, err: err}
}

// Printf writes unconditionally to the output stream.
func (ui PlainUI) Printf(format string, args ...interface{}) {
	fmt.Fprintf(ui.out, format, args...)
}

// Debugf writes to the error stream only when --debug is set.
func (ui PlainUI) Debugf(format string, args ...interface{}) {
	if ui.debug {
		fmt.Fprintf(ui.err, format, args...)
	}
}

// Verbosef implements expr.TraceWriter, routing per-node evaluation
// traces (spec §4.E) through the same --debug gate as Debugf.
func (ui PlainUI) Verbosef(format string, args ...interface{}) {
	ui.Debugf(format, args...)
}

// DebugWriter exposes the error stream directly for callers that want
// to stream rather than format line-by-line (e.g. a pretty-printer).
// It is a no-op sink when debug output is disabled, so callers never
// need to branch on whether debug is on before writing to it.
func (ui PlainUI) DebugWriter() io.Writer {
	if ui.debug {
		return ui.err
	}
	return noopWriter{}
}

type noopWriter struct{}

func (noopWriter) Write(data []byte) (int, error) { return len(data), nil }
