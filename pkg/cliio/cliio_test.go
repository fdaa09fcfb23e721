// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package cliio_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionlang/actionlang/pkg/cliio"
)

func TestPlainUIPrintfAlwaysWrites(t *testing.T) {
	var out, errBuf bytes.Buffer
	ui := cliio.NewPlainUIWriters(false, &out, &errBuf)
	ui.Printf("hello %s", "world")
	assert.Equal(t, "hello world", out.String())
}

func TestPlainUIDebugfGatedByDebugFlag(t *testing.T) {
	var out, errBuf bytes.Buffer
	ui := cliio.NewPlainUIWriters(false, &out, &errBuf)
	ui.Debugf("trace")
	assert.Empty(t, errBuf.String())

	ui = cliio.NewPlainUIWriters(true, &out, &errBuf)
	ui.Verbosef("trace")
	assert.Equal(t, "trace", errBuf.String())
}

func TestRequestReaderSplitsOnDelimiter(t *testing.T) {
	input := "{\"a\":1}\n---\n{\"a\":2}\n---\n"
	rr := cliio.NewRequestReader(strings.NewReader(input))

	doc, ok := rr.Next()
	require.True(t, ok)
	assert.Equal(t, "{\"a\":1}\n", string(doc))

	doc, ok = rr.Next()
	require.True(t, ok)
	assert.Equal(t, "{\"a\":2}\n", string(doc))

	_, ok = rr.Next()
	assert.False(t, ok)
}

func TestWriteResponseAppendsDelimiter(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, cliio.WriteResponse(&out, false, map[string]int{"a": 1}))
	assert.Equal(t, "{\"a\":1}\n---\n", out.String())
}

func TestWriteResponsePretty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, cliio.WriteResponse(&out, true, map[string]int{"a": 1}))
	assert.Contains(t, out.String(), "\n  \"a\": 1\n")
	assert.True(t, strings.HasSuffix(out.String(), "\n---\n"))
}
