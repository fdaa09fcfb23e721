// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionlang/actionlang/pkg/config"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadFillsInMissingFieldsFromDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[limits]\nmax_depth = 10\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Limits.MaxDepth)
	assert.Equal(t, config.Default().Limits.MaxBytes, cfg.Limits.MaxBytes)
}

func TestApplyFlagOverridesTakesPrecedenceOverFile(t *testing.T) {
	cfg := config.Default()
	overridden := cfg.ApplyFlagOverrides(1000, 5, 0)
	assert.Equal(t, 1000, overridden.Limits.MaxBytes)
	assert.Equal(t, 5, overridden.Limits.MaxDepth)
	assert.Equal(t, cfg.Limits.TraceMemoryBudget, overridden.Limits.TraceMemoryBudget)
}
