// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package config loads the process-wide defaults for the evaluation
limits (spec §4.A: max_bytes, max_depth, and the trace-memory budget
spec §4.E's evaluator caches realized-expression strings against) from
an optional TOML file, in the same "flags override file defaults"
shape the teacher's data_values_flags.go layers env vars, then flag
values, over one another before a template ever runs.
*/
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/actionlang/actionlang/pkg/expr"
	"github.com/actionlang/actionlang/pkg/memsize"
)

// Limits mirrors the three knobs every evaluation is bounded by.
type Limits struct {
	MaxBytes          int `toml:"max_bytes"`
	MaxDepth          int `toml:"max_depth"`
	TraceMemoryBudget int `toml:"trace_memory_budget"`
}

// Config is the top-level TOML document shape.
type Config struct {
	Limits Limits `toml:"limits"`
}

// Default returns the built-in limits, matching package memsize's and
// package expr's own fallback constants so a caller with no config file
// and no flags observes identical behavior either way.
func Default() Config {
	return Config{Limits: Limits{
		MaxBytes:          memsize.DefaultMaxBytes,
		MaxDepth:          memsize.DefaultMaxDepth,
		TraceMemoryBudget: expr.DefaultTraceMemoryBudget,
	}}
}

// Load reads a TOML config file, filling in Default() for any field the
// file doesn't set. An empty path is not an error — it returns the
// defaults untouched, so callers can pass a possibly-unset --config flag
// straight through.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config file %q: %w", path, err)
	}
	if cfg.Limits.MaxBytes <= 0 {
		cfg.Limits.MaxBytes = memsize.DefaultMaxBytes
	}
	if cfg.Limits.MaxDepth <= 0 {
		cfg.Limits.MaxDepth = memsize.DefaultMaxDepth
	}
	if cfg.Limits.TraceMemoryBudget <= 0 {
		cfg.Limits.TraceMemoryBudget = expr.DefaultTraceMemoryBudget
	}
	return cfg, nil
}

// ApplyFlagOverrides layers CLI flag values over the config, the same
// precedence direction data_values_flags.go uses for KV flags over
// env-derived values: a positive flag value always wins over whatever
// the file (or the defaults) supplied.
func (c Config) ApplyFlagOverrides(maxBytes, maxDepth, traceMemoryBudget int) Config {
	if maxBytes > 0 {
		c.Limits.MaxBytes = maxBytes
	}
	if maxDepth > 0 {
		c.Limits.MaxDepth = maxDepth
	}
	if traceMemoryBudget > 0 {
		c.Limits.TraceMemoryBudget = traceMemoryBudget
	}
	return c
}
