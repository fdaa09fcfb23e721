// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package exprcmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/actionlang/actionlang/pkg/cliio"
	"github.com/actionlang/actionlang/pkg/config"
	"github.com/actionlang/actionlang/pkg/ctxval"
	"github.com/actionlang/actionlang/pkg/expr"
)

// Options configures one run of the expressions CLI (spec §6.2).
type Options struct {
	Pretty     bool
	Debug      bool
	ConfigPath string

	MaxBytes          int
	MaxDepth          int
	TraceMemoryBudget int

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// NewOptions builds Options defaulted to the process's standard streams.
func NewOptions() *Options {
	return &Options{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// NewCmd builds the "expressions" cobra command, following the same
// Options/NewCmd/RunE shape the teacher's pkg/cmd/template command uses.
func NewCmd(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wexpr",
		Short: "Evaluate batches of standalone expressions read from stdin",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().BoolVar(&o.Pretty, "pretty", false, "Indent response JSON with two spaces")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Include per-node evaluation traces in each response's log")
	cmd.Flags().StringVar(&o.ConfigPath, "config", "", "Path to a TOML file overriding the default evaluation limits")
	cmd.Flags().IntVar(&o.MaxBytes, "max-bytes", 0, "Override the configured max_bytes limit")
	cmd.Flags().IntVar(&o.MaxDepth, "max-depth", 0, "Override the configured max_depth limit")
	cmd.Flags().IntVar(&o.TraceMemoryBudget, "trace-memory-budget", 0, "Override the configured trace memory budget")
	return cmd
}

// request is the expressions CLI's input document shape (spec §6.2).
type request struct {
	BatchID     string                 `json:"batchId,omitempty"`
	Context     map[string]interface{} `json:"context"`
	Expressions []string               `json:"expressions"`
}

// response is one expressions CLI output document, one per expression in
// the request's batch (spec §6.2).
type response struct {
	BatchID      string      `json:"batchId,omitempty"`
	Sequence     int         `json:"sequence"`
	Log          []string    `json:"log,omitempty"`
	Result       interface{} `json:"result,omitempty"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
	ErrorCode    string      `json:"errorCode,omitempty"`
}

// traceCollector implements expr.TraceWriter, buffering trace lines for
// the current expression's "log" field instead of writing to stderr.
type traceCollector struct {
	enabled bool
	lines   []string
}

func (t *traceCollector) Verbosef(format string, args ...interface{}) {
	if !t.enabled {
		return
	}
	t.lines = append(t.lines, fmt.Sprintf(format, args...))
}

// Run implements the expressions CLI request loop (spec §6.2): read
// "---"-delimited JSON requests from In, evaluate every expression in
// each batch against its shared context, and write one response
// document per expression, followed by the "---" delimiter, to Out.
func (o *Options) Run() error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	cfg = cfg.ApplyFlagOverrides(o.MaxBytes, o.MaxDepth, o.TraceMemoryBudget)
	ui := cliio.NewPlainUIWriters(o.Debug, o.Out, o.Err)

	rr := cliio.NewRequestReader(o.In)
	for {
		doc, ok := rr.Next()
		if !ok {
			break
		}
		var req request
		if jerr := json.Unmarshal(doc, &req); jerr != nil {
			if werr := cliio.WriteResponse(o.Out, o.Pretty, response{
				ErrorMessage: fmt.Sprintf("invalid request: %s", jerr),
				ErrorCode:    "InvalidRequest",
			}); werr != nil {
				return werr
			}
			continue
		}
		if err := o.evalBatch(ui, cfg, req); err != nil {
			return err
		}
	}
	return rr.Err()
}

func (o *Options) evalBatch(ui cliio.PlainUI, cfg config.Config, req request) error {
	namedContext := map[string]ctxval.Value{}
	for k, v := range req.Context {
		namedContext[k] = expr.FromGoValue(v)
	}

	for i, src := range req.Expressions {
		resp := response{BatchID: req.BatchID, Sequence: i}
		trace := &traceCollector{enabled: o.Debug}

		node, perr := expr.Parse(src, expr.ParseOptions{Functions: expr.NewFunctionTable()})
		if perr != nil {
			resp.ErrorMessage = perr.Error()
			resp.ErrorCode = errorCode(perr)
			resp.Log = trace.lines
			if werr := cliio.WriteResponse(o.Out, o.Pretty, resp); werr != nil {
				return werr
			}
			continue
		}

		evalCtx := expr.NewEvalContext(trace, nil, namedContext, expr.EvalOptions{
			MaxBytes:          cfg.Limits.MaxBytes,
			MaxDepth:          cfg.Limits.MaxDepth,
			TraceMemoryBudget: cfg.Limits.TraceMemoryBudget,
		})
		val, everr := expr.EvaluateTree(node, evalCtx)
		resp.Log = trace.lines
		if everr != nil {
			resp.ErrorMessage = everr.Error()
			resp.ErrorCode = errorCode(everr)
		} else {
			resp.Result = toJSONValue(val)
		}
		ui.Debugf("evaluated expression %d of batch %q\n", i, req.BatchID)
		if werr := cliio.WriteResponse(o.Out, o.Pretty, resp); werr != nil {
			return werr
		}
	}
	return nil
}

// errorCode classifies an error into the short discriminants spec §7's
// error table distinguishes, for machine consumers that don't want to
// parse errorMessage.
func errorCode(err error) string {
	if _, ok := err.(*expr.ParseError); ok {
		return "ParseError"
	}
	msg := err.Error()
	if strings.Contains(msg, "exceeded max object byte size") || strings.Contains(msg, "exceeded max object depth") {
		return "LimitExceeded"
	}
	return "EvaluationError"
}

// toJSONValue converts a canonical Value back into a plain
// interface{} tree so it marshals as ordinary JSON in the response.
func toJSONValue(v ctxval.Value) interface{} {
	switch v.Kind() {
	case ctxval.KindNull:
		return nil
	case ctxval.KindBoolean:
		return v.Bool()
	case ctxval.KindNumber:
		return v.Number()
	case ctxval.KindString:
		return v.RawString()
	}
	if arr, ok := v.Array(); ok {
		out := make([]interface{}, arr.Len())
		for i := 0; i < arr.Len(); i++ {
			item, _ := arr.At(i)
			out[i] = toJSONValue(item)
		}
		return out
	}
	if obj, ok := v.Object(); ok {
		out := map[string]interface{}{}
		for _, k := range obj.Keys() {
			item, _ := obj.Get(k)
			out[k] = toJSONValue(item)
		}
		return out
	}
	return nil
}
