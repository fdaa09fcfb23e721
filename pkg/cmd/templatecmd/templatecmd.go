// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package templatecmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/actionlang/actionlang/pkg/cliio"
	"github.com/actionlang/actionlang/pkg/config"
	"github.com/actionlang/actionlang/pkg/ctxval"
	"github.com/actionlang/actionlang/pkg/expr"
	"github.com/actionlang/actionlang/pkg/objsource"
	"github.com/actionlang/actionlang/pkg/reader"
	"github.com/actionlang/actionlang/pkg/schema"
	"github.com/actionlang/actionlang/pkg/unravel"
)

// Options configures one run of the templates CLI (spec §6.2).
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

// NewCmd builds the "templates" cobra command.
func NewCmd(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wtemplate",
		Short: "Read and unravel batches of templates against a schema read from stdin",
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

// templateInput is one entry of the templates CLI request's "templates"
// array: type names the schema's root definition this template is read
// against, content is the raw YAML/JSON document text.
type templateInput struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// request is the templates CLI's input document shape (spec §6.2).
type request struct {
	BatchID   string                 `json:"batchId,omitempty"`
	Schema    string                 `json:"schema"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Templates []templateInput        `json:"templates"`
}

// response is one templates CLI output document, one per template in the
// request's batch (spec §6.2).
type response struct {
	BatchID  string      `json:"batchId,omitempty"`
	Sequence int         `json:"sequence"`
	Log      []string    `json:"log,omitempty"`
	Result   interface{} `json:"result,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

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

// Run implements the templates CLI request loop (spec §6.2): for each
// request, load its schema once, then read+unravel every template in
// its batch, writing one response document per template to Out.
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
				Errors: []string{fmt.Sprintf("invalid request: %s", jerr)},
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
	var reg *schema.Registry
	schemaSrc, err := objsource.NewYAMLSource([]byte(req.Schema))
	if err == nil {
		reg, err = schema.Load(schemaSrc, "schema")
	}
	if err != nil {
		for i := range req.Templates {
			resp := response{BatchID: req.BatchID, Sequence: i, Errors: []string{err.Error()}}
			if werr := cliio.WriteResponse(o.Out, o.Pretty, resp); werr != nil {
				return werr
			}
		}
		return nil
	}

	namedContext := map[string]ctxval.Value{}
	for k, v := range req.Context {
		namedContext[k] = expr.FromGoValue(v)
	}

	for i, tmpl := range req.Templates {
		resp := response{BatchID: req.BatchID, Sequence: i}
		trace := &traceCollector{enabled: o.Debug}

		fileID := fmt.Sprintf("template[%d]", i)
		readCtx := reader.NewContext(reg, cfg.Limits.MaxBytes, cfg.Limits.MaxDepth, fileID)
		tmplSrc, srcErr := objsource.NewYAMLSource([]byte(tmpl.Content))
		if srcErr != nil {
			resp.Errors = []string{srcErr.Error()}
			if werr := cliio.WriteResponse(o.Out, o.Pretty, resp); werr != nil {
				return werr
			}
			continue
		}
		tok, _, rerr := reader.ReadTemplate(readCtx, tmpl.Type, tmplSrc)
		if rerr != nil {
			resp.Errors = []string{rerr.Error()}
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
		cursor := unravel.NewCursor(tok, evalCtx)
		resp.Result = walk(cursor)
		resp.Log = trace.lines
		for _, e := range cursor.Errors() {
			resp.Errors = append(resp.Errors, e.Error())
		}
		ui.Debugf("unraveled template %d of batch %q\n", i, req.BatchID)
		if werr := cliio.WriteResponse(o.Out, o.Pretty, resp); werr != nil {
			return werr
		}
	}
	return nil
}

// walk drains cursor fully, expanding every expression it meets, and
// materializes the result as a plain interface{} tree ready for JSON
// marshaling.
func walk(c *unravel.Cursor) interface{} {
	if tok, ok := c.AllowScalar(true); ok {
		return valueToJSON(tok.ToCanonicalValue())
	}
	if c.AllowSequenceStart(true) {
		items := []interface{}{}
		for !c.AllowSequenceEnd(true) {
			items = append(items, walk(c))
		}
		return items
	}
	if c.AllowMappingStart(true) {
		obj := map[string]interface{}{}
		for !c.AllowMappingEnd(true) {
			keyTok, ok := c.AllowScalar(true)
			if !ok {
				break
			}
			obj[ctxval.ConvertToString(keyTok.ToCanonicalValue())] = walk(c)
		}
		return obj
	}
	return nil
}

func valueToJSON(v ctxval.Value) interface{} {
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
			out[i] = valueToJSON(item)
		}
		return out
	}
	if obj, ok := v.Object(); ok {
		out := map[string]interface{}{}
		for _, k := range obj.Keys() {
			item, _ := obj.Get(k)
			out[k] = valueToJSON(item)
		}
		return out
	}
	return nil
}
