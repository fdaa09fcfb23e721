// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package workflowcmd

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
	"github.com/actionlang/actionlang/pkg/tmpltoken"
)

// Options configures one run of the workflows CLI (spec §6.2).
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

// NewCmd builds the "workflows" cobra command.
func NewCmd(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wworkflow",
		Short: "Parse multi-file workflows and evaluate strategy matrices read from stdin",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().BoolVar(&o.Pretty, "pretty", false, "Indent response JSON with two spaces")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Include per-node evaluation traces in the response's log")
	cmd.Flags().StringVar(&o.ConfigPath, "config", "", "Path to a TOML file overriding the default evaluation limits")
	cmd.Flags().IntVar(&o.MaxBytes, "max-bytes", 0, "Override the configured max_bytes limit")
	cmd.Flags().IntVar(&o.MaxDepth, "max-depth", 0, "Override the configured max_depth limit")
	cmd.Flags().IntVar(&o.TraceMemoryBudget, "trace-memory-budget", 0, "Override the configured trace memory budget")
	return cmd
}

// workflowFile is one entry of parse-workflow's "files" array.
type workflowFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// request is the workflows CLI's input document shape (spec §6.2): the
// command field dispatches between parse-workflow and evaluate-strategy,
// each with its own set of populated fields.
type request struct {
	BatchID string `json:"batchId,omitempty"`
	Command string `json:"command"`

	// parse-workflow
	EntryFileName string         `json:"entryFileName,omitempty"`
	Files         []workflowFile `json:"files,omitempty"`

	// evaluate-strategy
	FileTable map[string]json.RawMessage `json:"fileTable,omitempty"`
	Context   map[string]interface{}     `json:"context,omitempty"`
	Token     string                     `json:"token,omitempty"`
}

// response is the workflows CLI's single output document shape (spec
// §6.2); both commands report through the same {log, value, errors}
// fields.
type response struct {
	BatchID string      `json:"batchId,omitempty"`
	Log     []string    `json:"log,omitempty"`
	Value   interface{} `json:"value,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
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

// Run implements the workflows CLI request loop (spec §6.2): one
// response document per request, dispatched by the request's command.
func (o *Options) Run() error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	cfg = cfg.ApplyFlagOverrides(o.MaxBytes, o.MaxDepth, o.TraceMemoryBudget)

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

		var resp response
		switch req.Command {
		case "parse-workflow":
			resp = o.parseWorkflow(cfg, req)
		case "evaluate-strategy":
			resp = o.evaluateStrategy(cfg, req)
		default:
			resp = response{Errors: []string{fmt.Sprintf("unknown command %q", req.Command)}}
		}
		resp.BatchID = req.BatchID
		if werr := cliio.WriteResponse(o.Out, o.Pretty, resp); werr != nil {
			return werr
		}
	}
	return rr.Err()
}

// parseWorkflow reads every file in the request against the built-in
// document schema and returns a fileTable of name -> persisted token
// tree (spec §6.3), so the caller can hand that same fileTable straight
// into a later evaluate-strategy request.
func (o *Options) parseWorkflow(cfg config.Config, req request) response {
	if _, ok := findFile(req.Files, req.EntryFileName); !ok {
		return response{Errors: []string{fmt.Sprintf("entryFileName %q not found in files", req.EntryFileName)}}
	}

	reg := sharedDocumentSchema()
	fileTable := map[string]*tmpltoken.Token{}
	var errs []string

	for _, f := range req.Files {
		src, serr := objsource.NewYAMLSource([]byte(f.Content))
		if serr != nil {
			errs = append(errs, fmt.Sprintf("%s: %s", f.Name, serr))
			continue
		}
		readCtx := reader.NewContext(reg, cfg.Limits.MaxBytes, cfg.Limits.MaxDepth, f.Name)
		tok, _, rerr := reader.ReadTemplate(readCtx, documentRootType, src)
		if rerr != nil {
			errs = append(errs, rerr.Error())
			continue
		}
		fileTable[f.Name] = tok
	}

	value := make(map[string]interface{}, len(fileTable))
	for name, tok := range fileTable {
		value[name] = tok
	}
	return response{Value: value, Errors: errs}
}

func findFile(files []workflowFile, name string) (workflowFile, bool) {
	for _, f := range files {
		if f.Name == name {
			return f, true
		}
	}
	return workflowFile{}, false
}

// evaluateStrategy evaluates token as an expression producing a matrix
// mapping (each property an array of candidate values) and fans it out
// into the cartesian product of named-context bindings (spec.md
// SUPPLEMENTED FEATURES #3).
func (o *Options) evaluateStrategy(cfg config.Config, req request) response {
	trace := &traceCollector{enabled: o.Debug}

	namedContext := map[string]ctxval.Value{}
	for k, v := range req.Context {
		namedContext[k] = expr.FromGoValue(v)
	}
	if len(req.FileTable) > 0 {
		files := ctxval.NewObject()
		for name, raw := range req.FileTable {
			var tok tmpltoken.Token
			if err := json.Unmarshal(raw, &tok); err != nil {
				return response{Log: trace.lines, Errors: []string{fmt.Sprintf("fileTable[%s]: %s", name, err)}}
			}
			files.Set(name, tok.ToCanonicalValue())
		}
		namedContext["files"] = ctxval.NewObjectValue(files)
	}

	node, perr := expr.Parse(req.Token, expr.ParseOptions{Functions: expr.NewFunctionTable()})
	if perr != nil {
		return response{Log: trace.lines, Errors: []string{perr.Error()}}
	}

	evalCtx := expr.NewEvalContext(trace, nil, namedContext, expr.EvalOptions{
		MaxBytes:          cfg.Limits.MaxBytes,
		MaxDepth:          cfg.Limits.MaxDepth,
		TraceMemoryBudget: cfg.Limits.TraceMemoryBudget,
	})
	matrix, everr := expr.EvaluateTree(node, evalCtx)
	if everr != nil {
		return response{Log: trace.lines, Errors: []string{everr.Error()}}
	}

	obj, ok := matrix.Object()
	if !ok {
		return response{Log: trace.lines, Errors: []string{"evaluate-strategy: token must evaluate to a mapping of array-valued dimensions"}}
	}

	combos, cerr := fanOut(obj)
	if cerr != nil {
		return response{Log: trace.lines, Errors: []string{cerr.Error()}}
	}

	value := make([]interface{}, len(combos))
	for i, combo := range combos {
		m := make(map[string]interface{}, len(combo))
		for k, v := range combo {
			m[k] = exprValueToJSON(v)
		}
		value[i] = m
	}
	return response{Log: trace.lines, Value: value}
}

// fanOut computes the cartesian product of obj's array-valued
// properties, in property-declaration order, yielding one binding set
// per combination.
func fanOut(obj ctxval.ObjectCapability) ([]map[string]ctxval.Value, error) {
	keys := obj.Keys()
	dims := make([][]ctxval.Value, len(keys))
	for i, k := range keys {
		v, _ := obj.Get(k)
		arr, ok := v.Array()
		if !ok {
			return nil, fmt.Errorf("evaluate-strategy: dimension %q is not an array", k)
		}
		items := make([]ctxval.Value, arr.Len())
		for j := 0; j < arr.Len(); j++ {
			items[j], _ = arr.At(j)
		}
		dims[i] = items
	}

	combos := []map[string]ctxval.Value{{}}
	for i, k := range keys {
		var next []map[string]ctxval.Value
		for _, combo := range combos {
			for _, v := range dims[i] {
				nc := make(map[string]ctxval.Value, len(combo)+1)
				for ck, cv := range combo {
					nc[ck] = cv
				}
				nc[k] = v
				next = append(next, nc)
			}
		}
		combos = next
	}
	return combos, nil
}

func exprValueToJSON(v ctxval.Value) interface{} {
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
			out[i] = exprValueToJSON(item)
		}
		return out
	}
	if obj, ok := v.Object(); ok {
		out := map[string]interface{}{}
		for _, k := range obj.Keys() {
			item, _ := obj.Get(k)
			out[k] = exprValueToJSON(item)
		}
		return out
	}
	return nil
}
