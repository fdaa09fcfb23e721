// Copyright 2024 The Actionlang Authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/cppforlife/cobrautil"
	uierrs "github.com/cppforlife/go-cli-ui/errors"

	"github.com/actionlang/actionlang/pkg/cmd/workflowcmd"
)

func main() {
	cmd := workflowcmd.NewCmd(workflowcmd.NewOptions())
	cmd.SilenceErrors = true

	cobrautil.VisitCommands(cmd, cobrautil.DisallowExtraArgs, cobrautil.WrapRunEForCmd(cobrautil.ResolveFlagsForCmd))

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "wworkflow: Error: %s\n", uierrs.NewMultiLineError(err))
		os.Exit(1)
	}
}
