// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package validate implements the validate command, which checks a definition without building it.
package validate

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/parabuild/cmd/parabuild/source"
	"github.com/matt-FFFFFF/parabuild/cmd/parabuild/verbosity"
	"github.com/matt-FFFFFF/parabuild/internal/ctxlog"
	"github.com/matt-FFFFFF/parabuild/internal/parallel"
	"github.com/matt-FFFFFF/parabuild/internal/process"
	"github.com/urfave/cli/v3"
)

const (
	fileFlag   = "file"
	cliExitStr = ""
)

// NewCommand returns the command that loads and validates a definition file.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check a definition file without building anything",
		Description: `Load a YAML or HCL definition file, report every problem found in it,
and print the number of assets and the time budget of the run.
`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     fileFlag,
				Aliases:  []string{"f"},
				Usage:    "Specify the path or go-getter URL of the definition file",
				Required: true,
				OnlyOnce: true,
			},
		}, verbosity.Flags()...),
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	ctx = verbosity.Apply(ctx, cmd)
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	def, err := source.Load(ctx, cmd.String(fileFlag))
	if err != nil {
		logger.Error(fmt.Sprintf("definition %s is not valid", cmd.String(fileFlag)), "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	// The manager is only used for its bookkeeping. Nothing is executed.
	m := parallel.New(process.FactoryFunc(func(string, string) process.Handle { return nil }), def.Settings.Options()...)

	for _, e := range def.Entries() {
		if err := m.Push(e.Asset, e.Commands...); err != nil {
			logger.Error("invalid asset", "asset", e.Asset.Name(), "error", err)
			return cli.Exit(cliExitStr, 1)
		}

		logger.Debug("asset", "name", e.Asset.Name(), "path", e.Asset.Path(), "commands", len(e.Commands))
	}

	fmt.Fprintf(cmd.Writer, "%d assets, up to %d at a time, time budget %s\n", //nolint:errcheck
		m.Total(), m.MaxProcesses(), m.Budget())

	return nil
}
