// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the parabuild command-line interface (CLI).
package main

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/parabuild"
	"github.com/matt-FFFFFF/parabuild/cmd/parabuild/run"
	"github.com/matt-FFFFFF/parabuild/cmd/parabuild/schema"
	"github.com/matt-FFFFFF/parabuild/cmd/parabuild/validate"
	"github.com/matt-FFFFFF/parabuild/internal/ctxlog"
	"github.com/matt-FFFFFF/parabuild/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

func newRootCmd() *cli.Command {
	return &cli.Command{
		Commands: []*cli.Command{
			run.NewCommand(),
			validate.NewCommand(),
			schema.NewCommand(),
		},
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Name:      "parabuild",
		Description: `Parabuild builds a set of assets in parallel. Each asset is a directory and a list of
shell commands. Builds run up to a fixed number at a time, the whole run has a time budget,
and a failure can optionally stop the run.`,
		Usage:     "parabuild run -f assets.yaml",
		Version:   parabuild.VersionString(),
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		EnableShellCompletion: true,
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	err := newRootCmd().Run(ctx, os.Args) // Err is handled by cli framework

	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}
}
