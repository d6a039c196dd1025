// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package verbosity holds the logging flags shared by every command.
package verbosity

import (
	"context"
	"log/slog"

	"github.com/matt-FFFFFF/parabuild/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

const (
	verboseFlag     = "verbose"
	veryVerboseFlag = "very-verbose"
	jsonLogsFlag    = "json-logs"
)

// Flags returns fresh copies of the logging flags.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        verboseFlag,
			Aliases:     []string{"v"},
			Usage:       "Log at debug level",
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        veryVerboseFlag,
			Aliases:     []string{"vv"},
			Usage:       "Log at trace level and echo the stderr of failed builds",
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        jsonLogsFlag,
			Usage:       "Write logs as JSON lines",
			DefaultText: "false",
			OnlyOnce:    true,
		},
	}
}

// Apply sets the log level from the flags and returns ctx with the selected logger.
// Without flags the level from the environment is kept.
func Apply(ctx context.Context, cmd *cli.Command) context.Context {
	switch {
	case cmd.Bool(veryVerboseFlag):
		ctxlog.LevelVar.Set(ctxlog.LevelTrace)
	case cmd.Bool(verboseFlag):
		ctxlog.LevelVar.Set(slog.LevelDebug)
	}

	if cmd.Bool(jsonLogsFlag) {
		return ctxlog.New(ctx, ctxlog.JSONLogger)
	}

	return ctx
}
