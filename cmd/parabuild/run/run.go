// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the run command, which builds every asset of a definition.
package run

import (
	"context"
	"fmt"
	"io"

	"github.com/matt-FFFFFF/parabuild/cmd/parabuild/source"
	"github.com/matt-FFFFFF/parabuild/cmd/parabuild/verbosity"
	"github.com/matt-FFFFFF/parabuild/internal/color"
	"github.com/matt-FFFFFF/parabuild/internal/config"
	"github.com/matt-FFFFFF/parabuild/internal/ctxlog"
	"github.com/matt-FFFFFF/parabuild/internal/parallel"
	"github.com/matt-FFFFFF/parabuild/internal/process"
	"github.com/matt-FFFFFF/parabuild/internal/report"
	"github.com/urfave/cli/v3"
)

const (
	fileFlag             = "file"
	maxProcessesFlag     = "max-processes"
	pollIntervalFlag     = "poll-interval"
	timeoutIncrementFlag = "timeout-increment"
	processTimeoutFlag   = "process-timeout"
	stopOnFailureFlag    = "stop-on-failure"
	noOutputStdErrFlag   = "no-output-stderr"
	outputStdOutFlag     = "output-stdout"
	streamFlag           = "stream"
	noColorFlag          = "no-color"
	cliExitStr           = ""
)

// NewCommand returns the command that builds the assets of a definition file.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Build every asset in a definition file",
		Description: `Run the build commands of every asset defined in a YAML or HCL file.
Assets are built in parallel, up to --max-processes at a time, in the order they are defined.
The whole run has a time budget of --timeout-increment seconds per command.

Definition file URLs use Hashicorp's go-getter syntax, which allows for fetching files from various sources.
See https://github.com/hashicorp/go-getter.
`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     fileFlag,
				Aliases:  []string{"f"},
				Usage:    "Specify the path or go-getter URL of the definition file",
				Required: true,
				OnlyOnce: true,
			},
			&cli.IntFlag{
				Name:    maxProcessesFlag,
				Aliases: []string{"p"},
				Usage:   "Set the maximum number of concurrent builds. Overrides the definition file",
			},
			&cli.IntFlag{
				Name:  pollIntervalFlag,
				Usage: "Set the interval in milliseconds between status checks. Overrides the definition file",
			},
			&cli.IntFlag{
				Name:  timeoutIncrementFlag,
				Usage: "Set the time budget in seconds added per command. Overrides the definition file",
			},
			&cli.IntFlag{
				Name:  processTimeoutFlag,
				Usage: "Set the maximum time in seconds any single build may run. Overrides the definition file",
			},
			&cli.BoolFlag{
				Name:        stopOnFailureFlag,
				Aliases:     []string{"x"},
				Usage:       "Stop the run after the first failed build",
				DefaultText: "false",
				OnlyOnce:    true,
			},
			&cli.BoolFlag{
				Name:        noOutputStdErrFlag,
				Aliases:     []string{"no-stderr"},
				Usage:       "Exclude stderr of failed builds from the results",
				DefaultText: "false",
				OnlyOnce:    true,
			},
			&cli.BoolFlag{
				Name:        outputStdOutFlag,
				Aliases:     []string{"stdout"},
				Usage:       "Include stdout of failed builds in the results",
				DefaultText: "false",
				OnlyOnce:    true,
			},
			&cli.BoolFlag{
				Name:        streamFlag,
				Usage:       "Print build output as it is produced",
				DefaultText: "false",
				OnlyOnce:    true,
			},
			&cli.BoolFlag{
				Name:        noColorFlag,
				Usage:       "Disable colour in the results",
				DefaultText: "false",
				OnlyOnce:    true,
			},
		}, verbosity.Flags()...),
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	ctx = verbosity.Apply(ctx, cmd)

	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("running run command")

	def, err := source.Load(ctx, cmd.String(fileFlag))
	if err != nil {
		logger.Error(fmt.Sprintf("failed to load definition %s", cmd.String(fileFlag)), "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	settings := applyFlags(cmd, def.Settings)

	factory := process.NewOSFactory(ctx, process.WithProcessTimeout(settings.ProcessTimeout()))
	m := parallel.New(factory, settings.Options()...)

	for _, e := range def.Entries() {
		if err := m.Push(e.Asset, e.Commands...); err != nil {
			logger.Error("failed to queue asset", "asset", e.Asset.Name(), "error", err)
			return cli.Exit(cliExitStr, 1)
		}
	}

	logger.Info("starting build",
		"assets", m.Total(),
		"maxProcesses", m.MaxProcesses(),
		"budget", m.Budget(),
		"stopOnFailure", settings.StopOnFailure)

	colour := color.Enabled() && !cmd.Bool(noColorFlag)

	var sink process.OutputSink
	if cmd.Bool(streamFlag) {
		sink = streamTo(cmd.Writer, cmd.ErrWriter, colour)
	}

	res, err := m.Execute(ctx, ctxlog.NewIO(ctx), sink, settings.StopOnFailure)
	if err != nil {
		logger.Error("build run failed", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	opts := report.DefaultOptions()
	opts.IncludeStdErr = !cmd.Bool(noOutputStdErrFlag)
	opts.IncludeStdOut = cmd.Bool(outputStdOutFlag)
	opts.Colour = colour

	if err := report.Write(cmd.Writer, res, opts); err != nil {
		logger.Error("failed to write results", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	if !res.IsSuccessful() {
		logger.Error("build did not succeed", "outcome", res.Outcome().String())
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}

// applyFlags overrides settings with the flags that were set.
func applyFlags(cmd *cli.Command, s config.Settings) config.Settings {
	if cmd.IsSet(maxProcessesFlag) {
		s.MaxProcesses = int(cmd.Int(maxProcessesFlag))
	}

	if cmd.IsSet(pollIntervalFlag) {
		s.PollIntervalMs = int(cmd.Int(pollIntervalFlag))
	}

	if cmd.IsSet(timeoutIncrementFlag) {
		s.TimeoutIncrementSeconds = int(cmd.Int(timeoutIncrementFlag))
	}

	if cmd.IsSet(processTimeoutFlag) {
		s.ProcessTimeoutSeconds = int(cmd.Int(processTimeoutFlag))
	}

	if cmd.IsSet(stopOnFailureFlag) {
		s.StopOnFailure = cmd.Bool(stopOnFailureFlag)
	}

	return s
}

// streamTo writes process output as it is collected. Stderr chunks are dimmed.
func streamTo(stdout, stderr io.Writer, colour bool) process.OutputSink {
	return func(stream process.Stream, chunk []byte) {
		switch stream {
		case process.Stderr:
			fmt.Fprint(stderr, color.ColorizeIf(colour, string(chunk), color.Faint)) //nolint:errcheck
		default:
			stdout.Write(chunk) //nolint:errcheck
		}
	}
}

