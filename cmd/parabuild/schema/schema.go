// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package schema implements the schema command, which prints the JSON Schema of definition files.
package schema

import (
	"context"

	"github.com/matt-FFFFFF/parabuild/internal/config"
	"github.com/matt-FFFFFF/parabuild/internal/ctxlog"
	"github.com/matt-FFFFFF/parabuild/internal/schema"
	"github.com/urfave/cli/v3"
)

const (
	title       = "Parabuild Definition Schema"
	description = "Schema for parabuild YAML definition files"
)

// NewCommand returns the command that writes the definition JSON Schema to stdout.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON Schema of YAML definition files",
		Description: `Print a JSON Schema describing YAML definition files.
Point your editor's YAML language server at it for completion and validation.
`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := schema.NewGenerator(title, description).WriteJSONSchema(cmd.Writer, config.Definition{}); err != nil {
				ctxlog.Error(ctx, "failed to write schema", "error", err)
				return cli.Exit("", 1)
			}

			return nil
		},
	}
}
