// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package verbosity

import (
	"context"
	"log/slog"
	"testing"

	"github.com/matt-FFFFFF/parabuild/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantLevel slog.Level
		wantJSON  bool
	}{
		{name: "defaults keep the level", args: nil, wantLevel: slog.LevelWarn},
		{name: "verbose", args: []string{"--verbose"}, wantLevel: slog.LevelDebug},
		{name: "very verbose wins", args: []string{"-v", "--very-verbose"}, wantLevel: ctxlog.LevelTrace},
		{name: "json logs", args: []string{"--json-logs"}, wantLevel: slog.LevelWarn, wantJSON: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := ctxlog.LevelVar.Level()
			t.Cleanup(func() { ctxlog.LevelVar.Set(prev) })
			ctxlog.LevelVar.Set(slog.LevelWarn)

			var got context.Context

			cmd := &cli.Command{
				Name:  "test",
				Flags: Flags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					got = Apply(ctx, cmd)
					return nil
				},
			}

			require.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, tt.args...)))
			require.NotNil(t, got)

			assert.Equal(t, tt.wantLevel, ctxlog.LevelVar.Level())

			if tt.wantJSON {
				assert.Same(t, ctxlog.JSONLogger, ctxlog.Logger(got))
			} else {
				assert.Same(t, ctxlog.DefaultLogger, ctxlog.Logger(got))
			}
		})
	}
}
