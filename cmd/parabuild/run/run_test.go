// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/matt-FFFFFF/parabuild/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func writeDefinition(t *testing.T, content string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("run command tests use /bin/sh commands")
	}

	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, logs bytes.Buffer

	cmd := NewCommand()
	cmd.Writer = &out
	cmd.ErrWriter = &out
	cmd.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	ctx := ctxlog.NewForWriter(context.Background(), &logs)
	err := cmd.Run(ctx, append([]string{"run", "--no-color"}, args...))

	return out.String(), err
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()

	var exitErr cli.ExitCoder
	require.True(t, errors.As(err, &exitErr), "expected an exit error, got %v", err)
	assert.Equal(t, code, exitErr.ExitCode())
}

const okDefinition = `
assets:
  - name: one
    path: .
    commands:
      - echo built one
  - name: two
    path: .
    commands:
      - echo built two
      - test -d .
`

const failingDefinition = `
settings:
  max_processes: 1
assets:
  - name: broken
    path: .
    commands:
      - "echo missing dependency >&2; exit 4"
  - name: later
    path: .
    commands:
      - "true"
`

func TestRun_Success(t *testing.T) {
	path := writeDefinition(t, okDefinition)

	out, err := runCommand(t, "-f", path, "--poll-interval", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ one")
	assert.Contains(t, out, "✓ two")
	assert.Contains(t, out, "2 succeeded, 0 failed, 0 not executed")
	assert.NotContains(t, out, "built one", "output is not streamed by default")
}

func TestRun_Stream(t *testing.T) {
	path := writeDefinition(t, okDefinition)

	out, err := runCommand(t, "-f", path, "--poll-interval", "5", "--stream", "-p", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "built one\n")
	assert.Contains(t, out, "built two\n")
}

func TestRun_Failure(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		contains    []string
		notContains []string
	}{
		{
			name:     "stderr shown",
			contains: []string{"✗ broken (exit code: 4)", "➜ Error Output:", "missing dependency", "✓ later", "1 succeeded, 1 failed, 0 not executed"},
		},
		{
			name:        "stderr hidden",
			args:        []string{"--no-stderr"},
			contains:    []string{"✗ broken (exit code: 4)"},
			notContains: []string{"➜ Error Output:"},
		},
		{
			name:        "stop on failure",
			args:        []string{"--stop-on-failure"},
			contains:    []string{"0 succeeded, 1 failed, 1 not executed (stopped on failure)"},
			notContains: []string{"✓ later"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDefinition(t, failingDefinition)

			out, err := runCommand(t, append([]string{"-f", path, "--poll-interval", "5"}, tt.args...)...)
			requireExitCode(t, err, 1)

			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}

			for _, s := range tt.notContains {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestRun_InvalidDefinition(t *testing.T) {
	path := writeDefinition(t, "assets:\n  - name: nothing\n    path: .\n")

	_, err := runCommand(t, "-f", path)
	requireExitCode(t, err, 1)
}
