// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/matt-FFFFFF/parabuild/internal/asset"
	"github.com/matt-FFFFFF/parabuild/internal/parallel"
	"github.com/matt-FFFFFF/parabuild/internal/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandle struct {
	exitCode int
	stderr   string
	stdout   string
	err      error
}

func (h *stubHandle) Start(process.OutputSink) error { return nil }
func (h *stubHandle) IsRunning() bool                { return false }
func (h *stubHandle) IsSuccessful() bool             { return h.exitCode == 0 && h.err == nil }
func (h *stubHandle) Stop(time.Duration) error       { return nil }
func (h *stubHandle) ErrorOutput() string            { return h.stderr }
func (h *stubHandle) ExitCode() int                  { return h.exitCode }
func (h *stubHandle) Err() error                     { return h.err }
func (h *stubHandle) Output() string                 { return h.stdout }

func result(t *testing.T, name string, h process.Handle) parallel.JobResult {
	t.Helper()

	a, err := asset.New(name, "/srv/"+name)
	require.NoError(t, err)

	return parallel.JobResult{Job: a, Handle: h}
}

func render(t *testing.T, res *parallel.Results, opts Options) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res, opts))

	return buf.String()
}

func TestWrite_Empty(t *testing.T) {
	assert.Equal(t, "no assets to build\n", render(t, parallel.NewEmptyResults(), Options{}))
}

func TestWrite_Completed(t *testing.T) {
	res := parallel.NewResults(2,
		[]parallel.JobResult{result(t, "site", &stubHandle{}), result(t, "docs", &stubHandle{})},
		nil, false, 1500*time.Millisecond)

	want := "✓ site\n" +
		"✓ docs\n" +
		"2 succeeded, 0 failed, 0 not executed in 1.5s\n"

	assert.Equal(t, want, render(t, res, Options{IncludeStdErr: true}))
}

func TestWrite_Failures(t *testing.T) {
	failed := &stubHandle{exitCode: 2, stderr: "npm ERR! missing script\r\nnpm ERR! build\n", stdout: "running build\n"}
	stopped := &stubHandle{exitCode: -1, err: process.ErrStopped}

	res := parallel.NewResults(4,
		[]parallel.JobResult{result(t, "docs", &stubHandle{})},
		[]parallel.JobResult{result(t, "site", failed), result(t, "api", stopped)},
		true, 0)

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "stderr",
			opts: Options{IncludeStdErr: true},
			want: "✓ docs\n" +
				"✗ site (exit code: 2)\n" +
				"  ➜ Error Output:\n" +
				"     npm ERR! missing script\n" +
				"     npm ERR! build\n" +
				"✗ api (exit code: -1)\n" +
				"  ➜ Error: process stopped\n" +
				"1 succeeded, 2 failed, 1 not executed (stopped on failure)\n",
		},
		{
			name: "no stderr",
			opts: Options{},
			want: "✓ docs\n" +
				"✗ site (exit code: 2)\n" +
				"✗ api (exit code: -1)\n" +
				"  ➜ Error: process stopped\n" +
				"1 succeeded, 2 failed, 1 not executed (stopped on failure)\n",
		},
		{
			name: "stdout",
			opts: Options{IncludeStdOut: true},
			want: "✓ docs\n" +
				"✗ site (exit code: 2)\n" +
				"  ➜ Output:\n" +
				"     running build\n" +
				"✗ api (exit code: -1)\n" +
				"  ➜ Error: process stopped\n" +
				"1 succeeded, 2 failed, 1 not executed (stopped on failure)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, res, tt.opts))
		})
	}
}

func TestWrite_TimedOut(t *testing.T) {
	res := parallel.NewTimedOutResults(5, nil, nil, 0)

	assert.Equal(t, "0 succeeded, 0 failed, 5 not executed (timed out)\n", render(t, res, Options{}))
}

func TestWrite_Cancelled(t *testing.T) {
	res := parallel.NewCancelledResults(1, nil, nil, 0)

	assert.Contains(t, render(t, res, Options{}), "(cancelled)")
}

func TestWrite_Colour(t *testing.T) {
	res := parallel.NewResults(1, []parallel.JobResult{result(t, "site", &stubHandle{})}, nil, false, 0)

	out := render(t, res, Options{Colour: true})

	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "site")
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestWrite_WriterError(t *testing.T) {
	err := Write(failingWriter{}, parallel.NewEmptyResults(), Options{})
	require.ErrorIs(t, err, errWrite)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.True(t, opts.IncludeStdErr)
	assert.False(t, opts.IncludeStdOut)
}
