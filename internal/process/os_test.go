// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package process

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/parabuild/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pollEvery = 10 * time.Millisecond

type recordingSink struct {
	mu     sync.Mutex
	calls  int
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func (s *recordingSink) sink(stream Stream, chunk []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++

	switch stream {
	case Stdout:
		s.stdout.Write(chunk)
	case Stderr:
		s.stderr.Write(chunk)
	}
}

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == goosWindows {
		t.Skip("shell based process tests need /bin/sh")
	}
}

func newTestFactory(t *testing.T, opts ...FactoryOption) *OSFactory {
	t.Helper()
	skipOnWindows(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ctx = ctxlog.NewForWriter(ctx, &bytes.Buffer{})

	return NewOSFactory(ctx, append([]FactoryOption{WithShell(binSh)}, opts...)...)
}

// waitExit polls h the way the scheduler does until it exits or the deadline passes.
func waitExit(t *testing.T, h Handle, deadline time.Duration) {
	t.Helper()

	require.Eventually(t, func() bool { return !h.IsRunning() }, deadline, pollEvery, "process did not exit")
}

func TestOSHandle_Success(t *testing.T) {
	f := newTestFactory(t)
	rec := &recordingSink{}

	h := f.New("echo hello", t.TempDir())
	require.NoError(t, h.Start(rec.sink))
	waitExit(t, h, 5*time.Second)

	assert.True(t, h.IsSuccessful())
	assert.Equal(t, 0, h.ExitCode())
	assert.Equal(t, "hello\n", rec.stdout.String())
	assert.Empty(t, h.ErrorOutput())
}

func TestOSHandle_Failure(t *testing.T) {
	f := newTestFactory(t)
	rec := &recordingSink{}

	h := f.New("echo bad >&2; exit 3", t.TempDir())
	require.NoError(t, h.Start(rec.sink))
	waitExit(t, h, 5*time.Second)

	assert.False(t, h.IsSuccessful())
	assert.Equal(t, 3, h.ExitCode())
	assert.Equal(t, "bad\n", h.ErrorOutput())
	assert.Equal(t, "bad\n", rec.stderr.String())
}

func TestOSHandle_ChainStopsAtFirstFailure(t *testing.T) {
	f := newTestFactory(t)
	dir := t.TempDir()

	h := f.New("false && touch marker", dir)
	require.NoError(t, h.Start(nil))
	waitExit(t, h, 5*time.Second)

	assert.False(t, h.IsSuccessful())
	assert.NoFileExists(t, filepath.Join(dir, "marker"))
}

func TestOSHandle_WorkingDirectory(t *testing.T) {
	f := newTestFactory(t)
	dir := t.TempDir()

	h := f.New("pwd", dir)
	require.NoError(t, h.Start(nil))
	waitExit(t, h, 5*time.Second)

	oh, ok := h.(*osHandle)
	require.True(t, ok)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, oh.Output(), filepath.Base(resolved))
	assert.True(t, h.IsSuccessful())
}

func TestOSHandle_Env(t *testing.T) {
	f := newTestFactory(t, WithEnv(map[string]string{"PARABUILD_TEST": "bar"}))

	h := f.New(`test "$PARABUILD_TEST" = bar`, t.TempDir())
	require.NoError(t, h.Start(nil))
	waitExit(t, h, 5*time.Second)

	assert.True(t, h.IsSuccessful())
}

func TestOSHandle_SinkOnlyCalledWhilePolling(t *testing.T) {
	f := newTestFactory(t)
	rec := &recordingSink{}

	h := f.New("echo one; echo two >&2", t.TempDir())
	require.NoError(t, h.Start(rec.sink))

	oh, ok := h.(*osHandle)
	require.True(t, ok)

	<-oh.done

	rec.mu.Lock()
	assert.Zero(t, rec.calls, "sink must not be called outside IsRunning")
	rec.mu.Unlock()

	assert.False(t, h.IsRunning())
	assert.Equal(t, "one\n", rec.stdout.String())
	assert.Equal(t, "two\n", rec.stderr.String())
}

func TestOSHandle_Stop(t *testing.T) {
	f := newTestFactory(t)

	h := f.New("sleep 30", t.TempDir())
	require.NoError(t, h.Start(nil))
	assert.True(t, h.IsRunning())

	start := time.Now()
	require.NoError(t, h.Stop(200*time.Millisecond))
	waitExit(t, h, 5*time.Second)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.False(t, h.IsSuccessful())
	assert.Equal(t, -1, h.ExitCode())
	assert.ErrorIs(t, h.(*osHandle).Err(), ErrStopped)
}

func TestOSHandle_StopIgnoresTerm(t *testing.T) {
	f := newTestFactory(t)

	h := f.New(`trap "" TERM; sleep 30`, t.TempDir())
	require.NoError(t, h.Start(nil))

	// Give the shell time to install the trap.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, h.Stop(100*time.Millisecond))
	waitExit(t, h, 5*time.Second)

	assert.False(t, h.IsSuccessful())
}

func TestOSHandle_StopBeforeStartOrAfterExit(t *testing.T) {
	f := newTestFactory(t)

	h := f.New("true", t.TempDir())
	require.NoError(t, h.Stop(time.Millisecond), "stopping an unstarted handle is a no-op")

	require.NoError(t, h.Start(nil))
	waitExit(t, h, 5*time.Second)
	require.NoError(t, h.Stop(time.Millisecond))
	assert.True(t, h.IsSuccessful(), "stopping an exited handle keeps its result")
}

func TestOSHandle_ProcessTimeout(t *testing.T) {
	f := newTestFactory(t, WithProcessTimeout(100*time.Millisecond))

	h := f.New("sleep 30", t.TempDir())
	require.NoError(t, h.Start(nil))
	waitExit(t, h, 5*time.Second)

	assert.False(t, h.IsSuccessful())
	assert.ErrorIs(t, h.(*osHandle).Err(), ErrTimeoutExceeded)
}

func TestOSHandle_ContextCancelKills(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithCancel(ctxlog.NewForWriter(context.Background(), &bytes.Buffer{}))
	f := NewOSFactory(ctx, WithShell(binSh))

	h := f.New("sleep 30", t.TempDir())
	require.NoError(t, h.Start(nil))

	cancel()
	waitExit(t, h, 5*time.Second)

	assert.ErrorIs(t, h.(*osHandle).Err(), ErrContextDone)
}

func TestOSHandle_StartTwice(t *testing.T) {
	f := newTestFactory(t)

	h := f.New("true", t.TempDir())
	require.NoError(t, h.Start(nil))
	require.ErrorIs(t, h.Start(nil), ErrAlreadyStarted)
	waitExit(t, h, 5*time.Second)
}

func TestOSHandle_StartFailure(t *testing.T) {
	f := newTestFactory(t)

	h := f.New("true", filepath.Join(t.TempDir(), "missing"))
	err := h.Start(nil)

	require.ErrorIs(t, err, ErrCouldNotStartProcess)
	assert.False(t, h.IsRunning())
	assert.False(t, h.IsSuccessful())
}

func TestOSHandle_UnstartedQueries(t *testing.T) {
	f := newTestFactory(t)
	h := f.New("true", t.TempDir())

	assert.False(t, h.IsRunning())
	assert.False(t, h.IsSuccessful())
	assert.Empty(t, h.ErrorOutput())
	assert.Equal(t, -1, h.ExitCode())
}

func TestNewOSFactory_Defaults(t *testing.T) {
	f := NewOSFactory(context.Background())

	assert.Equal(t, DefaultProcessTimeout, f.timeout)
	assert.NotEmpty(t, f.shell)
	assert.Equal(t, len(os.Environ()), len(f.env))
}
