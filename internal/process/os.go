// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/matt-FFFFFF/parabuild/internal/ctxlog"
	"github.com/matt-FFFFFF/parabuild/internal/teereader"
)

const (
	// DefaultProcessTimeout is the ceiling applied when none is configured.
	DefaultProcessTimeout = time.Hour

	maxBufferSize = 8 * 1024 * 1024 // 8MB per stream

	// How long to keep reading pipes after the shell exits. Background
	// commands that inherited the pipes are killed once it elapses.
	pipeDrainTimeout = 2 * time.Second
)

var _ Factory = (*OSFactory)(nil)

// OSFactory creates handles that run their command line through a shell.
type OSFactory struct {
	ctx     context.Context
	shell   string
	env     []string
	timeout time.Duration
}

// FactoryOption configures an OSFactory.
type FactoryOption func(*OSFactory)

// WithProcessTimeout sets the absolute ceiling for each process. Zero or less selects the default.
func WithProcessTimeout(d time.Duration) FactoryOption {
	return func(f *OSFactory) {
		f.timeout = d
	}
}

// WithShell replaces the interpreter returned by DefaultShell.
func WithShell(path string) FactoryOption {
	return func(f *OSFactory) {
		f.shell = path
	}
}

// WithEnv adds variables to the environment inherited from the current process.
func WithEnv(env map[string]string) FactoryOption {
	return func(f *OSFactory) {
		for k, v := range env {
			f.env = append(f.env, fmt.Sprintf("%s=%s", k, v))
		}
	}
}

// NewOSFactory creates a factory. Processes created by it are killed when ctx ends.
func NewOSFactory(ctx context.Context, opts ...FactoryOption) *OSFactory {
	f := &OSFactory{
		ctx: ctx,
		env: os.Environ(),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.shell == "" {
		f.shell = DefaultShell()
	}

	if f.timeout <= 0 {
		f.timeout = DefaultProcessTimeout
	}

	return f
}

// New implements Factory.
func (f *OSFactory) New(command, dir string) Handle {
	return &osHandle{
		ctx:      f.ctx,
		command:  command,
		dir:      dir,
		shell:    f.shell,
		env:      slices.Clone(f.env),
		timeout:  f.timeout,
		exitCode: -1,
	}
}

type osHandle struct {
	ctx     context.Context
	command string
	dir     string
	shell   string
	env     []string
	timeout time.Duration

	mu       sync.Mutex
	started  bool
	stopped  bool
	ps       *os.Process
	sink     OutputSink
	spool    *teereader.Spool
	stdout   *teereader.Tee
	stderr   *teereader.Tee
	done     chan struct{}
	exitCode int
	err      error
}

// Start implements Handle.
func (h *osHandle) Start(sink OutputSink) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.started {
		return ErrAlreadyStarted
	}

	h.started = true
	h.sink = sink

	if sink != nil {
		h.spool = teereader.NewSpool()
	}

	h.stdout = teereader.NewTee(int(Stdout), maxBufferSize, h.spool)
	h.stderr = teereader.NewTee(int(Stderr), maxBufferSize, h.spool)
	h.done = make(chan struct{})

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return h.failStart(errors.Join(ErrFailedToCreatePipe, err))
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		closeAll(rOut, wOut)
		return h.failStart(errors.Join(ErrFailedToCreatePipe, err))
	}

	stdin, err := os.Open(os.DevNull)
	if err != nil {
		closeAll(rOut, wOut, rErr, wErr)
		return h.failStart(errors.Join(ErrCouldNotStartProcess, err))
	}

	args := slices.Concat([]string{filepath.Base(h.shell)}, shellArgs(h.command))

	ps, err := os.StartProcess(h.shell, args, &os.ProcAttr{
		Dir:   h.dir,
		Env:   h.env,
		Files: []*os.File{stdin, wOut, wErr},
		Sys:   sysProcAttr(),
	})

	// The child holds its own copies now.
	closeAll(stdin, wOut, wErr)

	if err != nil {
		closeAll(rOut, rErr)
		return h.failStart(errors.Join(ErrCouldNotStartProcess, err))
	}

	h.ps = ps

	ctxlog.Debug(h.ctx, "process started", "pid", ps.Pid, "dir", h.dir, "command", h.command)

	readers := &sync.WaitGroup{}
	readers.Add(2)

	go drain(readers, h.stdout, rOut)
	go drain(readers, h.stderr, rErr)
	go h.wait(readers, rOut, rErr)
	go h.watchdog()

	return nil
}

func (h *osHandle) failStart(err error) error {
	h.err = err
	close(h.done)

	return err
}

// IsRunning implements Handle.
func (h *osHandle) IsRunning() bool {
	if !h.isStarted() {
		return false
	}

	exited := h.exited()
	h.flush()

	return !exited
}

// IsSuccessful implements Handle.
func (h *osHandle) IsSuccessful() bool {
	if !h.isStarted() || !h.exited() {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.err == nil && h.exitCode == 0
}

// Stop implements Handle.
func (h *osHandle) Stop(grace time.Duration) error {
	if !h.isStarted() || h.exited() {
		return nil
	}

	h.mu.Lock()
	if !h.stopped {
		h.stopped = true
		h.err = errors.Join(h.err, ErrStopped)
	}
	h.mu.Unlock()

	ctxlog.Debug(h.ctx, "stopping process", "pid", h.ps.Pid, "grace", grace)

	if err := interruptGroup(h.ps); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return nil
		}

		return h.kill()
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-h.done:
		return nil
	case <-timer.C:
	}

	return h.kill()
}

// ErrorOutput implements Handle.
func (h *osHandle) ErrorOutput() string {
	if !h.isStarted() {
		return ""
	}

	return h.stderr.String()
}

// ExitCode implements Handle.
func (h *osHandle) ExitCode() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.exitCode
}

// Err returns why the process did not succeed beyond its exit status:
// start failures, the ceiling, Stop, or context cancellation.
func (h *osHandle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.err
}

// Output returns the standard output collected so far.
func (h *osHandle) Output() string {
	if !h.isStarted() {
		return ""
	}

	return h.stdout.String()
}

func (h *osHandle) isStarted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.started
}

func (h *osHandle) exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *osHandle) flush() {
	if h.spool == nil {
		return
	}

	for _, c := range h.spool.Drain() {
		h.sink(Stream(c.Tag), c.Data)
	}
}

func (h *osHandle) wait(readers *sync.WaitGroup, pipes ...*os.File) {
	state, waitErr := h.ps.Wait()

	drained := make(chan struct{})

	go func() {
		readers.Wait()
		close(drained)
	}()

	timer := time.NewTimer(pipeDrainTimeout)
	defer timer.Stop()

	select {
	case <-drained:
	case <-timer.C:
		ctxlog.Debug(h.ctx, "output pipes still open after exit, killing process group", "pid", h.ps.Pid)
		_ = killGroup(h.ps)
		closeAll(pipes...)
		<-drained
	}

	h.mu.Lock()

	if waitErr != nil {
		h.err = errors.Join(h.err, waitErr)
	}

	if state != nil {
		h.exitCode = state.ExitCode()
	}

	if h.err != nil {
		h.exitCode = -1
	}

	ctxlog.Debug(h.ctx, "process finished", "pid", h.ps.Pid, "exitCode", h.exitCode)
	h.mu.Unlock()

	close(h.done)
}

// watchdog enforces the ceiling and the factory context.
func (h *osHandle) watchdog() {
	timer := time.NewTimer(h.timeout)
	defer timer.Stop()

	select {
	case <-h.done:
	case <-timer.C:
		ctxlog.Warn(h.ctx, "process exceeded timeout, killing", "pid", h.ps.Pid, "timeout", h.timeout)
		h.terminate(ErrTimeoutExceeded)
	case <-h.ctx.Done():
		ctxlog.Debug(h.ctx, "context done, killing process", "pid", h.ps.Pid)
		h.terminate(ErrContextDone)
	}
}

func (h *osHandle) terminate(reason error) {
	if h.exited() {
		return
	}

	h.mu.Lock()
	h.err = errors.Join(h.err, reason)
	h.mu.Unlock()

	_ = h.kill()
}

func (h *osHandle) kill() error {
	if err := killGroup(h.ps); err != nil && !errors.Is(err, os.ErrProcessDone) {
		ctxlog.Error(h.ctx, "process kill error", "pid", h.ps.Pid, "error", err)
		return errors.Join(ErrCouldNotKillProcess, err)
	}

	return nil
}

func drain(wg *sync.WaitGroup, dst io.Writer, src *os.File) {
	defer wg.Done()

	_, _ = io.Copy(dst, src)
	_ = src.Close()
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
