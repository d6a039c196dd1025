// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package parallel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matt-FFFFFF/parabuild/internal/process"
)

const commandGlue = " && "

var (
	// ErrNoCommands is returned by Push when a job has no commands.
	ErrNoCommands = errors.New("at least one command is required")
	// ErrStartJob is returned by Execute when a job's process could not be spawned.
	ErrStartJob = errors.New("failed to start job")
)

// Job is the unit of work: its name is logged and its path is the working directory.
type Job interface {
	Name() string
	Path() string
}

// IO receives the scheduler's log lines.
type IO interface {
	Info(msg string, args ...any)
	Comment(msg string, args ...any)
	Error(msg string, args ...any)
	// IsVeryVerbose enables echoing of captured stderr for failed jobs.
	IsVeryVerbose() bool
}

type entry struct {
	job      Job
	command  string
	commands int
	handle   process.Handle
}

func (e *entry) result() JobResult {
	return JobResult{Job: e.job, Handle: e.handle}
}

// Manager queues jobs and runs them.
// All state below belongs to the pending batch and is cleared when Execute returns,
// so a Manager can be reused for the next batch. It must not be used concurrently.
type Manager struct {
	factory          process.Factory
	maxProcesses     int
	pollInterval     time.Duration
	timeoutIncrement time.Duration
	stopGrace        time.Duration
	clock            Clock

	pending []*entry
	total   int
	budget  time.Duration
}

// New creates a Manager that spawns processes through factory.
func New(factory process.Factory, opts ...Option) *Manager {
	m := &Manager{
		factory:          factory,
		maxProcesses:     DefaultMaxProcesses,
		pollInterval:     DefaultPollInterval,
		timeoutIncrement: DefaultTimeoutIncrement,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.clamp()

	return m
}

// Push queues job to run commands in order, each only if the previous one succeeded.
func (m *Manager) Push(job Job, commands ...string) error {
	if len(commands) == 0 {
		return fmt.Errorf("%w: %s", ErrNoCommands, job.Name())
	}

	m.pending = append(m.pending, &entry{
		job:      job,
		command:  strings.Join(commands, commandGlue),
		commands: len(commands),
	})
	m.total++
	m.budget += m.timeoutIncrement * time.Duration(len(commands))

	return nil
}

// Total returns the number of jobs pushed since the last Execute.
func (m *Manager) Total() int {
	return m.total
}

// Budget returns the time budget accumulated since the last Execute.
func (m *Manager) Budget() time.Duration {
	return m.budget
}

// MaxProcesses returns the effective concurrency cap.
func (m *Manager) MaxProcesses() int {
	return m.maxProcesses
}

// PollInterval returns the effective poll interval.
func (m *Manager) PollInterval() time.Duration {
	return m.pollInterval
}

// Execute runs every pushed job and returns the outcome.
// sink receives process output as it is collected and may be nil.
// With stopOnFailure, the first failure ends the run. Jobs still running at that point are
// stopped and counted as not executed.
func (m *Manager) Execute(ctx context.Context, io IO, sink process.OutputSink, stopOnFailure bool) (*Results, error) {
	defer m.reset()

	if m.total == 0 {
		return NewEmptyResults(), nil
	}

	r := &run{
		Manager:       m,
		io:            io,
		sink:          sink,
		stopOnFailure: stopOnFailure,
		total:         m.total,
		budget:        m.budget,
		start:         m.clock.Now(),
	}

	return r.loop(ctx)
}

func (m *Manager) reset() {
	m.pending = nil
	m.total = 0
	m.budget = 0
}

// run holds the state of one Execute call.
type run struct {
	*Manager

	io            IO
	sink          process.OutputSink
	stopOnFailure bool
	total         int
	budget        time.Duration
	start         time.Time

	running   []*entry
	succeeded []JobResult
	failed    []JobResult
}

func (r *run) loop(ctx context.Context) (*Results, error) {
	for {
		if err := r.fill(); err != nil {
			r.stopAll()
			return nil, err
		}

		r.clock.Sleep(ctx, r.pollInterval)

		if ctx.Err() != nil {
			r.io.Error("run cancelled", "error", ctx.Err(), "running", len(r.running), "pending", len(r.pending))
			r.stopAll()

			return NewCancelledResults(r.total, r.succeeded, r.failed, r.elapsed()), nil
		}

		r.poll()

		if elapsed := r.elapsed(); elapsed > r.budget {
			r.io.Error("time budget exceeded",
				"budget", r.budget,
				"elapsed", elapsed.Round(time.Millisecond),
				"running", len(r.running),
				"pending", len(r.pending))
			r.stopAll()

			return NewTimedOutResults(r.total, r.succeeded, r.failed, elapsed), nil
		}

		if r.stopOnFailure && len(r.failed) > 0 {
			r.stopAll()
			return NewResults(r.total, r.succeeded, r.failed, true, r.elapsed()), nil
		}

		if len(r.running) == 0 && len(r.pending) == 0 {
			return NewResults(r.total, r.succeeded, r.failed, false, r.elapsed()), nil
		}
	}
}

// fill starts pending jobs in FIFO order until the cap is reached.
func (r *run) fill() error {
	for len(r.running) < r.maxProcesses && len(r.pending) > 0 {
		e := r.pending[0]
		r.pending = r.pending[1:]

		e.handle = r.factory.New(e.command, e.job.Path())
		if err := e.handle.Start(r.sink); err != nil {
			r.io.Error("could not start asset build", "asset", e.job.Name(), "error", err)
			return fmt.Errorf("%w %s: %w", ErrStartJob, e.job.Name(), err)
		}

		r.io.Comment("started asset build", "asset", e.job.Name(), "command", e.command)
		r.running = append(r.running, e)
	}

	return nil
}

// poll inspects running jobs in the order they were started.
// Once a failure is seen with stopOnFailure set, jobs later in this pass that are
// still running are stopped and dropped. Jobs earlier in the pass are left running.
func (r *run) poll() {
	still := make([]*entry, 0, len(r.running))
	abort := false

	for _, e := range r.running {
		running := e.handle.IsRunning()

		switch {
		case running && abort:
			r.io.Comment("stopping asset build after failure", "asset", e.job.Name())
			r.stop(e)
		case running:
			still = append(still, e)
		case e.handle.IsSuccessful():
			r.io.Info("asset built", "asset", e.job.Name())
			r.succeeded = append(r.succeeded, e.result())
		default:
			r.reportFailure(e)
			r.failed = append(r.failed, e.result())

			if r.stopOnFailure {
				abort = true
			}
		}
	}

	r.running = still
}

func (r *run) reportFailure(e *entry) {
	r.io.Error("asset build failed", "asset", e.job.Name(), "exitCode", e.handle.ExitCode())

	if !r.io.IsVeryVerbose() {
		return
	}

	for _, line := range strings.Split(strings.TrimRight(e.handle.ErrorOutput(), "\n"), "\n") {
		if line != "" {
			r.io.Error(line, "asset", e.job.Name())
		}
	}
}

// stopAll terminates handles still running when a run ends early.
// They stay out of the buckets.
func (r *run) stopAll() {
	for _, e := range r.running {
		r.stop(e)
	}

	r.running = nil
}

func (r *run) stop(e *entry) {
	if err := e.handle.Stop(r.stopGrace); err != nil {
		r.io.Error("could not stop asset build", "asset", e.job.Name(), "error", err)
	}
}

func (r *run) elapsed() time.Duration {
	return r.clock.Now().Sub(r.start)
}
