// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package parallel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matt-FFFFFF/parabuild/internal/process"
)

var errFakeStart = errors.New("fake start failure")

// behaviour scripts a fake process.
type behaviour struct {
	polls    int // number of IsRunning calls that report running
	fail     bool
	never    bool // never exits on its own
	startErr bool
	stderr   string
	stdout   string
}

type fakeFactory struct {
	behaviours map[string]behaviour
	live       int
	maxLive    int
	started    []string
	stopped    []string
	handles    []*fakeHandle
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{behaviours: make(map[string]behaviour)}
}

func (f *fakeFactory) script(command string, b behaviour) {
	f.behaviours[command] = b
}

func (f *fakeFactory) New(command, dir string) process.Handle {
	h := &fakeHandle{f: f, command: command, dir: dir, b: f.behaviours[command], exitCode: -1}
	f.handles = append(f.handles, h)

	return h
}

type fakeHandle struct {
	f        *fakeFactory
	b        behaviour
	command  string
	dir      string
	sink     process.OutputSink
	started  bool
	stopped  bool
	exited   bool
	polls    int
	exitCode int
}

func (h *fakeHandle) Start(sink process.OutputSink) error {
	if h.b.startErr {
		return errors.Join(process.ErrCouldNotStartProcess, errFakeStart)
	}

	h.started = true
	h.sink = sink
	h.f.started = append(h.f.started, h.command)
	h.f.live++
	h.f.maxLive = max(h.f.maxLive, h.f.live)

	return nil
}

func (h *fakeHandle) IsRunning() bool {
	if !h.started || h.exited || h.stopped {
		return false
	}

	if h.polls == 0 && h.sink != nil && h.b.stdout != "" {
		h.sink(process.Stdout, []byte(h.b.stdout))
	}

	h.polls++

	if h.b.never || h.polls <= h.b.polls {
		return true
	}

	h.exited = true
	h.f.live--

	h.exitCode = 0
	if h.b.fail {
		h.exitCode = 1
	}

	return false
}

func (h *fakeHandle) IsSuccessful() bool {
	return h.exited && !h.b.fail
}

func (h *fakeHandle) Stop(_ time.Duration) error {
	if h.exited || h.stopped {
		return nil
	}

	h.stopped = true
	h.f.live--
	h.f.stopped = append(h.f.stopped, h.command)

	return nil
}

func (h *fakeHandle) ErrorOutput() string {
	return h.b.stderr
}

func (h *fakeHandle) ExitCode() int {
	return h.exitCode
}

// fakeClock advances on Sleep instead of waiting.
type fakeClock struct {
	now    time.Time
	sleeps int
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) {
	c.sleeps++
	c.now = c.now.Add(d)
}

type logLine struct {
	level string
	msg   string
	args  []any
}

type recordingIO struct {
	veryVerbose bool
	lines       []logLine
}

func (w *recordingIO) Info(msg string, args ...any) {
	w.lines = append(w.lines, logLine{level: "info", msg: msg, args: args})
}

func (w *recordingIO) Comment(msg string, args ...any) {
	w.lines = append(w.lines, logLine{level: "comment", msg: msg, args: args})
}

func (w *recordingIO) Error(msg string, args ...any) {
	w.lines = append(w.lines, logLine{level: "error", msg: msg, args: args})
}

func (w *recordingIO) IsVeryVerbose() bool {
	return w.veryVerbose
}

func (w *recordingIO) messages(level string) []string {
	var out []string

	for _, l := range w.lines {
		if l.level == level {
			out = append(out, l.msg)
		}
	}

	return out
}

// assetsWith returns the asset names that appear with msg.
func (w *recordingIO) assetsWith(msg string) []string {
	var out []string

	for _, l := range w.lines {
		if l.msg != msg {
			continue
		}

		for i := 0; i+1 < len(l.args); i += 2 {
			if l.args[i] == "asset" {
				out = append(out, fmt.Sprint(l.args[i+1]))
			}
		}
	}

	return out
}

type testJob struct {
	name string
	path string
}

func (j testJob) Name() string { return j.name }
func (j testJob) Path() string { return j.path }

func job(name string) testJob {
	return testJob{name: name, path: "/srv/" + name}
}

func names(results []JobResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Job.Name())
	}

	return out
}
