// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package parallel

import (
	"context"
	"time"
)

const (
	// DefaultMaxProcesses is the default number of concurrently running jobs.
	DefaultMaxProcesses = 4
	// DefaultPollInterval is the default sleep between poll passes.
	DefaultPollInterval = 100 * time.Millisecond
	// MinPollInterval and MaxPollInterval bound the poll interval.
	MinPollInterval = 5 * time.Millisecond
	MaxPollInterval = 2000 * time.Millisecond
	// DefaultTimeoutIncrement is the default budget added per command.
	DefaultTimeoutIncrement = 300 * time.Second
	// MinTimeoutIncrement and MaxTimeoutIncrement bound the per command budget.
	MinTimeoutIncrement = 30 * time.Second
	MaxTimeoutIncrement = 3600 * time.Second
	// DefaultStopGrace is how long a stopped process gets before it is killed.
	DefaultStopGrace = time.Second
)

// Option configures a Manager.
type Option func(*Manager)

// WithMaxProcesses sets the concurrency cap. Values below one select one.
func WithMaxProcesses(n int) Option {
	return func(m *Manager) {
		m.maxProcesses = n
	}
}

// WithPollInterval sets the sleep between poll passes. Values outside
// [MinPollInterval, MaxPollInterval] are clamped.
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) {
		m.pollInterval = d
	}
}

// WithTimeoutIncrement sets the budget added per pushed command. Values outside
// [MinTimeoutIncrement, MaxTimeoutIncrement] are clamped.
// It applies to jobs pushed after the Manager is created.
func WithTimeoutIncrement(d time.Duration) Option {
	return func(m *Manager) {
		m.timeoutIncrement = d
	}
}

// WithStopGrace sets the grace period given to processes that are stopped.
func WithStopGrace(d time.Duration) Option {
	return func(m *Manager) {
		m.stopGrace = d
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(c Clock) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

// Clock is the time source of a Manager.
type Clock interface {
	Now() time.Time
	// Sleep waits for d or until ctx ends.
	Sleep(ctx context.Context, d time.Duration)
}

type wallClock struct{}

func (wallClock) Now() time.Time {
	return time.Now()
}

func (wallClock) Sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (m *Manager) clamp() {
	if m.maxProcesses < 1 {
		m.maxProcesses = 1
	}

	m.pollInterval = min(max(m.pollInterval, MinPollInterval), MaxPollInterval)
	m.timeoutIncrement = min(max(m.timeoutIncrement, MinTimeoutIncrement), MaxTimeoutIncrement)

	if m.stopGrace <= 0 {
		m.stopGrace = DefaultStopGrace
	}

	if m.clock == nil {
		m.clock = wallClock{}
	}
}
