// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package process

import (
	"errors"
	"time"
)

var (
	// ErrCouldNotStartProcess is returned when the operating system refuses to spawn the process.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToCreatePipe is returned when an output pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrAlreadyStarted is returned by Start on a handle that was started before.
	ErrAlreadyStarted = errors.New("process already started")
	// ErrTimeoutExceeded is recorded when a process outlives the factory ceiling and is killed.
	ErrTimeoutExceeded = errors.New("process timeout exceeded")
	// ErrStopped is recorded when a process is terminated through Stop.
	ErrStopped = errors.New("process stopped")
	// ErrContextDone is recorded when the factory context ends while the process runs.
	ErrContextDone = errors.New("context done, process killed")
	// ErrCouldNotKillProcess is returned when a kill signal could not be delivered.
	ErrCouldNotKillProcess = errors.New("could not kill process")
)

// Stream identifies an output stream of a process.
type Stream int

const (
	// Stdout is the standard output stream.
	Stdout Stream = iota + 1
	// Stderr is the standard error stream.
	Stderr
)

func (s Stream) String() string {
	switch s {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	}

	return "unknown"
}

// OutputSink receives output chunks as they are collected.
type OutputSink func(stream Stream, chunk []byte)

// Handle controls one child process bound to a command line and a working directory.
type Handle interface {
	// Start spawns the process and returns without waiting for it.
	// Errors mean the process could not be spawned at all.
	// sink may be nil.
	Start(sink OutputSink) error
	// IsRunning reports whether the process has not exited yet.
	// Output collected since the last call is delivered to the sink before it returns.
	IsRunning() bool
	// IsSuccessful reports whether the process exited with status zero.
	// It is false while the process is running.
	IsSuccessful() bool
	// Stop asks the process to terminate, waits at most grace, then kills it.
	Stop(grace time.Duration) error
	// ErrorOutput returns the standard error collected so far.
	ErrorOutput() string
	// ExitCode returns the exit status, or -1 while running or when terminated by a signal.
	ExitCode() int
}

// Factory creates handles. Handles are created unstarted.
type Factory interface {
	New(command, dir string) Handle
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(command, dir string) Handle

// New implements Factory.
func (f FactoryFunc) New(command, dir string) Handle {
	return f(command, dir)
}
