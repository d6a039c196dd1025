// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package parallel

import (
	"slices"
	"time"

	"github.com/matt-FFFFFF/parabuild/internal/process"
)

// Outcome says how a run ended.
type Outcome int

const (
	// OutcomeEmpty means nothing was pushed.
	OutcomeEmpty Outcome = iota
	// OutcomeCompleted means every job reached a bucket.
	OutcomeCompleted
	// OutcomeStoppedOnFailure means a failure ended the run early.
	OutcomeStoppedOnFailure
	// OutcomeTimedOut means the time budget was exceeded.
	OutcomeTimedOut
	// OutcomeCancelled means the context ended the run.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmpty:
		return "empty"
	case OutcomeCompleted:
		return "completed"
	case OutcomeStoppedOnFailure:
		return "stopped on failure"
	case OutcomeTimedOut:
		return "timed out"
	case OutcomeCancelled:
		return "cancelled"
	}

	return "unknown"
}

// JobResult pairs a job with the handle that ran it.
type JobResult struct {
	Job    Job
	Handle process.Handle
}

// Results is the immutable outcome of one run.
// Accessors return copies, never the internal buckets.
type Results struct {
	outcome   Outcome
	total     int
	succeeded []JobResult
	failed    []JobResult
	elapsed   time.Duration
}

// NewEmptyResults is the result of a run with no jobs.
func NewEmptyResults() *Results {
	return &Results{outcome: OutcomeEmpty}
}

// NewResults is the result of a run that was not cut short by the budget.
// stopped records whether stop-on-failure ended it.
func NewResults(total int, succeeded, failed []JobResult, stopped bool, elapsed time.Duration) *Results {
	outcome := OutcomeCompleted
	if stopped {
		outcome = OutcomeStoppedOnFailure
	}

	return newResults(outcome, total, succeeded, failed, elapsed)
}

// NewTimedOutResults is the result of a run that exceeded its budget.
func NewTimedOutResults(total int, succeeded, failed []JobResult, elapsed time.Duration) *Results {
	return newResults(OutcomeTimedOut, total, succeeded, failed, elapsed)
}

// NewCancelledResults is the result of a run whose context ended.
func NewCancelledResults(total int, succeeded, failed []JobResult, elapsed time.Duration) *Results {
	return newResults(OutcomeCancelled, total, succeeded, failed, elapsed)
}

func newResults(outcome Outcome, total int, succeeded, failed []JobResult, elapsed time.Duration) *Results {
	if total <= 0 {
		return NewEmptyResults()
	}

	return &Results{
		outcome:   outcome,
		total:     total,
		succeeded: slices.Clone(succeeded),
		failed:    slices.Clone(failed),
		elapsed:   elapsed,
	}
}

// Outcome returns how the run ended.
func (r *Results) Outcome() Outcome {
	return r.outcome
}

// Total returns the number of pushed jobs.
func (r *Results) Total() int {
	return r.total
}

// IsEmpty reports whether no jobs were pushed.
func (r *Results) IsEmpty() bool {
	return r.total == 0
}

// TimedOut reports whether the budget was exceeded.
func (r *Results) TimedOut() bool {
	return r.outcome == OutcomeTimedOut
}

// HasErrors reports whether any job failed.
func (r *Results) HasErrors() bool {
	return len(r.failed) > 0
}

// HasSuccesses reports whether any job succeeded.
func (r *Results) HasSuccesses() bool {
	return len(r.succeeded) > 0
}

// NotExecutedCount returns the number of jobs in neither bucket.
func (r *Results) NotExecutedCount() int {
	if r.total <= 0 {
		return 0
	}

	n := r.total - len(r.succeeded) - len(r.failed)

	return min(max(n, 0), r.total)
}

// IsSuccessful reports whether every pushed job ran to completion and succeeded.
func (r *Results) IsSuccessful() bool {
	return r.total > 0 &&
		r.outcome == OutcomeCompleted &&
		r.NotExecutedCount() == 0 &&
		!r.HasErrors()
}

// Successes returns a copy of the succeeded bucket, or nil when it is empty.
func (r *Results) Successes() []JobResult {
	if len(r.succeeded) == 0 {
		return nil
	}

	return slices.Clone(r.succeeded)
}

// Errors returns a copy of the failed bucket, or nil when it is empty.
func (r *Results) Errors() []JobResult {
	if len(r.failed) == 0 {
		return nil
	}

	return slices.Clone(r.failed)
}

// Elapsed returns the wall clock duration of the run.
func (r *Results) Elapsed() time.Duration {
	return r.elapsed
}
