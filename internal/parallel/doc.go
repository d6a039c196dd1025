// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package parallel runs a batch of jobs as child processes with bounded parallelism.
//
// A Manager is single threaded. Parallelism comes only from the child processes: the Manager
// starts up to its process cap, sleeps for the poll interval, then inspects every running
// handle without blocking. The sleep is the only point where it waits.
//
// Every pushed job adds increment × number-of-commands to a global time budget. The run stops
// when the queue drains, when the budget is exceeded, when a job fails and stop-on-failure was
// requested, or when the context ends. Which one happened is recorded as the Outcome of the
// returned Results, together with the succeeded and failed jobs. Jobs in neither bucket were
// not executed to completion.
//
// Failures and timeouts are values in Results. Execute only returns an error when a process
// could not be spawned at all.
package parallel
