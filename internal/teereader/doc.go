// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package teereader captures the output streams of a child process.
//
// Each stream gets a Tee, an io.Writer that keeps a bounded copy of everything written to it and,
// when attached to a Spool, also queues each chunk. The Spool is drained by whoever owns the
// process, so chunks reach the consumer on the consumer's goroutine and in arrival order across
// streams.
package teereader
