// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package process wraps child OS processes behind a non-blocking Handle.
//
// A Handle is started once and then polled. Polling never blocks: output produced since the
// previous poll is handed to the caller's OutputSink from inside IsRunning, so a single
// goroutine can drive many processes. Every process is subject to an absolute ceiling set on
// the Factory, independent of any deadline its caller keeps.
package process
