// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// The default logger writes through PrettyHandler to stdout. Its level is held in LevelVar and
// initialised from the <EXECUTABLE>_LOG_LEVEL environment variable, so for the parabuild binary
// that is PARABUILD_LOG_LEVEL. Two levels are added to the slog set: LevelTrace below DEBUG,
// which gates echoing of captured process stderr, and LevelComment between INFO and WARN for
// progress notes.
//
// IO adapts a context logger to the leveled sink the parallel scheduler writes to.
package ctxlog
