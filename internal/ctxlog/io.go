// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"log/slog"
)

// IO is a leveled writer bound to a context logger.
// It satisfies parallel.IO.
type IO struct {
	ctx    context.Context
	logger *slog.Logger
}

// NewIO binds an IO to the logger carried by ctx.
func NewIO(ctx context.Context) *IO {
	return &IO{ctx: ctx, logger: Logger(ctx)}
}

// Info writes at info level.
func (w *IO) Info(msg string, args ...any) {
	w.logger.Log(w.ctx, slog.LevelInfo, msg, args...)
}

// Comment writes at LevelComment.
func (w *IO) Comment(msg string, args ...any) {
	w.logger.Log(w.ctx, LevelComment, msg, args...)
}

// Error writes at error level.
func (w *IO) Error(msg string, args ...any) {
	w.logger.Log(w.ctx, slog.LevelError, msg, args...)
}

// IsVeryVerbose reports whether trace output is enabled.
func (w *IO) IsVeryVerbose() bool {
	return w.logger.Enabled(w.ctx, LevelTrace)
}
