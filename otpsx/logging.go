// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otpsx

import (
	"context"
	"time"

	psx "github.com/petenewcomb/psx-go"
	"go.uber.org/zap"
)

// LoggingDelegate logs the life cycle of every task. Registration and start
// are logged at debug level; completion at debug level, or at error level
// with the error if the task failed. Dropped registrations are logged at warn
// level.
type LoggingDelegate[C any] struct {
	logger *zap.Logger
	starts inFlight[time.Time]
}

// NewLoggingDelegate returns a [LoggingDelegate] that writes to logger, or to
// zap's global logger if logger is nil.
func NewLoggingDelegate[C any](logger *zap.Logger) *LoggingDelegate[C] {
	if logger == nil {
		logger = zap.L()
	}
	return &LoggingDelegate[C]{
		logger: logger.With(zap.String("component", "otpsx")),
	}
}

func (d *LoggingDelegate[C]) fields(ctx context.Context, id psx.TaskID, extra ...zap.Field) []zap.Field {
	fields := make([]zap.Field, 0, 2+len(extra))
	fields = append(fields, zap.Stringer("task_id", id))
	if run, ok := psx.RunIDFromContext(ctx); ok {
		fields = append(fields, zap.Stringer("run_id", run))
	}
	return append(fields, extra...)
}

func (d *LoggingDelegate[C]) TaskRegistered(ctx context.Context, _ C, id psx.TaskID, _ psx.Task[C]) {
	d.logger.Debug("Task registered", d.fields(ctx, id)...)
}

func (d *LoggingDelegate[C]) TaskStarted(ctx context.Context, _ C, id psx.TaskID) {
	d.starts.start(ctx, id, time.Now())
	d.logger.Debug("Starting task", d.fields(ctx, id)...)
}

func (d *LoggingDelegate[C]) TaskFinished(ctx context.Context, _ C, id psx.TaskID, err error) {
	var duration time.Duration
	if start, ok := d.starts.finish(ctx, id); ok {
		duration = time.Since(start)
	}
	if err != nil {
		d.logger.Error("Task failed", d.fields(ctx, id,
			zap.Duration("duration", duration),
			zap.Error(err))...)
	} else {
		d.logger.Debug("Task completed", d.fields(ctx, id,
			zap.Duration("duration", duration))...)
	}
}

func (d *LoggingDelegate[C]) TaskDropped(ctx context.Context, _ C, id psx.TaskID, _ psx.Task[C], err error) {
	d.logger.Warn("Task dropped", d.fields(ctx, id, zap.Error(err))...)
}

// LoggedTask wraps task so that each run of it is logged under the given
// operation name, with timing and any error.
func LoggedTask[C any](logger *zap.Logger, operationName string, task psx.Task[C]) psx.Task[C] {
	if logger == nil {
		logger = zap.L()
	}
	return taskFunc[C](func(ctx context.Context, tc psx.TaskCtx[C]) error {
		fields := []zap.Field{
			zap.String("operation", operationName),
			zap.Stringer("task_id", tc.ID()),
		}
		logger.Debug("Starting operation", fields...)

		startTime := time.Now()
		err := task.Run(ctx, tc)
		fields = append(fields, zap.Duration("duration", time.Since(startTime)))

		if err != nil {
			logger.Error("Operation failed", append(fields, zap.Error(err))...)
		} else {
			logger.Debug("Operation completed", fields...)
		}
		return err
	})
}

// taskFunc is a reusable Task adapter. Unlike psx.NewTask it adds no run-once
// guard; the wrapped task keeps its own semantics.
type taskFunc[C any] func(ctx context.Context, tc psx.TaskCtx[C]) error

func (f taskFunc[C]) Run(ctx context.Context, tc psx.TaskCtx[C]) error {
	return f(ctx, tc)
}
