// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otpsx

import (
	"context"

	psx "github.com/petenewcomb/psx-go"
	"go.opentelemetry.io/otel/trace"
)

// Propagate wraps task so that it runs with the trace context that is current
// in ctx, which should be the registering task's context:
//
//	tc.Register(ctx, otpsx.Propagate(ctx, child))
//
// Tasks do not otherwise inherit the span of the task that registered them,
// since every task receives a context derived from the run's.
func Propagate[C any](ctx context.Context, task psx.Task[C]) psx.Task[C] {
	parent := trace.SpanContextFromContext(ctx)
	if !parent.IsValid() {
		return task
	}
	return taskFunc[C](func(ctx context.Context, tc psx.TaskCtx[C]) error {
		return task.Run(trace.ContextWithSpanContext(ctx, parent), tc)
	})
}
