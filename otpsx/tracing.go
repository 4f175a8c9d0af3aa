// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otpsx

import (
	"context"

	psx "github.com/petenewcomb/psx-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/petenewcomb/psx-go/otpsx"

const (
	taskIDKey = attribute.Key("psx.task.id")
	runIDKey  = attribute.Key("psx.run.id")
)

// TracingDelegate records one span per task, from the moment the task starts
// until the engine processes its completion. A failed task's span records the
// error and has an error status.
//
// The spans are children of whatever span is current in the context passed to
// [psx.Engine.Run]. To parent spans created inside a task under its
// registering task, use [TracedTask] and [Propagate] instead.
type TracingDelegate[C any] struct {
	tracer trace.Tracer
	spans  inFlight[trace.Span]
}

// NewTracingDelegate returns a [TracingDelegate] that uses tracer, or a tracer
// from the global provider if tracer is nil.
func NewTracingDelegate[C any](tracer trace.Tracer) *TracingDelegate[C] {
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}
	return &TracingDelegate[C]{tracer: tracer}
}

func (d *TracingDelegate[C]) TaskRegistered(context.Context, C, psx.TaskID, psx.Task[C]) {}

func (d *TracingDelegate[C]) TaskStarted(ctx context.Context, _ C, id psx.TaskID) {
	attrs := []attribute.KeyValue{taskIDKey.Int64(int64(id))}
	if run, ok := psx.RunIDFromContext(ctx); ok {
		attrs = append(attrs, runIDKey.String(run.String()))
	}
	_, span := d.tracer.Start(ctx, "psx.task",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...))
	d.spans.start(ctx, id, span)
}

func (d *TracingDelegate[C]) TaskFinished(ctx context.Context, _ C, id psx.TaskID, err error) {
	span, ok := d.spans.finish(ctx, id)
	if !ok {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// TracedTask wraps task so that each run of it happens inside a span with the
// given operation name. Spans the task creates itself become children of that
// span.
func TracedTask[C any](operationName string, task psx.Task[C]) psx.Task[C] {
	return taskFunc[C](func(ctx context.Context, tc psx.TaskCtx[C]) error {
		ctx, span := otel.Tracer(instrumentationName).Start(ctx, operationName,
			trace.WithAttributes(taskIDKey.Int64(int64(tc.ID()))))
		defer span.End()

		err := task.Run(ctx, tc)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	})
}
