// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otpsx

import (
	"context"
	"errors"
	"time"

	psx "github.com/petenewcomb/psx-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// MetricsDelegate records OpenTelemetry metrics for every task:
//
//   - <prefix>.registered, <prefix>.started, <prefix>.finished,
//     <prefix>.errors and <prefix>.dropped counters
//   - <prefix>.inflight, an up-down counter of started but unfinished tasks
//   - <prefix>.duration, a histogram of run times in seconds
type MetricsDelegate[C any] struct {
	registered metric.Int64Counter
	started    metric.Int64Counter
	finished   metric.Int64Counter
	errors     metric.Int64Counter
	dropped    metric.Int64Counter
	inflight   metric.Int64UpDownCounter
	duration   metric.Float64Histogram
	starts     inFlight[time.Time]
}

// NewMetricsDelegate creates the instruments of a [MetricsDelegate] on meter,
// or on a meter from the global provider if meter is nil.
func NewMetricsDelegate[C any](meter metric.Meter, prefix string) (*MetricsDelegate[C], error) {
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(instrumentationName)
	}
	if prefix == "" {
		prefix = "psx.tasks"
	}
	counter := func(name, description string, errs *[]error) metric.Int64Counter {
		c, err := meter.Int64Counter(prefix+"."+name, metric.WithDescription(description))
		*errs = append(*errs, err)
		return c
	}

	var errs []error
	d := &MetricsDelegate[C]{
		registered: counter("registered", "Tasks registered", &errs),
		started:    counter("started", "Tasks started", &errs),
		finished:   counter("finished", "Tasks finished", &errs),
		errors:     counter("errors", "Tasks that finished with an error", &errs),
		dropped:    counter("dropped", "Registrations dropped", &errs),
	}
	var err error
	d.inflight, err = meter.Int64UpDownCounter(prefix+".inflight",
		metric.WithDescription("Tasks started but not yet finished"))
	errs = append(errs, err)
	d.duration, err = meter.Float64Histogram(prefix+".duration",
		metric.WithDescription("Task run time"),
		metric.WithUnit("s"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *MetricsDelegate[C]) TaskRegistered(ctx context.Context, _ C, _ psx.TaskID, _ psx.Task[C]) {
	d.registered.Add(ctx, 1)
}

func (d *MetricsDelegate[C]) TaskStarted(ctx context.Context, _ C, id psx.TaskID) {
	d.starts.start(ctx, id, time.Now())
	d.started.Add(ctx, 1)
	d.inflight.Add(ctx, 1)
}

func (d *MetricsDelegate[C]) TaskFinished(ctx context.Context, _ C, id psx.TaskID, err error) {
	d.finished.Add(ctx, 1)
	if err != nil {
		d.errors.Add(ctx, 1)
	}
	if start, ok := d.starts.finish(ctx, id); ok {
		d.inflight.Add(ctx, -1)
		d.duration.Record(ctx, time.Since(start).Seconds())
	}
}

func (d *MetricsDelegate[C]) TaskDropped(ctx context.Context, _ C, _ psx.TaskID, _ psx.Task[C], _ error) {
	d.dropped.Add(ctx, 1)
}
