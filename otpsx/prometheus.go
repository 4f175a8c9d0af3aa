// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otpsx

import (
	"context"
	"errors"
	"time"

	psx "github.com/petenewcomb/psx-go"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values of psx_tasks_finished_total.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomePanic   = "panic"
)

// Reason label values of psx_tasks_dropped_total.
const (
	ReasonClosed   = "closed"
	ReasonCanceled = "canceled"
)

// PrometheusDelegate exports task metrics in Prometheus form:
//
//   - psx_tasks_registered_total
//   - psx_tasks_started_total
//   - psx_tasks_finished_total{outcome="success"|"error"|"panic"}
//   - psx_tasks_dropped_total{reason="closed"|"canceled"}
//   - psx_tasks_running
//   - psx_task_duration_seconds
type PrometheusDelegate[C any] struct {
	registered prometheus.Counter
	started    prometheus.Counter
	finished   *prometheus.CounterVec
	dropped    *prometheus.CounterVec
	running    prometheus.Gauge
	duration   prometheus.Histogram
	starts     inFlight[time.Time]
}

// NewPrometheusDelegate creates a [PrometheusDelegate] and registers its
// collectors with reg, or with the default registerer if reg is nil.
func NewPrometheusDelegate[C any](reg prometheus.Registerer) (*PrometheusDelegate[C], error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	d := &PrometheusDelegate[C]{
		registered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "psx_tasks_registered_total",
			Help: "Total number of tasks registered",
		}),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "psx_tasks_started_total",
			Help: "Total number of tasks started",
		}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "psx_tasks_finished_total",
			Help: "Total number of tasks finished, by outcome",
		}, []string{"outcome"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "psx_tasks_dropped_total",
			Help: "Total number of registrations dropped, by reason",
		}, []string{"reason"}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "psx_tasks_running",
			Help: "Number of tasks currently running",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "psx_task_duration_seconds",
			Help:    "Task run time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}
	for _, c := range []prometheus.Collector{d.registered, d.started, d.finished, d.dropped, d.running, d.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *PrometheusDelegate[C]) TaskRegistered(context.Context, C, psx.TaskID, psx.Task[C]) {
	d.registered.Inc()
}

func (d *PrometheusDelegate[C]) TaskStarted(ctx context.Context, _ C, id psx.TaskID) {
	d.starts.start(ctx, id, time.Now())
	d.started.Inc()
	d.running.Inc()
}

func (d *PrometheusDelegate[C]) TaskFinished(ctx context.Context, _ C, id psx.TaskID, err error) {
	outcome := OutcomeSuccess
	switch {
	case errors.Is(err, psx.ErrTaskPanic):
		outcome = OutcomePanic
	case err != nil:
		outcome = OutcomeError
	}
	d.finished.WithLabelValues(outcome).Inc()
	if start, ok := d.starts.finish(ctx, id); ok {
		d.running.Dec()
		d.duration.Observe(time.Since(start).Seconds())
	}
}

func (d *PrometheusDelegate[C]) TaskDropped(_ context.Context, _ C, _ psx.TaskID, _ psx.Task[C], err error) {
	reason := ReasonCanceled
	if errors.Is(err, psx.ErrRegistrationClosed) {
		reason = ReasonClosed
	}
	d.dropped.WithLabelValues(reason).Inc()
}
