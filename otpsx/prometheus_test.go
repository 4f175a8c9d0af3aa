// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otpsx_test

import (
	"context"
	"testing"

	psx "github.com/petenewcomb/psx-go"
	"github.com/petenewcomb/psx-go/otpsx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func gathered(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}

func TestPrometheusDelegate(t *testing.T) {
	chk := require.New(t)
	reg := prometheus.NewRegistry()
	d, err := otpsx.NewPrometheusDelegate[int](reg)
	chk.NoError(err)

	engine := psx.NewEngine[int](d)
	var escaped psx.TaskCtx[int]
	chk.NoError(mixedRun(engine, succeed(), fail(), explode(),
		psx.NewTask(func(_ context.Context, tc psx.TaskCtx[int]) error {
			escaped = tc
			return nil
		}),
	))
	escaped.RegisterBlocking(succeed())

	chk.Equal(5.0, gathered(t, reg, "psx_tasks_registered_total", nil))
	chk.Equal(5.0, gathered(t, reg, "psx_tasks_started_total", nil))
	chk.Equal(3.0, gathered(t, reg, "psx_tasks_finished_total", map[string]string{"outcome": otpsx.OutcomeSuccess}))
	chk.Equal(1.0, gathered(t, reg, "psx_tasks_finished_total", map[string]string{"outcome": otpsx.OutcomeError}))
	chk.Equal(1.0, gathered(t, reg, "psx_tasks_finished_total", map[string]string{"outcome": otpsx.OutcomePanic}))
	chk.Equal(1.0, gathered(t, reg, "psx_tasks_dropped_total", map[string]string{"reason": otpsx.ReasonCanceled}))
	chk.Equal(1.0, gathered(t, reg, "psx_tasks_dropped_total", map[string]string{"reason": otpsx.ReasonClosed}))
	chk.Equal(0.0, gathered(t, reg, "psx_tasks_running", nil))
	chk.Equal(5.0, gathered(t, reg, "psx_task_duration_seconds", nil))

	count, err := testutil.GatherAndCount(reg, "psx_tasks_finished_total")
	chk.NoError(err)
	chk.Equal(3, count)
}

func TestPrometheusDelegateAbandonedRun(t *testing.T) {
	chk := require.New(t)
	reg := prometheus.NewRegistry()
	d, err := otpsx.NewPrometheusDelegate[int](reg)
	chk.NoError(err)

	chk.ErrorIs(abandonedRun(psx.NewEngine[int](d)), context.Canceled)
	waitFor(t, func() bool {
		return gathered(t, reg, "psx_tasks_running", nil) == 0
	})
	chk.Equal(1.0, gathered(t, reg, "psx_tasks_finished_total", map[string]string{"outcome": otpsx.OutcomeError}))
	chk.Equal(1.0, gathered(t, reg, "psx_task_duration_seconds", nil))
}

func TestPrometheusDelegateDuplicateRegistration(t *testing.T) {
	chk := require.New(t)
	reg := prometheus.NewRegistry()
	_, err := otpsx.NewPrometheusDelegate[int](reg)
	chk.NoError(err)
	_, err = otpsx.NewPrometheusDelegate[int](reg)
	var already prometheus.AlreadyRegisteredError
	chk.ErrorAs(err, &already)
}
