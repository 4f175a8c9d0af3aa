// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim_test

import (
	"testing"

	"github.com/petenewcomb/psx-go/internal/sim"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPlanCounts(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chk := require.New(t)
		config := sim.NewConfig(true)
		plan := sim.NewPlan(t, config)

		var tasks, errs, panics, repeats, seeds int
		seen := map[int]bool{}
		plan.Walk(func(task *sim.Task, depth int) {
			tasks++
			chk.False(seen[task.ID], "duplicate %v", task)
			seen[task.ID] = true
			chk.LessOrEqual(depth, config.MaxDepth)
			chk.Equal(depth == 0, task.Registration == sim.Seed)
			switch task.Outcome {
			case sim.Fail:
				errs++
			case sim.Panic:
				panics++
			}
			if task.Repeat {
				repeats++
			}
			if task.Registration == sim.Seed {
				seeds++
			}
		})

		chk.Equal(plan.TaskCount, tasks)
		chk.Equal(plan.ErrorCount, errs)
		chk.Equal(plan.PanicCount, panics)
		chk.Equal(plan.RepeatCount, repeats)
		chk.Equal(len(plan.Roots), seeds)
		chk.Equal(tasks+repeats, plan.RegistrationCount())
		chk.GreaterOrEqual(plan.Workers, 0)
		// Roots are drawn even after the cap has been reached.
		chk.LessOrEqual(plan.TaskCount, config.MaxTasks+len(plan.Roots))
	})
}
