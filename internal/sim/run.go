// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	psx "github.com/petenewcomb/psx-go"
	"github.com/petenewcomb/psx-go/executor"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Result summarizes a simulated run.
type Result struct {
	Registered     int
	MaxConcurrency int64
	Duration       time.Duration
}

// Run executes plan on a fresh engine and verifies the engine's behavior
// against it.
func Run(t require.TestingT, ctx context.Context, plan *Plan, logger *zap.Logger) *Result {
	chk := require.New(t)

	var ex executor.Executor = executor.Goroutines{}
	var pool *executor.Pool
	if plan.Workers > 0 {
		pool = executor.NewPool(executor.Config{Workers: plan.Workers, BlockingWorkers: 1})
		ex = pool
	}

	c := &controller{
		plan: plan,
		runs: make([]atomic.Int64, plan.TaskCount),
	}
	engine := psx.NewEngine[*controller](c, psx.WithExecutor(ex), psx.WithLogger(logger))

	seeds := make([]psx.Task[*controller], len(plan.Roots))
	for i, root := range plan.Roots {
		seeds[i] = newTask(root)
	}

	start := time.Now()
	err := engine.RunMany(ctx, c, seeds...)
	duration := time.Since(start)
	chk.NoError(err)
	if pool != nil {
		pool.Wait()
		chk.Equal(executor.Stats{}, pool.Stats())
	}

	for id := range c.runs {
		chk.Equal(int64(1), c.runs[id].Load(), "Task#%d run count", id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	chk.Len(c.lifecycles, plan.RegistrationCount())
	for id, lc := range c.lifecycles {
		chk.Equal(3, lc.stage, "task %v did not complete its life cycle", id)
	}
	chk.Equal(plan.ErrorCount, c.failed, "failed tasks")
	chk.Equal(plan.PanicCount, c.panicked, "panicked tasks")
	chk.Equal(plan.RepeatCount, c.repeated, "repeated registrations")
	chk.Zero(c.unexpected)
	if plan.Workers > 0 {
		chk.LessOrEqual(c.maxConcurrency.Load(), int64(plan.Workers))
	}

	return &Result{
		Registered:     len(c.lifecycles),
		MaxConcurrency: c.maxConcurrency.Load(),
		Duration:       duration,
	}
}

// controller is both the run's data value and its delegate.
type controller struct {
	plan           *Plan
	runs           []atomic.Int64
	concurrency    atomic.Int64
	maxConcurrency atomic.Int64

	mu         sync.Mutex
	lifecycles map[psx.TaskID]*lifecycle
	failed     int
	panicked   int
	repeated   int
	unexpected int
}

// lifecycle.stage counts the notifications seen so far for one task.
type lifecycle struct {
	stage int
}

func (c *controller) advance(id psx.TaskID, from int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lifecycles == nil {
		c.lifecycles = make(map[psx.TaskID]*lifecycle)
	}
	lc := c.lifecycles[id]
	if lc == nil {
		lc = &lifecycle{}
		c.lifecycles[id] = lc
	}
	if lc.stage != from {
		c.unexpected++
		return
	}
	lc.stage++
}

func (c *controller) TaskRegistered(_ context.Context, _ *controller, id psx.TaskID, _ psx.Task[*controller]) {
	c.advance(id, 0)
}

func (c *controller) TaskStarted(_ context.Context, _ *controller, id psx.TaskID) {
	c.advance(id, 1)
}

func (c *controller) TaskFinished(_ context.Context, _ *controller, id psx.TaskID, err error) {
	c.advance(id, 2)
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var te *psx.TaskError
	switch {
	case !errors.As(err, &te):
		c.unexpected++
	case errors.Is(err, psx.ErrTaskAlreadyRun):
		c.repeated++
	case errors.Is(err, psx.ErrTaskPanic):
		c.panicked++
	case errors.Is(err, errSimulated):
		c.failed++
	default:
		c.unexpected++
	}
}

func (c *controller) TaskDropped(context.Context, *controller, psx.TaskID, psx.Task[*controller], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unexpected++
}

var errSimulated = errors.New("simulated failure")

func newTask(task *Task) psx.Task[*controller] {
	return psx.NewTask(func(ctx context.Context, tc psx.TaskCtx[*controller]) error {
		c := tc.Data()
		c.runs[task.ID].Add(1)
		n := c.concurrency.Add(1)
		defer c.concurrency.Add(-1)
		for {
			m := c.maxConcurrency.Load()
			if n <= m || c.maxConcurrency.CompareAndSwap(m, n) {
				break
			}
		}

		if err := executor.Sleep(ctx, task.SelfTime); err != nil {
			return err
		}

		for _, child := range task.Children {
			registerChild(ctx, tc, child)
		}

		switch task.Outcome {
		case Fail:
			return fmt.Errorf("%v: %w", task, errSimulated)
		case Panic:
			panic(fmt.Sprintf("%v panicked", task))
		}
		return nil
	})
}

func registerChild(ctx context.Context, tc psx.TaskCtx[*controller], child *Task) {
	pt := newTask(child)
	count := 1
	if child.Repeat {
		count = 2
	}
	switch child.Registration {
	case Register:
		for range count {
			tc.Register(ctx, pt)
		}
	case RegisterBlocking:
		for range count {
			tc.RegisterBlocking(pt)
		}
	case Held:
		release := tc.Hold()
		go func() {
			defer release()
			for range count {
				tc.RegisterBlocking(pt)
			}
		}()
	default:
		panic(fmt.Sprintf("unexpected registration %v for %v", child.Registration, child))
	}
}
