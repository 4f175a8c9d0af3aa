// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package psx

import (
	"context"
	"sync/atomic"
)

// A Task is a unit of work executed once by an [Engine]. The context passed
// to Run is canceled if the run is abandoned (see [Engine.Run]). The [TaskCtx]
// gives access to the run's data and allows the task to register further
// tasks.
//
// Run is called in its own goroutine and may block. A non-nil error is
// reported to the engine's [Delegate] and affects nothing else; a panic is
// recovered and reported as an error wrapping [ErrTaskPanic].
//
// The engine calls Run at most once per registration. A value that should
// never run more than once, even if registered again, can be wrapped with
// [Once]; tasks created with [NewTask] are already guarded this way.
type Task[C any] interface {
	Run(ctx context.Context, tc TaskCtx[C]) error
}

// A TaskFunc is the function form of [Task.Run], as accepted by [NewTask].
type TaskFunc[C any] = func(ctx context.Context, tc TaskCtx[C]) error

// FuncTask adapts a [TaskFunc] to the [Task] interface. It runs at most once;
// subsequent calls to Run return [ErrTaskAlreadyRun] without calling the
// function.
type FuncTask[C any] struct {
	fn  TaskFunc[C]
	ran atomic.Bool
}

// NewTask returns a single-shot [Task] that calls fn.
func NewTask[C any](fn func(ctx context.Context, tc TaskCtx[C]) error) *FuncTask[C] {
	if fn == nil {
		panic("task function must be non-nil")
	}
	return &FuncTask[C]{fn: fn}
}

func (t *FuncTask[C]) Run(ctx context.Context, tc TaskCtx[C]) error {
	if t.ran.Swap(true) {
		return ErrTaskAlreadyRun
	}
	return t.fn(ctx, tc)
}

// Once wraps task so that it runs at most once no matter how many times the
// returned value is registered. Later runs return [ErrTaskAlreadyRun].
func Once[C any](task Task[C]) Task[C] {
	switch task.(type) {
	case nil:
		panic("task must be non-nil")
	case *FuncTask[C], *onceTask[C]:
		return task
	}
	return &onceTask[C]{task: task}
}

type onceTask[C any] struct {
	task Task[C]
	ran  atomic.Bool
}

func (t *onceTask[C]) Run(ctx context.Context, tc TaskCtx[C]) error {
	if t.ran.Swap(true) {
		return ErrTaskAlreadyRun
	}
	return t.task.Run(ctx, tc)
}

// Unwrap returns the task passed to [Once].
func (t *onceTask[C]) Unwrap() Task[C] {
	return t.task
}

// alreadyRun stands in for a task instance that a run has accepted before.
type alreadyRun[C any] struct{}

func (alreadyRun[C]) Run(context.Context, TaskCtx[C]) error {
	return ErrTaskAlreadyRun
}
