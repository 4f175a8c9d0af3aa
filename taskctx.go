// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package psx

import (
	"context"
	"sync"

	"github.com/petenewcomb/psx-go/executor"
)

// A TaskCtx is passed to every running [Task]. It carries the task's own copy
// of the run's data and a reference to the run's registration queue, through
// which the task may add tasks to the run.
//
// Registration is fire-and-forget: the registering task does not learn the
// outcome of the task it registered. Only the engine's [Delegate] does.
//
// A TaskCtx is cheap to copy, and copies may be used from any goroutine.
// The run stays open for registrations at least until the task that received
// the TaskCtx returns; use [TaskCtx.Hold] to keep it open longer.
type TaskCtx[C any] struct {
	data C
	id   TaskID
	r    *run[C]
}

// Data returns the task's copy of the run's data value.
func (tc TaskCtx[C]) Data() C {
	return tc.data
}

// ID returns the ID of the task that received this TaskCtx.
func (tc TaskCtx[C]) ID() TaskID {
	return tc.id
}

// RunID returns the ID of the run the task belongs to.
func (tc TaskCtx[C]) RunID() RunID {
	return tc.r.id
}

// Executor returns the executor the engine launches tasks with, for
// offloading blocking work via [executor.SpawnBlocking] and friends.
func (tc TaskCtx[C]) Executor() executor.Executor {
	return tc.r.e.exec
}

// Register adds task to the run. It never blocks. If ctx is already done, or
// if the run no longer accepts registrations, the task is dropped: it is
// logged, passed to the delegate if that implements [DropObserver], and
// otherwise ignored.
func (tc TaskCtx[C]) Register(ctx context.Context, task Task[C]) {
	tc.r.register(ctx, tc.id, task)
}

// RegisterBlocking adds task to the run from a call site that has no context,
// such as a callback invoked by code outside the task's control. It is
// otherwise identical to [TaskCtx.Register].
func (tc TaskCtx[C]) RegisterBlocking(task Task[C]) {
	tc.r.register(nil, tc.id, task)
}

// Hold keeps the run open for registrations until the returned function is
// called, even after the task that received this TaskCtx has returned. This is
// needed when a task hands its TaskCtx to work that outlives it. The returned
// function is idempotent. If the run has already closed, Hold returns a no-op.
func (tc TaskCtx[C]) Hold() (release func()) {
	if !tc.r.queue.Acquire() {
		return func() {}
	}
	return sync.OnceFunc(tc.r.queue.Release)
}

type taskRequest[C any] struct {
	id     TaskID
	parent TaskID
	task   Task[C]
}
