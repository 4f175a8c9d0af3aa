// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package psx

import (
	"context"
)

// A Delegate observes the life cycle of the tasks in a run. For each task,
// TaskRegistered is called before TaskStarted, which is called before
// TaskFinished. Notifications for different tasks may interleave in any way
// and TaskStarted is called from the task's own goroutine, so
// implementations must be safe for concurrent use.
//
// The data argument is the run's data value. The context carries the run's
// [RunID] and is canceled if the run is abandoned.
//
// Delegates cannot influence scheduling and have no way to report errors.
// Failures within a delegate must be handled by the delegate itself.
type Delegate[C any] interface {
	TaskRegistered(ctx context.Context, data C, id TaskID, task Task[C])
	TaskStarted(ctx context.Context, data C, id TaskID)

	// TaskFinished receives nil if the task succeeded, or else a *TaskError
	// wrapping the task's error.
	TaskFinished(ctx context.Context, data C, id TaskID, err error)
}

// A DropObserver is a [Delegate] that also wants to learn of registrations
// that were dropped instead of joining the run, either because the run no
// longer accepted registrations ([ErrRegistrationClosed]) or because the
// context passed to [TaskCtx.Register] was done. A dropped task is never
// passed to the other Delegate methods. TaskDropped may be called from any
// goroutine.
type DropObserver[C any] interface {
	TaskDropped(ctx context.Context, data C, id TaskID, task Task[C], err error)
}

// NopDelegate ignores all notifications.
type NopDelegate[C any] struct{}

func (NopDelegate[C]) TaskRegistered(context.Context, C, TaskID, Task[C]) {}
func (NopDelegate[C]) TaskStarted(context.Context, C, TaskID)             {}
func (NopDelegate[C]) TaskFinished(context.Context, C, TaskID, error)     {}

// DelegateFuncs is a [Delegate] and [DropObserver] that calls whichever of
// its function fields are non-nil.
type DelegateFuncs[C any] struct {
	RegisteredFunc func(ctx context.Context, data C, id TaskID, task Task[C])
	StartedFunc    func(ctx context.Context, data C, id TaskID)
	FinishedFunc   func(ctx context.Context, data C, id TaskID, err error)
	DroppedFunc    func(ctx context.Context, data C, id TaskID, task Task[C], err error)
}

func (d DelegateFuncs[C]) TaskRegistered(ctx context.Context, data C, id TaskID, task Task[C]) {
	if d.RegisteredFunc != nil {
		d.RegisteredFunc(ctx, data, id, task)
	}
}

func (d DelegateFuncs[C]) TaskStarted(ctx context.Context, data C, id TaskID) {
	if d.StartedFunc != nil {
		d.StartedFunc(ctx, data, id)
	}
}

func (d DelegateFuncs[C]) TaskFinished(ctx context.Context, data C, id TaskID, err error) {
	if d.FinishedFunc != nil {
		d.FinishedFunc(ctx, data, id, err)
	}
}

func (d DelegateFuncs[C]) TaskDropped(ctx context.Context, data C, id TaskID, task Task[C], err error) {
	if d.DroppedFunc != nil {
		d.DroppedFunc(ctx, data, id, task, err)
	}
}

// Delegates combines several delegates into one that notifies each of them in
// the order given. Nil entries are skipped. Drops are forwarded to those that
// implement [DropObserver].
func Delegates[C any](delegates ...Delegate[C]) Delegate[C] {
	var md multiDelegate[C]
	for _, d := range delegates {
		if d != nil {
			md = append(md, d)
		}
	}
	return md
}

type multiDelegate[C any] []Delegate[C]

func (md multiDelegate[C]) TaskRegistered(ctx context.Context, data C, id TaskID, task Task[C]) {
	for _, d := range md {
		d.TaskRegistered(ctx, data, id, task)
	}
}

func (md multiDelegate[C]) TaskStarted(ctx context.Context, data C, id TaskID) {
	for _, d := range md {
		d.TaskStarted(ctx, data, id)
	}
}

func (md multiDelegate[C]) TaskFinished(ctx context.Context, data C, id TaskID, err error) {
	for _, d := range md {
		d.TaskFinished(ctx, data, id, err)
	}
}

func (md multiDelegate[C]) TaskDropped(ctx context.Context, data C, id TaskID, task Task[C], err error) {
	for _, d := range md {
		if do, ok := d.(DropObserver[C]); ok {
			do.TaskDropped(ctx, data, id, task, err)
		}
	}
}
