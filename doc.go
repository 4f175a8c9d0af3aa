// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package psx runs self-expanding sets of tasks. An [Engine] is seeded with
// one or more tasks and a data value; while a task runs it may register
// further tasks, which join the same run. A run ends when no task is in flight
// and no further registration is possible.
//
// Tasks run concurrently, each in its own goroutine launched through an
// [executor.Executor], while the bookkeeping that accepts registrations and
// records completions happens sequentially in the goroutine that called
// [Engine.Run]. That goroutine is the only consumer of the run's registration
// queue; every running task holds a reference to the queue's sending side
// through its [TaskCtx], and the run can only end once the last such reference
// has been released and the execution pool is empty. Checking either
// condition on its own would be wrong: an empty pool may be refilled by a
// registration that is already on its way, and a closed queue says nothing
// about tasks still running.
//
// Each task receives its own copy of the run's data value via
// [TaskCtx.Data]. Changes a task makes to its copy are not visible to other
// tasks, so any state that tasks share must be reachable through a pointer
// (or other reference) in the data value and must synchronize itself.
//
// IMPORTANT: task failures do not fail the run. [Engine.Run] returns an error
// only when its context is canceled. Errors returned by tasks, including
// recovered panics, are reported solely through the [Delegate] passed to
// [NewEngine]. An engine created without a delegate therefore reports
// success no matter how many of its tasks failed.
//
// Delegates observe three points in the life of every task: registration,
// start, and finish. For any one task these are always observed in that
// order. There is no ordering between the notifications of different tasks.
// The [github.com/petenewcomb/psx-go/otpsx] package provides delegates for
// logging, tracing, and metrics.
package psx
