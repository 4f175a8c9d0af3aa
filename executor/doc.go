// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package executor provides the goroutine-launching layer used by
// [github.com/petenewcomb/psx-go] engines and by the tasks they run.
//
// An [Executor] launches functions asynchronously without ever blocking the
// caller on capacity. Two kinds of work are distinguished: ordinary work
// launched with [Executor.Go] and work expected to block on I/O or system
// calls launched with [Executor.GoBlocking]. [Goroutines] runs everything in
// fresh goroutines; a [Pool] bounds each kind of work separately and queues
// the overflow.
//
// [Spawn], [SpawnBlocking] and [BlockOn] layer result-bearing [Handle] values
// over any Executor, and a [Scheduler] delays launches until a deadline. A
// task that needs to race a timer against its context can use [Sleep].
package executor
