// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package executor

import (
	"context"
)

// An Executor launches functions asynchronously. Neither method may block the
// caller waiting for capacity: implementations that limit concurrency must
// queue the excess instead. This is what allows an engine's single
// coordinating goroutine to launch tasks without risking deadlock against
// tasks that are waiting to report completion to it.
//
// The context is passed through to fn unchanged. Executors do not recover
// panics raised by fn; see [Spawn] for a variant that does.
type Executor interface {
	Go(ctx context.Context, fn func(context.Context))
	GoBlocking(ctx context.Context, fn func(context.Context))
}

// Goroutines is an unbounded [Executor] that runs every function in a new
// goroutine. The zero value is ready to use.
type Goroutines struct{}

func (Goroutines) Go(ctx context.Context, fn func(context.Context)) {
	go fn(ctx)
}

func (Goroutines) GoBlocking(ctx context.Context, fn func(context.Context)) {
	go fn(ctx)
}
