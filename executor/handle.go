// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package executor

import (
	"context"
	"fmt"
	"sync/atomic"
)

// A Handle refers to a function launched with [Spawn], [SpawnBlocking] or
// [After] and provides access to its result.
//
// Dropping a Handle does not affect the function; [Handle.Detach] exists to
// make that intent explicit at call sites.
type Handle[T any] struct {
	cancel  context.CancelFunc
	done    chan struct{}
	aborted atomic.Bool
	value   T
	err     error
}

// Spawn launches fn via [Executor.Go] and returns a handle to its result. The
// context passed to fn is derived from ctx and is canceled by
// [Handle.Abort]. A panic in fn is recovered and reported by [Handle.Wait] as
// an error wrapping [ErrPanic].
func Spawn[T any](ctx context.Context, ex Executor, fn func(context.Context) (T, error)) *Handle[T] {
	h, ctx := newHandle[T](ctx)
	ex.Go(ctx, func(ctx context.Context) { h.run(ctx, fn) })
	return h
}

// SpawnBlocking is like [Spawn] but launches fn via [Executor.GoBlocking].
func SpawnBlocking[T any](ctx context.Context, ex Executor, fn func(context.Context) (T, error)) *Handle[T] {
	h, ctx := newHandle[T](ctx)
	ex.GoBlocking(ctx, func(ctx context.Context) { h.run(ctx, fn) })
	return h
}

// BlockOn launches fn via [Executor.Go] and waits for its result. If ctx is
// canceled first, the work is aborted and the context's error returned.
func BlockOn[T any](ctx context.Context, ex Executor, fn func(context.Context) (T, error)) (T, error) {
	h := Spawn(ctx, ex, fn)
	v, err := h.Wait(ctx)
	if ctx.Err() != nil {
		h.Abort()
	}
	return v, err
}

func newHandle[T any](ctx context.Context) (*Handle[T], context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	return &Handle[T]{
		cancel: cancel,
		done:   make(chan struct{}),
	}, ctx
}

func (h *Handle[T]) run(ctx context.Context, fn func(context.Context) (T, error)) {
	defer close(h.done)
	defer h.cancel()
	defer func() {
		if r := recover(); r != nil {
			h.err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	if h.aborted.Load() {
		h.err = ErrAborted
		return
	}
	if err := ctx.Err(); err != nil {
		h.err = fmt.Errorf("%w: %w", ErrAborted, err)
		return
	}

	v, err := fn(ctx)
	if h.aborted.Load() {
		h.err = ErrAborted
		return
	}
	h.value, h.err = v, err
}

// Abort cancels the context passed to the function. If the function has not
// started, it will not be called. Either way, unless the function had
// already returned, [Handle.Wait] will report [ErrAborted]. Abort has no
// effect on a finished handle.
func (h *Handle[T]) Abort() {
	if h.IsFinished() {
		return
	}
	h.aborted.Store(true)
	h.cancel()
}

// IsFinished reports whether the function has returned (or was skipped
// because of an abort).
func (h *Handle[T]) IsFinished() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Detach releases the caller's interest in the result. The function keeps
// running.
func (h *Handle[T]) Detach() {}

// Done returns a channel that is closed once the function has finished.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the function has finished or ctx is canceled. It returns
// the function's result, or [ErrAborted], an error wrapping [ErrPanic], or
// the context's error.
func (h *Handle[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
