// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package psx_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	psx "github.com/petenewcomb/psx-go"
	"github.com/stretchr/testify/require"
)

func TestNewTaskNilPanics(t *testing.T) {
	chk := require.New(t)
	chk.PanicsWithValue("task function must be non-nil", func() {
		_ = psx.NewTask[int](nil)
	})
	chk.PanicsWithValue("task must be non-nil", func() {
		_ = psx.Once[int](nil)
	})
}

func TestFuncTaskRunsOnce(t *testing.T) {
	chk := require.New(t)
	ctx := context.Background()

	calls := 0
	task := psx.NewTask(func(context.Context, psx.TaskCtx[int]) error {
		calls++
		return nil
	})
	chk.NoError(task.Run(ctx, psx.TaskCtx[int]{}))
	chk.ErrorIs(task.Run(ctx, psx.TaskCtx[int]{}), psx.ErrTaskAlreadyRun)
	chk.Equal(1, calls)
}

func TestOnceUnwrap(t *testing.T) {
	chk := require.New(t)
	inner := &countingTask{}
	once := psx.Once[int](inner)
	u, ok := once.(interface{ Unwrap() psx.Task[int] })
	chk.True(ok)
	chk.Same(inner, u.Unwrap())

	fn := psx.NewTask(func(context.Context, psx.TaskCtx[int]) error { return nil })
	chk.Same(fn, psx.Once[int](fn))
}

func TestTaskError(t *testing.T) {
	chk := require.New(t)
	inner := errors.New("inner")

	te := psx.NewTaskError(inner)
	chk.Equal("inner", te.Error())
	chk.ErrorIs(te, inner)
	chk.Same(te, psx.NewTaskError(te))
	chk.Same(te, psx.NewTaskError(fmt.Errorf("wrapped: %w", te)))

	chk.PanicsWithValue("task error must be non-nil", func() {
		_ = psx.NewTaskError(nil)
	})
}

func TestTaskIDString(t *testing.T) {
	require.Equal(t, "#42", psx.TaskID(42).String())
}

func TestIDSourceConcurrentUniqueness(t *testing.T) {
	chk := require.New(t)
	var ids psx.IDSource
	const goroutines, perGoroutine = 8, 1000

	var mu sync.Mutex
	seen := make(map[psx.TaskID]bool, goroutines*perGoroutine)
	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]psx.TaskID, 0, perGoroutine)
			for range perGoroutine {
				local = append(local, ids.Next())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range local {
				seen[id] = true
			}
		}()
	}
	wg.Wait()
	chk.Len(seen, goroutines*perGoroutine)
	chk.False(seen[0])
	chk.Equal(psx.TaskID(goroutines*perGoroutine+1), ids.Next())
}

func TestRunIDFromContext(t *testing.T) {
	_, ok := psx.RunIDFromContext(context.Background())
	require.False(t, ok)
}
