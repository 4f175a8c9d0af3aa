// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otpsx_test

import (
	"context"
	"errors"
	"testing"
	"time"

	psx "github.com/petenewcomb/psx-go"
)

var errBoom = errors.New("boom")

func succeed() psx.Task[int] {
	return psx.NewTask(func(context.Context, psx.TaskCtx[int]) error { return nil })
}

func fail() psx.Task[int] {
	return psx.NewTask(func(context.Context, psx.TaskCtx[int]) error { return errBoom })
}

func explode() psx.Task[int] {
	return psx.NewTask(func(context.Context, psx.TaskCtx[int]) error { panic("kaboom") })
}

// mixedRun runs a root task that registers the given children plus one
// registration with an already canceled context, which is dropped.
func mixedRun(engine *psx.Engine[int], children ...psx.Task[int]) error {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	return engine.Run(context.Background(), 0, psx.NewTask(func(ctx context.Context, tc psx.TaskCtx[int]) error {
		for _, child := range children {
			tc.Register(ctx, child)
		}
		tc.Register(canceled, succeed())
		return nil
	}))
}

// abandonedRun cancels a run while its only task is blocked, and lets the
// task return once the run has been abandoned.
func abandonedRun(engine *psx.Engine[int]) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	release := make(chan struct{})
	defer close(release)
	return engine.Run(ctx, 0, psx.NewTask(func(context.Context, psx.TaskCtx[int]) error {
		cancel()
		<-release
		return nil
	}))
}

// waitFor polls cond on the test goroutine until it holds or a second passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}
