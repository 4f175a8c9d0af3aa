// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sync/atomic"
	"time"

	psx "github.com/petenewcomb/psx-go"
	"github.com/petenewcomb/psx-go/executor"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"
)

// walkState is the data value shared by every task of a walk. Each task
// receives a copy of the pointer, so the counters are shared.
type walkState struct {
	fsys     fs.FS
	maxDepth int

	dirs   atomic.Int64
	files  atomic.Int64
	bytes  atomic.Int64
	failed atomic.Int64
}

func newWalkState(fsys fs.FS, maxDepth int) *walkState {
	return &walkState{fsys: fsys, maxDepth: maxDepth}
}

// newDirTask returns a task that reads dir, tallies its regular files and
// registers a task for each subdirectory within the depth limit.
func newDirTask(dir string, depth int) psx.Task[*walkState] {
	return psx.NewTask(func(ctx context.Context, tc psx.TaskCtx[*walkState]) error {
		st := tc.Data()
		entries, err := executor.SpawnBlocking(ctx, tc.Executor(),
			func(context.Context) ([]fs.DirEntry, error) {
				return fs.ReadDir(st.fsys, dir)
			},
		).Wait(ctx)
		if err != nil {
			return fmt.Errorf("reading %s: %w", dir, err)
		}
		st.dirs.Add(1)

		for _, entry := range entries {
			name := path.Join(dir, entry.Name())
			if entry.IsDir() {
				if st.maxDepth < 0 || depth < st.maxDepth {
					tc.Register(ctx, newDirTask(name, depth+1))
				}
				continue
			}
			if !entry.Type().IsRegular() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				// Removed since listed.
				continue
			}
			st.files.Add(1)
			st.bytes.Add(info.Size())
		}
		return nil
	})
}

// failureCounter tallies the directories that could not be read.
var failureCounter = psx.DelegateFuncs[*walkState]{
	FinishedFunc: func(_ context.Context, st *walkState, _ psx.TaskID, err error) {
		if err != nil {
			st.failed.Add(1)
		}
	},
}

func scheduleProgress(ctx context.Context, s *executor.Scheduler, every time.Duration, st *walkState, logger *zap.Logger) {
	// The next report derives from ctx, not from the context of this one,
	// which is canceled as soon as this report returns.
	executor.After(ctx, s, every, func(context.Context) (struct{}, error) {
		logger.Info("Walk progress",
			zap.Int64("dirs", st.dirs.Load()),
			zap.Int64("files", st.files.Load()))
		scheduleProgress(ctx, s, every, st, logger)
		return struct{}{}, nil
	}).Detach()
}

type summary struct {
	Dirs   int64
	Files  int64
	Bytes  int64
	Failed int64
}

func (st *walkState) summary() summary {
	return summary{
		Dirs:   st.dirs.Load(),
		Files:  st.files.Load(),
		Bytes:  st.bytes.Load(),
		Failed: st.failed.Load(),
	}
}

func (s summary) write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "dirs: %d\nfiles: %d\nbytes: %d\nfailed: %d\n",
		s.Dirs, s.Files, s.Bytes, s.Failed)
	return err
}

func writeMetrics(w io.Writer, families []*dto.MetricFamily) error {
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}
