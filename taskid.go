// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package psx

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
)

// TaskID identifies a task within the scope of the [IDSource] that issued it.
// IDs are for identification and observability only; their order says nothing
// about the order in which tasks run.
type TaskID uint64

func (id TaskID) String() string {
	return "#" + strconv.FormatUint(uint64(id), 10)
}

// An IDSource issues [TaskID] values starting at 1. It is safe for concurrent
// use. The zero value is ready to use.
//
// Each [Engine] has its own IDSource unless one is supplied with
// [WithIDSource], in which case IDs are unique across every engine sharing
// it.
type IDSource struct {
	last atomic.Uint64
}

func (s *IDSource) Next() TaskID {
	id := s.last.Add(1)
	if id == 0 {
		panic("task ID space exhausted")
	}
	return TaskID(id)
}

// RunID identifies a single call to [Engine.Run], [Engine.RunMany] or
// [Engine.RunSeq].
type RunID ulid.ULID

func newRunID() RunID {
	return RunID(ulid.Make())
}

func (id RunID) String() string {
	return ulid.ULID(id).String()
}

type runIDContextKeyType struct{}

var runIDContextKey any = runIDContextKeyType{}

func withRunID(ctx context.Context, id RunID) context.Context {
	return context.WithValue(ctx, runIDContextKey, id)
}

// RunIDFromContext returns the ID of the run whose tasks or delegates
// received ctx (or a context derived from it).
func RunIDFromContext(ctx context.Context) (RunID, bool) {
	id, ok := ctx.Value(runIDContextKey).(RunID)
	return id, ok
}
