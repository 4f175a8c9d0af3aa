// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otpsx

import (
	"context"
	"sync"

	psx "github.com/petenewcomb/psx-go"
)

// taskKey distinguishes tasks from different runs that may have been issued
// the same ID by different engines.
type taskKey struct {
	run psx.RunID
	id  psx.TaskID
}

func keyFor(ctx context.Context, id psx.TaskID) taskKey {
	run, _ := psx.RunIDFromContext(ctx)
	return taskKey{run: run, id: id}
}

// inFlight tracks a value per started task until the task finishes.
type inFlight[V any] struct {
	m sync.Map
}

func (f *inFlight[V]) start(ctx context.Context, id psx.TaskID, v V) {
	f.m.Store(keyFor(ctx, id), v)
}

func (f *inFlight[V]) finish(ctx context.Context, id psx.TaskID) (V, bool) {
	v, ok := f.m.LoadAndDelete(keyFor(ctx, id))
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}
