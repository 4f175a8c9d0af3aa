// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package executor

import "github.com/petenewcomb/psx-go/internal/cerr"

// ErrAborted is returned by [Handle.Wait] when the work was aborted before it
// completed.
const ErrAborted = cerr.Error("aborted")

// ErrPanic is wrapped by the error returned from [Handle.Wait] when the
// spawned function panicked.
const ErrPanic = cerr.Error("spawned function panicked")

// ErrClosed is returned by [Handle.Wait] for work that was still pending when
// its [Scheduler] was closed.
const ErrClosed = cerr.Error("scheduler closed")
