// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package timerp pools stopped timers for reuse.
package timerp

import (
	"sync"
	"time"
)

// This implementation relies on [Go 1.23+ behavior], under which Stop and
// Reset discard any stale value buffered in the timer's channel.
//
// [Go 1.23+ behavior]: https://pkg.go.dev/time#NewTimer

var pool = sync.Pool{
	New: func() any {
		t := time.NewTimer(time.Hour)
		t.Stop()
		return t
	},
}

// Get returns a timer that will fire once after d.
func Get(d time.Duration) *time.Timer {
	t := pool.Get().(*time.Timer)
	t.Reset(d)
	return t
}

// Put stops t and returns it to the pool. t must not be used afterward.
func Put(t *time.Timer) {
	t.Stop()
	pool.Put(t)
}
