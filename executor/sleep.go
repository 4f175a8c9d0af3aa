// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package executor

import (
	"context"
	"time"

	"github.com/petenewcomb/psx-go/internal/timerp"
)

// Sleep pauses for d or until ctx is canceled, whichever comes first, and
// returns the context's error in the latter case.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := timerp.Get(d)
	defer timerp.Put(t)
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
