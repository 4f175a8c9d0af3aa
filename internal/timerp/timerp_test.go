// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package timerp_test

import (
	"testing"
	"time"

	"github.com/petenewcomb/psx-go/internal/timerp"
	"github.com/stretchr/testify/require"
)

func TestTimerFiresAfterReuse(t *testing.T) {
	chk := require.New(t)

	// A timer returned before firing must not leak its pending expiry into
	// the next user.
	t1 := timerp.Get(time.Millisecond)
	timerp.Put(t1)

	t2 := timerp.Get(50 * time.Millisecond)
	defer timerp.Put(t2)
	select {
	case <-t2.C:
		chk.Fail("timer fired early")
	case <-time.After(10 * time.Millisecond):
	}

	select {
	case <-t2.C:
	case <-time.After(time.Second):
		chk.Fail("timer did not fire")
	}
}
