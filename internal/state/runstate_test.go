// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package state

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRunState_ZeroValue(t *testing.T) {
	chk := require.New(t)
	var rs RunState
	chk.Equal(StageAwaiting, rs.Stage())
	chk.False(rs.Done())
	chk.Equal(0, rs.InPool())
}

func TestRunState_EmptyPoolDoesNotTerminateWhileOpen(t *testing.T) {
	chk := require.New(t)
	var rs RunState

	rs.Accept()
	rs.Complete()

	// The pool is empty but registrations are still possible.
	chk.Equal(StageAwaiting, rs.Stage())
	chk.False(rs.Done())
}

func TestRunState_CloseWithTasksInFlightDrains(t *testing.T) {
	chk := require.New(t)
	var transitions []string
	rs := RunState{
		OnTransition: func(from, to Stage) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	}

	rs.Accept()
	rs.Accept()
	rs.Close()
	chk.Equal(StageDraining, rs.Stage())

	rs.Complete()
	chk.Equal(StageDraining, rs.Stage())

	rs.Complete()
	chk.True(rs.Done())
	chk.Equal([]string{"awaiting->draining", "draining->terminal"}, transitions)
}

func TestRunState_CloseWithEmptyPoolTerminates(t *testing.T) {
	chk := require.New(t)
	var rs RunState
	rs.Close()
	chk.True(rs.Done())

	// Idempotent
	rs.Close()
	chk.True(rs.Done())
}

func TestRunState_AcceptAfterClosePanics(t *testing.T) {
	chk := require.New(t)
	var rs RunState
	rs.Accept()
	rs.Close()
	chk.PanicsWithValue("task accepted after registrations closed", func() {
		rs.Accept()
	})
}

func TestRunState_CompleteUnderflowPanics(t *testing.T) {
	chk := require.New(t)
	var rs RunState
	chk.PanicsWithValue("no tasks in pool", func() {
		rs.Complete()
	})
}

// TestRunStateWithRapid checks that a run is terminal exactly when it has been
// closed and every accepted task has completed.
func TestRunStateWithRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var rs RunState
		inPool := 0
		closed := false

		t.Repeat(map[string]func(*rapid.T){
			"accept": func(t *rapid.T) {
				if closed {
					t.Skip("closed")
				}
				rs.Accept()
				inPool++
			},
			"complete": func(t *rapid.T) {
				if inPool == 0 {
					t.Skip("pool is empty")
				}
				rs.Complete()
				inPool--
			},
			"close": func(t *rapid.T) {
				rs.Close()
				closed = true
			},
			"": func(t *rapid.T) {
				require.Equal(t, inPool, rs.InPool())
				require.Equal(t, closed && inPool == 0, rs.Done())
				if closed && inPool > 0 {
					require.Equal(t, StageDraining, rs.Stage())
				}
				if !closed {
					require.Equal(t, StageAwaiting, rs.Stage())
				}
			},
		})
	})
}
