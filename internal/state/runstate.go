// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package state

import (
	"sync/atomic"
)

// Stage represents the possible stages in a run's lifecycle.
type Stage int32

const (
	// StageAwaiting indicates that registrations are still possible and
	// either source may yield the next event.
	StageAwaiting Stage = iota
	// StageDraining indicates that no further registrations are possible but
	// the execution pool still has tasks in flight.
	StageDraining
	// StageTerminal indicates that registrations are closed and the pool is
	// empty.
	StageTerminal
)

func (s Stage) String() string {
	switch s {
	case StageAwaiting:
		return "awaiting"
	case StageDraining:
		return "draining"
	case StageTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// RunState encapsulates the termination bookkeeping of a single run. Pool
// membership and the closed flag are checked together, so that a momentarily
// empty pool never ends a run while registrations remain possible, and a
// closed registration queue never ends a run while tasks are still in flight.
//
// Mutating methods must be called from the goroutine driving the run. Stage
// may be called from any goroutine.
type RunState struct {
	currentStage atomic.Int32 // Contains a Stage value
	inPool       Counter
	closed       bool

	// OnTransition, if non-nil, is called after every stage change.
	OnTransition func(from, to Stage)
}

// Accept records that a task has joined the execution pool.
func (rs *RunState) Accept() {
	if rs.closed {
		panic("task accepted after registrations closed")
	}
	rs.inPool.Increment()
}

// Complete records that a task has left the execution pool and advances to
// StageTerminal if it was the last one and registrations are closed.
func (rs *RunState) Complete() {
	if rs.inPool.Decrement() && rs.closed {
		rs.transition(StageDraining, StageTerminal)
	}
}

// Close records that no further registrations are possible. Calling it more
// than once has no additional effect.
func (rs *RunState) Close() {
	if rs.closed {
		return
	}
	rs.closed = true
	rs.transition(StageAwaiting, StageDraining)
	if rs.inPool.IsZero() {
		rs.transition(StageDraining, StageTerminal)
	}
}

// Done returns true once the run has reached StageTerminal.
func (rs *RunState) Done() bool {
	return rs.Stage() == StageTerminal
}

func (rs *RunState) Stage() Stage {
	return Stage(rs.currentStage.Load())
}

// InPool returns the number of tasks currently in the execution pool.
func (rs *RunState) InPool() int {
	return rs.inPool.Value()
}

func (rs *RunState) transition(from, to Stage) {
	if rs.currentStage.CompareAndSwap(int32(from), int32(to)) && rs.OnTransition != nil {
		rs.OnTransition(from, to)
	}
}
