// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package state

// Counter tracks the number of tasks in a run's execution pool. It is not
// thread-safe: all calls must come from the goroutine driving the run, which
// is the only place pool membership changes.
type Counter int64

func (c *Counter) Increment() {
	*c++
}

// Decrement decrements the counter and returns true if its value has reached
// zero. Panics if the decremented counter is less than zero.
func (c *Counter) Decrement() bool {
	*c--
	if *c < 0 {
		panic("no tasks in pool")
	}
	return *c == 0
}

func (c *Counter) IsZero() bool {
	return *c == 0
}

func (c *Counter) Value() int {
	return int(*c)
}
