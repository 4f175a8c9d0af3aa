// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"fmt"
	"time"
)

// Registration says how a parent hands a simulated task to the engine.
type Registration int

const (
	Seed Registration = iota
	Register
	RegisterBlocking
	// Held registers from a goroutine that outlives the parent, which keeps
	// the run open with TaskCtx.Hold.
	Held
)

func (r Registration) String() string {
	switch r {
	case Seed:
		return "seed"
	case Register:
		return "register"
	case RegisterBlocking:
		return "register-blocking"
	case Held:
		return "held"
	default:
		return fmt.Sprintf("Registration(%d)", int(r))
	}
}

type Outcome int

const (
	Succeed Outcome = iota
	Fail
	Panic
)

func (o Outcome) String() string {
	switch o {
	case Succeed:
		return "succeed"
	case Fail:
		return "fail"
	case Panic:
		return "panic"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Task represents a simulated task and the children it registers.
type Task struct {
	ID           int
	Registration Registration
	// Repeat means the task value is registered twice; the second
	// registration must fail without running the task again.
	Repeat   bool
	SelfTime time.Duration
	Outcome  Outcome
	Children []*Task
}

// Format implements fmt.Formatter for pretty-printing a task hierarchy with
// the %#v verb.
func (t *Task) Format(f fmt.State, verb rune) {
	if verb != 'v' {
		panic("unsupported verb")
	}
	if f.Flag('#') {
		t.formatInternal(f, "")
	} else {
		fmt.Fprintf(f, "Task#%d", t.ID)
	}
}

func (t *Task) formatInternal(f fmt.State, indent string) {
	fmt.Fprintf(f, "%sTask#%d: %v self time, %v, %v", indent, t.ID, t.SelfTime, t.Registration, t.Outcome)
	if t.Repeat {
		fmt.Fprint(f, ", repeated")
	}
	for _, child := range t.Children {
		fmt.Fprintln(f)
		child.formatInternal(f, indent+"  ")
	}
}
