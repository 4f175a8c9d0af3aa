// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sim

import (
	"fmt"

	"pgregory.net/rapid"
)

type Plan struct {
	Workers int
	Roots   []*Task

	TaskCount   int
	ErrorCount  int
	PanicCount  int
	RepeatCount int
	MaxDepth    int
}

// RegistrationCount returns the number of registrations the plan makes,
// counting repeats.
func (p *Plan) RegistrationCount() int {
	return p.TaskCount + p.RepeatCount
}

// FailureCount returns the number of registrations expected to finish with
// an error.
func (p *Plan) FailureCount() int {
	return p.ErrorCount + p.PanicCount + p.RepeatCount
}

// Walk calls fn for every task in the plan, parents before children.
func (p *Plan) Walk(fn func(task *Task, depth int)) {
	var walk func(*Task, int)
	walk = func(task *Task, depth int) {
		fn(task, depth)
		for _, child := range task.Children {
			walk(child, depth+1)
		}
	}
	for _, root := range p.Roots {
		walk(root, 0)
	}
}

// Format implements fmt.Formatter; %#v prints the whole forest.
func (p *Plan) Format(f fmt.State, verb rune) {
	if verb != 'v' {
		panic("unsupported verb")
	}
	fmt.Fprintf(f, "Plan: %d tasks, %d workers", p.TaskCount, p.Workers)
	if f.Flag('#') {
		for _, root := range p.Roots {
			fmt.Fprintln(f)
			root.formatInternal(f, "  ")
		}
	}
}

// NewPlan draws a forest of simulated tasks.
func NewPlan(t *rapid.T, config *Config) *Plan {
	p := &Plan{
		Workers: config.Workers.Draw(t, "Workers"),
	}

	var newTask func(reg Registration, depth int) *Task
	newTask = func(reg Registration, depth int) *Task {
		id := p.TaskCount
		p.TaskCount++
		p.MaxDepth = max(p.MaxDepth, depth)
		name := fmt.Sprintf("Task#%d", id)

		task := &Task{
			ID:           id,
			Registration: reg,
			SelfTime:     config.SelfTime.Draw(t, name+".SelfTime"),
		}
		switch {
		case config.PanicProbability.Draw(t, name+".Panic"):
			task.Outcome = Panic
			p.PanicCount++
		case config.ErrorProbability.Draw(t, name+".Error"):
			task.Outcome = Fail
			p.ErrorCount++
		}
		if reg != Seed && config.RepeatProbability.Draw(t, name+".Repeat") {
			task.Repeat = true
			p.RepeatCount++
		}

		if depth >= config.MaxDepth {
			return task
		}
		childCount := config.Children.Draw(t, name+".ChildCount")
		for i := range childCount {
			if p.TaskCount >= config.MaxTasks {
				break
			}
			childName := fmt.Sprintf("%s.Child[%d]", name, i)
			childReg := Register
			switch {
			case config.HoldProbability.Draw(t, childName+".Held"):
				childReg = Held
			case config.BlockingProbability.Draw(t, childName+".Blocking"):
				childReg = RegisterBlocking
			}
			task.Children = append(task.Children, newTask(childReg, depth+1))
		}
		return task
	}

	rootCount := config.Roots.Draw(t, "RootCount")
	for range rootCount {
		p.Roots = append(p.Roots, newTask(Seed, 0))
	}
	return p
}
