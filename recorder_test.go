// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package psx_test

import (
	"context"
	"fmt"
	"sync"

	psx "github.com/petenewcomb/psx-go"
)

type eventKind int

const (
	registered eventKind = iota
	started
	finished
	dropped
)

func (k eventKind) String() string {
	switch k {
	case registered:
		return "registered"
	case started:
		return "started"
	case finished:
		return "finished"
	case dropped:
		return "dropped"
	default:
		return fmt.Sprintf("eventKind(%d)", int(k))
	}
}

type event struct {
	kind eventKind
	id   psx.TaskID
	err  error
}

// recorder is a Delegate and DropObserver that remembers every notification
// in the order received.
type recorder[C any] struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder[C]) add(e event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder[C]) TaskRegistered(_ context.Context, _ C, id psx.TaskID, _ psx.Task[C]) {
	r.add(event{kind: registered, id: id})
}

func (r *recorder[C]) TaskStarted(_ context.Context, _ C, id psx.TaskID) {
	r.add(event{kind: started, id: id})
}

func (r *recorder[C]) TaskFinished(_ context.Context, _ C, id psx.TaskID, err error) {
	r.add(event{kind: finished, id: id, err: err})
}

func (r *recorder[C]) TaskDropped(_ context.Context, _ C, id psx.TaskID, _ psx.Task[C], err error) {
	r.add(event{kind: dropped, id: id, err: err})
}

func (r *recorder[C]) snapshot() []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event(nil), r.events...)
}

func (r *recorder[C]) count(kind eventKind) int {
	n := 0
	for _, e := range r.snapshot() {
		if e.kind == kind {
			n++
		}
	}
	return n
}

func (r *recorder[C]) errors() []error {
	var errs []error
	for _, e := range r.snapshot() {
		if e.kind == finished && e.err != nil {
			errs = append(errs, e.err)
		}
	}
	return errs
}

// checkLifecycles verifies that every task that joined the run was
// registered, started and finished exactly once, in that order, and returns
// the number of such tasks.
func (r *recorder[C]) checkLifecycles() (int, error) {
	type seen struct{ registered, started, finished int }
	positions := map[psx.TaskID]*seen{}
	for i, e := range r.snapshot() {
		if e.kind == dropped {
			continue
		}
		s := positions[e.id]
		if s == nil {
			if e.kind != registered {
				return 0, fmt.Errorf("task %v %v before registration", e.id, e.kind)
			}
			s = &seen{registered: i, started: -1, finished: -1}
			positions[e.id] = s
			continue
		}
		switch e.kind {
		case registered:
			return 0, fmt.Errorf("task %v registered twice", e.id)
		case started:
			if s.started >= 0 {
				return 0, fmt.Errorf("task %v started twice", e.id)
			}
			s.started = i
		case finished:
			if s.started < 0 {
				return 0, fmt.Errorf("task %v finished before starting", e.id)
			}
			if s.finished >= 0 {
				return 0, fmt.Errorf("task %v finished twice", e.id)
			}
			s.finished = i
		}
	}
	for id, s := range positions {
		if s.finished < 0 {
			return 0, fmt.Errorf("task %v never finished", id)
		}
	}
	return len(positions), nil
}
