// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package executor

import (
	"cmp"
	"context"
	"sync"
	"time"

	"github.com/addrummond/heap"
	"github.com/petenewcomb/psx-go/internal/timerp"
)

// A Scheduler holds launches back until their deadlines and then hands them to
// an [Executor]. It runs a single background goroutine, which is stopped by
// [Scheduler.Close].
type Scheduler struct {
	ex      Executor
	mu      sync.Mutex
	entries heap.Heap[delayed, heap.Min]
	pending int
	seq     uint64
	closed  bool
	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}
}

type delayed struct {
	at     time.Time
	seq    uint64
	launch func()
	abort  func()
}

// Deadlines are ordered first by time and then by submission order so that
// work scheduled for the same instant launches FIFO.
func (a *delayed) Cmp(b *delayed) int {
	if c := a.at.Compare(b.at); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

// NewScheduler creates a [Scheduler] that launches due work on ex.
func NewScheduler(ex Executor) *Scheduler {
	s := &Scheduler{
		ex:   ex,
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.loop()
	return s
}

// After launches fn via [Executor.Go] once d has elapsed. The returned handle
// behaves like one returned by [Spawn]; aborting it before the deadline means
// fn is never called. If the scheduler is closed before the deadline,
// [Handle.Wait] reports [ErrClosed].
func After[T any](ctx context.Context, s *Scheduler, d time.Duration, fn func(context.Context) (T, error)) *Handle[T] {
	h, ctx := newHandle[T](ctx)
	s.add(time.Now().Add(d),
		func() {
			s.ex.Go(ctx, func(ctx context.Context) { h.run(ctx, fn) })
		},
		func() {
			h.aborted.Store(true)
			h.err = ErrClosed
			h.cancel()
			close(h.done)
		},
	)
	return h
}

// Pending returns the number of launches still waiting for their deadlines.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Close stops the scheduler. Launches still waiting for their deadlines are
// abandoned and their handles report [ErrClosed]. Close waits for the
// background goroutine to exit and may be called more than once.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.stop)
	}
	s.mu.Unlock()
	<-s.done
}

func (s *Scheduler) add(at time.Time, launch, abort func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		abort()
		return
	}
	s.seq++
	heap.PushOrderable(&s.entries, delayed{
		at:     at,
		seq:    s.seq,
		launch: launch,
		abort:  abort,
	})
	s.pending++
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop() {
	defer close(s.done)
	for {
		due, wait, ok := s.takeDue(time.Now())
		for _, d := range due {
			d.launch()
		}

		var t *time.Timer
		var timerC <-chan time.Time
		if ok {
			t = timerp.Get(wait)
			timerC = t.C
		}

		stopped := false
		select {
		case <-timerC:
		case <-s.wake:
		case <-s.stop:
			stopped = true
		}
		if t != nil {
			timerp.Put(t)
		}
		if stopped {
			s.abandon()
			return
		}
	}
}

// takeDue pops every entry whose deadline has passed. If entries remain, it
// also returns the time until the earliest of them.
func (s *Scheduler) takeDue(now time.Time) ([]delayed, time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []delayed
	for {
		next, ok := heap.Peek(&s.entries)
		if !ok {
			return due, 0, false
		}
		if next.at.After(now) {
			return due, next.at.Sub(now), true
		}
		d, _ := heap.PopOrderable(&s.entries)
		s.pending--
		due = append(due, d)
	}
}

func (s *Scheduler) abandon() {
	s.mu.Lock()
	var abandoned []delayed
	for {
		d, ok := heap.PopOrderable(&s.entries)
		if !ok {
			break
		}
		abandoned = append(abandoned, d)
	}
	s.pending = 0
	s.mu.Unlock()

	for _, d := range abandoned {
		d.abort()
	}
}
