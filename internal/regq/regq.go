// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package regq provides the registration queue that feeds a run: an
// unbounded, many-producer single-consumer queue that closes itself once the
// last sender reference has been released.
//
// Every item in the queue holds one sender reference, which passes to the
// consumer when the item is received. The consumer must eventually call
// [Queue.Release] for it. Consequently a closed queue is always empty.
package regq

import (
	"sync"

	"github.com/gammazero/deque"
)

type Queue[T any] struct {
	mu       sync.Mutex
	items    deque.Deque[T]
	senders  int64
	isClosed bool
	ready    chan struct{}
	closed   chan struct{}
}

// New returns an open queue holding a single sender reference on behalf of the
// caller.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		senders: 1,
		ready:   make(chan struct{}, 1),
		closed:  make(chan struct{}),
	}
}

// Send acquires a sender reference on behalf of v and enqueues it. Returns
// false without enqueuing anything if the queue has closed. Send never blocks.
func (q *Queue[T]) Send(v T) bool {
	q.mu.Lock()
	if q.isClosed {
		q.mu.Unlock()
		return false
	}
	q.senders++
	q.items.PushBack(v)
	q.mu.Unlock()

	// Coalesce wakeups; the consumer drains everything on each signal.
	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// Acquire adds a sender reference. Returns false if the queue has closed.
func (q *Queue[T]) Acquire() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.isClosed {
		return false
	}
	q.senders++
	return true
}

// Release drops a sender reference, closing the queue if it was the last one.
func (q *Queue[T]) Release() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.senders <= 0 {
		panic("sender released more times than acquired")
	}
	q.senders--
	if q.senders == 0 {
		q.isClosed = true
		close(q.closed)
	}
}

// TryRecv dequeues the next item, if any. The sender reference held by the
// item becomes the caller's responsibility.
func (q *Queue[T]) TryRecv() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Len() == 0 {
		var zero T
		return zero, false
	}
	return q.items.PopFront(), true
}

// Ready returns a channel that receives a value after items have been sent.
// Several sends may be signaled by a single value.
func (q *Queue[T]) Ready() <-chan struct{} {
	return q.ready
}

// Closed returns a channel that is closed when the last sender reference has
// been released.
func (q *Queue[T]) Closed() <-chan struct{} {
	return q.closed
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}
