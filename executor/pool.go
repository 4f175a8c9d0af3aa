// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package executor

import (
	"context"
	"sync"

	"github.com/gammazero/deque"
)

// Config holds the concurrency limits of a [Pool]. A negative limit means no
// limit. Zero is invalid, since a lane with no slots would never run anything
// queued to it.
type Config struct {
	Workers         int `mapstructure:"workers" yaml:"workers"`
	BlockingWorkers int `mapstructure:"blocking_workers" yaml:"blocking_workers"`
}

// DefaultConfig places no limit on ordinary work and allows 64 concurrent
// blocking functions.
var DefaultConfig = Config{
	Workers:         -1,
	BlockingWorkers: 64,
}

// Stats is a snapshot of a [Pool]'s activity.
type Stats struct {
	Active         int
	Queued         int
	BlockingActive int
	BlockingQueued int
}

// A Pool is an [Executor] that bounds the number of concurrently running
// functions, separately for ordinary and blocking work. Functions launched
// while a lane is at its limit are queued in launch order and run as earlier
// functions in the same lane return.
type Pool struct {
	async    lane
	blocking lane
	wg       sync.WaitGroup
}

// NewPool creates a [Pool] with the given limits. Panics if either limit is
// zero.
func NewPool(cfg Config) *Pool {
	if cfg.Workers == 0 || cfg.BlockingWorkers == 0 {
		panic("executor pool limits must be non-zero")
	}
	p := &Pool{}
	p.async.init(cfg.Workers, &p.wg)
	p.blocking.init(cfg.BlockingWorkers, &p.wg)
	return p
}

func (p *Pool) Go(ctx context.Context, fn func(context.Context)) {
	p.async.submit(ctx, fn)
}

func (p *Pool) GoBlocking(ctx context.Context, fn func(context.Context)) {
	p.blocking.submit(ctx, fn)
}

// Wait blocks until every function launched so far, including queued ones,
// has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) Stats() Stats {
	active, queued := p.async.stats()
	blockingActive, blockingQueued := p.blocking.stats()
	return Stats{
		Active:         active,
		Queued:         queued,
		BlockingActive: blockingActive,
		BlockingQueued: blockingQueued,
	}
}

type job struct {
	ctx context.Context
	fn  func(context.Context)
}

type lane struct {
	mu      sync.Mutex
	limit   int
	running int
	pending deque.Deque[job]
	wg      *sync.WaitGroup
}

func (l *lane) init(limit int, wg *sync.WaitGroup) {
	l.limit = limit
	l.wg = wg
}

func (l *lane) submit(ctx context.Context, fn func(context.Context)) {
	l.wg.Add(1)
	j := job{ctx: ctx, fn: fn}

	l.mu.Lock()
	if l.limit >= 0 && l.running >= l.limit {
		l.pending.PushBack(j)
		l.mu.Unlock()
		return
	}
	l.running++
	l.mu.Unlock()

	go l.work(j)
}

// work runs j and then keeps the slot busy with queued jobs until none
// remain. Each job is marked done only after the lane's bookkeeping reflects
// its completion, so that Stats is quiescent once Wait returns.
func (l *lane) work(j job) {
	for {
		j.fn(j.ctx)

		l.mu.Lock()
		if l.pending.Len() == 0 {
			l.running--
			l.mu.Unlock()
			l.wg.Done()
			return
		}
		next := l.pending.PopFront()
		l.mu.Unlock()
		l.wg.Done()
		j = next
	}
}

func (l *lane) stats() (active, queued int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running, l.pending.Len()
}
