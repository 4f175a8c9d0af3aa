// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package psx

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"reflect"
	"slices"

	"github.com/petenewcomb/psx-go/executor"
	"github.com/petenewcomb/psx-go/internal/regq"
	"github.com/petenewcomb/psx-go/internal/state"
	"go.uber.org/zap"
)

// An Engine runs self-expanding sets of tasks that share a data value of type
// C. An Engine holds no per-run state; it may execute any number of runs,
// sequentially or concurrently.
type Engine[C any] struct {
	delegate     Delegate[C]
	dropObserver DropObserver[C]
	logger       *zap.Logger
	exec         executor.Executor
	ids          *IDSource
}

// NewEngine creates an [Engine] that reports task life cycle events to
// delegate, which may be nil.
func NewEngine[C any](delegate Delegate[C], opts ...Option) *Engine[C] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if delegate == nil {
		delegate = NopDelegate[C]{}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.exec == nil {
		o.exec = executor.Goroutines{}
	}
	if o.ids == nil {
		o.ids = &IDSource{}
	}
	e := &Engine[C]{
		delegate: delegate,
		logger:   o.logger,
		exec:     o.exec,
		ids:      o.ids,
	}
	e.dropObserver, _ = delegate.(DropObserver[C])
	return e
}

// Run executes task, and every task registered directly or indirectly by it,
// to completion. It is equivalent to calling [Engine.RunMany] with a single
// task.
func (e *Engine[C]) Run(ctx context.Context, data C, task Task[C]) error {
	return e.RunMany(ctx, data, task)
}

// RunMany registers each of the given tasks and then executes them, and every
// task they register, to completion. It returns once no task is in flight and
// none can be registered anymore.
//
// Task errors do not cause RunMany to return an error; they are reported only
// to the engine's [Delegate]. The only error RunMany returns is that of ctx, if
// it is canceled before the run completes. In that case the run is abandoned:
// no further tasks are started and the context passed to running tasks is
// canceled. Tasks that had already started are still reported to the
// delegate as finished, with an error wrapping the context's error, once they
// return; this may happen after RunMany itself has returned.
//
// A task instance runs at most once per run. Registering the same pointer
// again is reported as a task failing with [ErrTaskAlreadyRun], without
// calling its Run method.
func (e *Engine[C]) RunMany(ctx context.Context, data C, tasks ...Task[C]) error {
	return e.RunSeq(ctx, data, slices.Values(tasks))
}

// RunSeq is like [Engine.RunMany] but takes its initial tasks from a sequence,
// which is consumed in full before any completion is processed.
func (e *Engine[C]) RunSeq(ctx context.Context, data C, tasks iter.Seq[Task[C]]) error {
	r := e.newRun(ctx, data)
	defer r.cancel()

	r.logger.Debug("run starting")
	root := TaskCtx[C]{data: data, r: r}
	for task := range tasks {
		root.RegisterBlocking(task)
	}
	// Release the reference held on behalf of the caller, so that the queue
	// closes once the tasks registered above and their descendants are done.
	r.queue.Release()

	return r.loop()
}

type run[C any] struct {
	e           *Engine[C]
	id          RunID
	ctx         context.Context
	cancel      context.CancelFunc
	data        C
	queue       *regq.Queue[*taskRequest[C]]
	completions chan completion
	state       state.RunState
	logger      *zap.Logger

	// Pointer-shaped tasks accepted so far; touched only by the loop.
	accepted map[Task[C]]struct{}
}

type completion struct {
	id  TaskID
	err error
}

func (e *Engine[C]) newRun(ctx context.Context, data C) *run[C] {
	id := newRunID()
	ctx, cancel := context.WithCancel(withRunID(ctx, id))
	r := &run[C]{
		e:           e,
		id:          id,
		ctx:         ctx,
		cancel:      cancel,
		data:        data,
		queue:       regq.New[*taskRequest[C]](),
		completions: make(chan completion),
		logger:      e.logger.With(zap.Stringer("run_id", id)),
		accepted:    make(map[Task[C]]struct{}),
	}
	r.state.OnTransition = func(from, to state.Stage) {
		r.logger.Debug("run stage changed",
			zap.Stringer("from", from),
			zap.Stringer("to", to),
			zap.Int("in_pool", r.state.InPool()))
	}
	return r
}

// loop multiplexes registrations and completions until the run is terminal.
// It is the only place pool membership changes, so none of the bookkeeping it
// does needs synchronization.
func (r *run[C]) loop() error {
	closed := r.queue.Closed()
	for !r.state.Done() {
		// Checked ahead of the select so that a canceled run never accepts
		// more work, regardless of which cases happen to be ready.
		if r.ctx.Err() != nil {
			return r.abandon()
		}
		select {
		case <-r.queue.Ready():
			r.acceptAll()
		case c := <-r.completions:
			r.finish(c)
		case <-closed:
			// A closed queue is empty, since every queued request holds a
			// sender reference. Stop selecting on it.
			closed = nil
			r.state.Close()
		case <-r.ctx.Done():
			return r.abandon()
		}
	}
	r.logger.Debug("run complete")
	return nil
}

func (r *run[C]) abandon() error {
	err := r.ctx.Err()
	r.logger.Debug("run abandoned",
		zap.Int("in_pool", r.state.InPool()),
		zap.Int("queued", r.queue.Len()),
		zap.Error(err))
	return err
}

func (r *run[C]) acceptAll() {
	for {
		req, ok := r.queue.TryRecv()
		if !ok {
			return
		}
		r.accept(req)
	}
}

func (r *run[C]) accept(req *taskRequest[C]) {
	// Detach the task from its request so that nothing can run it again.
	task := req.task
	req.task = nil

	r.logger.Debug("task registered",
		zap.Stringer("task_id", req.id),
		zap.Stringer("parent_id", req.parent))
	r.notify("TaskRegistered", req.id, func() {
		r.e.delegate.TaskRegistered(r.ctx, r.data, req.id, task)
	})
	r.state.Accept()

	if !r.firstAcceptance(task) {
		r.logger.Debug("task instance already accepted", zap.Stringer("task_id", req.id))
		task = alreadyRun[C]{}
	}

	// The sender reference held by the request passes to the running task and
	// is released only after the task returns, so a task can never observe
	// the run closing underneath it.
	r.e.exec.Go(r.ctx, func(ctx context.Context) {
		defer r.queue.Release()
		if ctx.Err() != nil {
			// Run abandoned before the executor got around to the task.
			return
		}
		r.notify("TaskStarted", req.id, func() {
			r.e.delegate.TaskStarted(ctx, r.data, req.id)
		})
		err := r.execute(ctx, req.id, task)
		select {
		case r.completions <- completion{id: req.id, err: err}:
		case <-r.ctx.Done():
			// Run abandoned; the loop is gone, so report the task from here.
			r.report("task abandoned", req.id, errors.Join(r.ctx.Err(), err))
		}
	})
}

// firstAcceptance reports whether task has not been accepted before in this
// run. Only pointer and channel tasks have an identity to remember; any other
// task is a fresh copy each time it is registered. [FuncTask] and [Once]
// values carry their own guard.
func (r *run[C]) firstAcceptance(task Task[C]) bool {
	switch task.(type) {
	case *FuncTask[C], *onceTask[C]:
		return true
	}
	switch reflect.ValueOf(task).Kind() {
	case reflect.Pointer, reflect.Chan:
	default:
		return true
	}
	if _, ok := r.accepted[task]; ok {
		return false
	}
	r.accepted[task] = struct{}{}
	return true
}

func (r *run[C]) execute(ctx context.Context, id TaskID, task Task[C]) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, p)
			r.logger.Error("task panicked",
				zap.Stringer("task_id", id),
				zap.Any("panic", p),
				zap.StackSkip("stack", 2))
		}
	}()
	return task.Run(ctx, TaskCtx[C]{
		data: r.data,
		id:   id,
		r:    r,
	})
}

func (r *run[C]) finish(c completion) {
	r.state.Complete()
	r.report("task failed", c.id, c.err)
}

// report notifies the delegate that a task has finished, wrapping a non-nil
// err in a [TaskError]. failMsg is logged when err is non-nil.
func (r *run[C]) report(failMsg string, id TaskID, err error) {
	if err != nil {
		r.logger.Debug(failMsg, zap.Stringer("task_id", id), zap.Error(err))
		err = NewTaskError(err)
	} else {
		r.logger.Debug("task finished", zap.Stringer("task_id", id))
	}
	r.notify("TaskFinished", id, func() {
		r.e.delegate.TaskFinished(r.ctx, r.data, id, err)
	})
}

// notify calls a delegate hook. A panicking hook is logged and otherwise
// ignored, so that it affects neither the task nor the run.
func (r *run[C]) notify(hook string, id TaskID, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("delegate panicked",
				zap.String("hook", hook),
				zap.Stringer("task_id", id),
				zap.Any("panic", p),
				zap.StackSkip("stack", 2))
		}
	}()
	fn()
}

func (r *run[C]) register(ctx context.Context, parent TaskID, task Task[C]) {
	if task == nil {
		panic("task must be non-nil")
	}
	id := r.e.ids.Next()
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			r.drop(id, parent, task, err)
			return
		}
	}
	if !r.queue.Send(&taskRequest[C]{id: id, parent: parent, task: task}) {
		r.drop(id, parent, task, ErrRegistrationClosed)
	}
}

// drop reports a registration that could not be enqueued. It never blocks
// and never fails the caller.
func (r *run[C]) drop(id, parent TaskID, task Task[C], err error) {
	r.logger.Warn("task registration dropped",
		zap.Stringer("task_id", id),
		zap.Stringer("parent_id", parent),
		zap.Error(err))
	if r.e.dropObserver != nil {
		r.notify("TaskDropped", id, func() {
			r.e.dropObserver.TaskDropped(r.ctx, r.data, id, task, err)
		})
	}
}
