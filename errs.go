// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package psx

import "errors"

type constError string

func (e constError) Error() string {
	return string(e)
}

const ErrTaskPanic = constError("task panicked")
const ErrTaskAlreadyRun = constError("task already run")
const ErrRegistrationClosed = constError("registration closed")

// TaskError wraps the error returned by a task. It is what a [Delegate]
// receives from [Delegate.TaskFinished] and carries no information of its own
// beyond the wrapped error, which remains reachable through [errors.Is] and
// [errors.As].
type TaskError struct {
	err error
}

// NewTaskError wraps err in a [TaskError]. If err already is (or wraps) a
// TaskError, that TaskError is returned instead. Panics if err is nil.
func NewTaskError(err error) *TaskError {
	if err == nil {
		panic("task error must be non-nil")
	}
	var te *TaskError
	if errors.As(err, &te) {
		return te
	}
	return &TaskError{err: err}
}

func (e *TaskError) Error() string {
	return e.err.Error()
}

func (e *TaskError) Unwrap() error {
	return e.err
}
