// Package shutdownqueue is a process-wide LIFO queue of cleanup tasks.
//
// Components register their teardown with Add as they start; main drains
// the queue once at exit:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
//	defer cancel()
//	defer shutdownqueue.Shutdown(ctx)
//
// Tasks run in reverse registration order, so dependents stop before
// their dependencies. Shutdown is idempotent; task panics are recovered
// and reported as errors.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is one shutdown step. It should honor ctx and return an error if
// it cannot finish in time.
type Task func(ctx context.Context) error

var (
	mu     sync.Mutex
	tasks  []Task
	closed bool
)

// Add registers a task to run on Shutdown. Nil tasks and tasks added
// after shutdown has started are dropped.
func Add(t Task) {
	if t == nil {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	if closed {
		return
	}
	tasks = append(tasks, t)
}

// Shutdown drains the queue in LIFO order and returns the joined errors.
// A canceled ctx stops the drain early; tasks not yet run are abandoned.
// Only the first call does any work.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	pending := tasks
	tasks = nil
	closed = true
	mu.Unlock()

	var errs []error
	for i := len(pending) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("shutdown canceled: %w", err))
			break
		}

		if err := runTask(ctx, pending[i]); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func runTask(ctx context.Context, t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in shutdown task: %v", r)
		}
	}()

	return t(ctx)
}
