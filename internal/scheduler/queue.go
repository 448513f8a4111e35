/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package scheduler

import (
	"context"
	"sync"
)

// taskQueue is an unbounded FIFO drained by a single worker.
// post never blocks, so it is safe to call from timer callbacks and foreign locks.
type taskQueue struct {
	mu     sync.Mutex
	tasks  []func()
	signal chan struct{}
}

func newTaskQueue() *taskQueue {
	return &taskQueue{signal: make(chan struct{}, 1)}
}

func (q *taskQueue) post(fn func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *taskQueue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return nil, false
	}
	fn := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return fn, true
}

func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// run executes queued tasks in order through exec until ctx is cancelled.
// Tasks still queued at cancellation are dropped.
func (q *taskQueue) run(ctx context.Context, exec func(fn func())) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.signal:
		}

		for {
			if ctx.Err() != nil {
				return
			}
			fn, ok := q.pop()
			if !ok {
				break
			}
			exec(fn)
		}
	}
}
