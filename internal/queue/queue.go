// Package queue serializes tasks that share a key.
package queue

import "sync"

// Keyed runs tasks one at a time per key, in arrival order. Tasks with
// different keys run concurrently. It implements ports.TaskQueue.
type Keyed struct {
	mu    sync.Mutex
	tails map[int64]chan struct{}
}

// NewKeyed creates an empty queue.
func NewKeyed() *Keyed {
	return &Keyed{tails: make(map[int64]chan struct{})}
}

// Do blocks until every task queued earlier under key has finished, then runs
// task on the calling goroutine. A task that panics still releases the tasks
// queued after it.
func (q *Keyed) Do(key int64, task func()) {
	done := make(chan struct{})

	q.mu.Lock()
	prev := q.tails[key]
	q.tails[key] = done
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		if q.tails[key] == done {
			delete(q.tails, key)
		}
		q.mu.Unlock()
		close(done)
	}()

	if prev != nil {
		<-prev
	}
	task()
}

// Len returns the number of keys with queued or running tasks.
func (q *Keyed) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tails)
}
