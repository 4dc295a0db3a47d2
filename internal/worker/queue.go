package worker

import (
	"errors"
	"sync"
)

var (
	ErrQueueFull   = errors.New("job queue is full, try again shortly")
	ErrQueueClosed = errors.New("job queue is closed")
)

// Queue feeds the pool. Submit never blocks and may race with Close.
type Queue struct {
	mu     sync.Mutex
	ch     chan Job
	closed bool
}

func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan Job, size)}
}

// Jobs is the channel StartPool reads from.
func (q *Queue) Jobs() <-chan Job {
	return q.ch
}

func (q *Queue) Submit(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops new submissions. Jobs already queued stay readable.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}
