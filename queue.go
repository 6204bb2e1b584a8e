// FILE: lixenwraith/vlog/queue.go
package vlog

import (
	"sync"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// eventQueue is a FIFO of pending events. It is unbounded unless limit > 0.
type eventQueue struct {
	mu     sync.Mutex
	items  *linkedlistqueue.Queue
	limit  int
	notify chan struct{} // capacity 1, signals a push to a waiting consumer
}

func newEventQueue(limit int) *eventQueue {
	return &eventQueue{
		items:  linkedlistqueue.New(),
		limit:  limit,
		notify: make(chan struct{}, 1),
	}
}

// push appends e, returning false if the queue is bounded and full.
func (q *eventQueue) push(e *Event) bool {
	q.mu.Lock()
	if q.limit > 0 && q.items.Size() >= q.limit {
		q.mu.Unlock()
		return false
	}
	q.items.Enqueue(e)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// pop removes the oldest event.
func (q *eventQueue) pop() (*Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	v, ok := q.items.Dequeue()
	if !ok {
		return nil, false
	}
	return v.(*Event), true
}

func (q *eventQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Size()
}
