package queue

import (
	"sync"

	"github.com/gammazero/deque"

	"github.com/V4T54L/udp-logview/internal/domain"
)

// HandoffQueue is an unbounded FIFO between the network receiver and the
// buffer owner. The size bound lives in the history buffer, not here, so a
// slow consumer can never stall the receiver.
type HandoffQueue struct {
	mu      sync.Mutex
	records deque.Deque[domain.Record]
}

// NewHandoffQueue creates an empty queue.
func NewHandoffQueue() *HandoffQueue {
	return &HandoffQueue{}
}

// Push appends a record. It never blocks on the consumer.
func (q *HandoffQueue) Push(r domain.Record) {
	q.mu.Lock()
	q.records.PushBack(r)
	q.mu.Unlock()
}

// PopBatch moves up to max records from the head of the queue onto dst.
func (q *HandoffQueue) PopBatch(dst []domain.Record, max int) []domain.Record {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := 0; i < max && q.records.Len() > 0; i++ {
		dst = append(dst, q.records.PopFront())
	}
	return dst
}

// Len returns the number of records waiting to be drained.
func (q *HandoffQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.records.Len()
}
