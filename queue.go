// FILE: lixenwraith/logship/queue.go
package logship

import (
	"sync"
)

// intakeQueue is an unbounded FIFO of records shared by all producers.
// Any goroutine may push; only the dispatcher drains.
type intakeQueue struct {
	mu      sync.Mutex
	records []Record
}

// push appends a record and returns the queue length after the append
func (q *intakeQueue) push(record Record) int {
	q.mu.Lock()
	q.records = append(q.records, record)
	n := len(q.records)
	q.mu.Unlock()
	return n
}

// drainAll removes and returns every queued record in push order
func (q *intakeQueue) drainAll() []Record {
	q.mu.Lock()
	drained := q.records
	q.records = nil
	q.mu.Unlock()
	return drained
}

// len returns the number of queued records
func (q *intakeQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records)
}
