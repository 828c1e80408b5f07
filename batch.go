// FILE: lixenwraith/logship/batch.go
package logship

import (
	"sync"
)

// accumulator buffers drained records until the flush policy fires.
// The shutdown flag shares its lock so the final drain cannot interleave with a flush decision.
type accumulator struct {
	mu           sync.Mutex
	records      []Record
	shuttingDown bool
}

// collect drains the queue into the buffer and, when the policy fires, swaps
// the buffer out and returns its contents. It returns nil when nothing is due.
// The policy fires when force is set and the buffer is non-empty, or when the
// buffer holds at least threshold records.
func (a *accumulator) collect(q *intakeQueue, threshold int, force bool) []Record {
	a.mu.Lock()
	defer a.mu.Unlock()

	if drained := q.drainAll(); len(drained) > 0 {
		if len(a.records) == 0 {
			a.records = drained
		} else {
			a.records = append(a.records, drained...)
		}
	}

	if len(a.records) == 0 {
		return nil
	}
	if !force && len(a.records) < threshold {
		return nil
	}

	// Swap-and-clear: the caller owns the returned slice
	out := a.records
	a.records = nil
	return out
}

// beginShutdown flips the shutdown flag, reporting whether this call did so
func (a *accumulator) beginShutdown() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.shuttingDown {
		return false
	}
	a.shuttingDown = true
	return true
}

// isShuttingDown reports the shutdown flag
func (a *accumulator) isShuttingDown() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.shuttingDown
}

// size returns the number of buffered records
func (a *accumulator) size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}
