// FILE: lixenwraith/logship/state.go
package logship

import (
	"sync"
	"sync/atomic"
)

// State encapsulates the runtime state of the logger
type State struct {
	Started         atomic.Bool
	ShutdownCalled  atomic.Bool
	ProcessorExited atomic.Bool // Tracks if the dispatcher goroutine is running or has exited

	wakeChan         chan struct{}      // Threshold signal from producers, capacity 1
	stopChan         chan struct{}      // Closed once by Shutdown
	processorDone    chan struct{}      // Closed by the dispatcher on exit
	flushRequestChan chan chan struct{} // Channel to request a flush
	flushMutex       sync.Mutex         // Protect concurrent Flush calls
	cleanupOnce      sync.Once          // Post-exit cleanup, see finishShutdown
	cleanupErr       error

	EnqueuedLogs  atomic.Uint64 // Records accepted into the intake queue
	DroppedLogs   atomic.Uint64 // Records rejected or lost with a failed batch
	DeliveredLogs atomic.Uint64 // Records in successfully delivered batches
	SentBatches   atomic.Uint64 // Successful delivery attempts
	FailedBatches atomic.Uint64 // Failed delivery attempts

	// Heartbeat statistics
	HeartbeatSequence atomic.Uint64 // Counter for heartbeat sequence numbers
	LoggerStartTime   atomic.Value  // Stores time.Time for uptime calculation
}

// Stats returns a snapshot of the logger counters
func (l *Logger) Stats() Stats {
	return Stats{
		Enqueued:      l.state.EnqueuedLogs.Load(),
		Dropped:       l.state.DroppedLogs.Load(),
		Delivered:     l.state.DeliveredLogs.Load(),
		SentBatches:   l.state.SentBatches.Load(),
		FailedBatches: l.state.FailedBatches.Load(),
	}
}
