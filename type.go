// FILE: lixenwraith/logship/type.go
package logship

import (
	"time"
)

// Record is a single encoded log entry. It is never modified after creation.
type Record struct {
	Timestamp  time.Time
	Level      int64
	Body       string
	Attributes map[string]string
}

// Batch is the snapshot handed to a Sender on every flush
type Batch struct {
	Token   string
	Records []Record
}

// Stats is a point-in-time snapshot of logger counters
type Stats struct {
	Enqueued      uint64 // Records accepted into the intake queue
	Dropped       uint64 // Records rejected after shutdown or lost with a failed batch
	Delivered     uint64 // Records in batches the sender accepted
	SentBatches   uint64 // Successful delivery attempts
	FailedBatches uint64 // Failed delivery attempts
}

// TimerSet holds all timers used in processLogs
type TimerSet struct {
	flushTicker     *time.Ticker
	heartbeatTicker *time.Ticker
	heartbeatChan   <-chan time.Time
}
