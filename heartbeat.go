// FILE: lixenwraith/logship/heartbeat.go
package logship

import (
	"fmt"
	"runtime"
	"time"
)

// handleHeartbeat processes a heartbeat timer tick
func (l *Logger) handleHeartbeat() {
	heartbeatLevel := l.config.HeartbeatLevel

	if heartbeatLevel >= 1 {
		l.logProcHeartbeat()
	}

	if heartbeatLevel >= 2 {
		l.logSysHeartbeat()
	}
}

// logProcHeartbeat logs shipping statistics
func (l *Logger) logProcHeartbeat() {
	sequence := l.state.HeartbeatSequence.Add(1)

	startTimeVal := l.state.LoggerStartTime.Load()
	var uptimeHours float64 = 0
	if startTime, ok := startTimeVal.(time.Time); ok && !startTime.IsZero() {
		uptimeHours = time.Since(startTime).Hours()
	}

	stats := l.Stats()
	procArgs := []any{
		"type", "proc",
		"sequence", sequence,
		"uptime_hours", fmt.Sprintf("%.2f", uptimeHours),
		"enqueued_logs", stats.Enqueued,
		"delivered_logs", stats.Delivered,
		"dropped_logs", stats.Dropped,
		"sent_batches", stats.SentBatches,
		"failed_batches", stats.FailedBatches,
		"queued_logs", l.queue.len() + l.acc.size(),
	}

	l.writeHeartbeatRecord(procArgs)
}

// logSysHeartbeat logs system/runtime statistics heartbeat
func (l *Logger) logSysHeartbeat() {
	sequence := l.state.HeartbeatSequence.Load()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	sysArgs := []any{
		"type", "sys",
		"sequence", sequence,
		"alloc_mb", fmt.Sprintf("%.2f", float64(memStats.Alloc)/(1024*1024)),
		"sys_mb", fmt.Sprintf("%.2f", float64(memStats.Sys)/(1024*1024)),
		"num_gc", memStats.NumGC,
		"num_goroutine", runtime.NumGoroutine(),
	}

	l.writeHeartbeatRecord(sysArgs)
}

// writeHeartbeatRecord enqueues a heartbeat as an INFO record, bypassing the level filter
func (l *Logger) writeHeartbeatRecord(args []any) {
	if l.state.ShutdownCalled.Load() {
		return
	}
	l.enqueue(l.encode(LevelInfo, "heartbeat", nil, args, ""))
}
