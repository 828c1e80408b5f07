// FILE: lixenwraith/logship/timer.go
package logship

import "time"

// setupProcessingTimers creates and configures all necessary timers for the dispatcher
func (l *Logger) setupProcessingTimers() *TimerSet {
	timers := &TimerSet{}

	// Set up flush timer
	flushInterval := l.config.FlushIntervalMs
	if flushInterval <= 0 {
		flushInterval = DefaultConfig().FlushIntervalMs
	}
	interval := time.Duration(flushInterval) * time.Millisecond
	if interval < minWaitTime {
		interval = minWaitTime
	}
	timers.flushTicker = time.NewTicker(interval)

	// Set up heartbeat timer
	timers.heartbeatChan = l.setupHeartbeatTimer(timers)

	return timers
}

// closeProcessingTimers stops all active timers
func (l *Logger) closeProcessingTimers(timers *TimerSet) {
	timers.flushTicker.Stop()
	if timers.heartbeatTicker != nil {
		timers.heartbeatTicker.Stop()
	}
}

// setupHeartbeatTimer configures the heartbeat timer if enabled
func (l *Logger) setupHeartbeatTimer(timers *TimerSet) <-chan time.Time {
	if l.config.HeartbeatLevel > 0 {
		intervalS := l.config.HeartbeatIntervalS
		// Make sure interval is positive
		if intervalS <= 0 {
			intervalS = DefaultConfig().HeartbeatIntervalS
		}
		timers.heartbeatTicker = time.NewTicker(time.Duration(intervalS) * time.Second)
		return timers.heartbeatTicker.C
	}
	return nil
}
