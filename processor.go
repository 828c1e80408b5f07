// FILE: lixenwraith/logship/processor.go
package logship

// processLogs is the dispatcher loop running in a separate goroutine.
// It is the only consumer of the intake queue and the only caller of the sender.
func (l *Logger) processLogs() {
	defer close(l.state.processorDone)
	defer l.state.ProcessorExited.Store(true) // Ensure flag is set on exit

	timers := l.setupProcessingTimers()
	defer l.closeProcessingTimers(timers)

	// Send initial heartbeats immediately instead of waiting for first tick
	if l.config.HeartbeatLevel > 0 {
		l.handleHeartbeat()
	}

	for {
		select {
		case <-l.state.stopChan:
			// Final forced drain-and-flush; nothing is accepted after this point
			l.dispatch(true)
			// A flush that lost the race with shutdown is covered by the drain above
			select {
			case confirmChan := <-l.state.flushRequestChan:
				close(confirmChan)
			default:
			}
			return

		case <-l.state.wakeChan:
			l.dispatch(false)

		case <-timers.flushTicker.C:
			// Every tick flushes whatever is buffered
			l.dispatch(true)

		case confirmChan := <-l.state.flushRequestChan:
			l.handleFlushRequest(confirmChan)

		case <-timers.heartbeatChan:
			l.handleHeartbeat()
		}
	}
}

// dispatch runs one drain-evaluate-deliver cycle
func (l *Logger) dispatch(force bool) {
	records := l.acc.collect(&l.queue, l.batchSize, force)
	if len(records) == 0 {
		return
	}
	l.deliver(records)
}

// deliver hands one batch to the sender. Failures are counted and reported,
// never propagated: the batch is gone either way.
func (l *Logger) deliver(records []Record) {
	batch := Batch{
		Token:   l.config.Token,
		Records: records,
	}

	if err := l.safeSend(batch); err != nil {
		l.state.FailedBatches.Add(1)
		l.state.DroppedLogs.Add(uint64(len(records)))
		l.internalLog("warning - failed to deliver batch of %d records: %v\n", len(records), err)
		return
	}

	l.state.SentBatches.Add(1)
	l.state.DeliveredLogs.Add(uint64(len(records)))
}

// safeSend calls the sender, converting a panic into an error so the loop survives
func (l *Logger) safeSend(batch Batch) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmtErrorf("sender panic: %v", r)
		}
	}()
	return l.sender.Send(batch)
}

// handleFlushRequest handles an explicit flush request
func (l *Logger) handleFlushRequest(confirmChan chan struct{}) {
	l.dispatch(true)
	close(confirmChan) // Signal completion back to the Flush caller
}
