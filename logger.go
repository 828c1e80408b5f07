// FILE: lixenwraith/logship/logger.go
package logship

import (
	"io"
	"time"

	"github.com/lixenwraith/logship/formatter"
	"github.com/lixenwraith/logship/sanitizer"
)

// Logger is the core struct that encapsulates all logger functionality
type Logger struct {
	config    *Config
	state     State
	queue     intakeQueue
	acc       accumulator
	sender    Sender
	formatter *formatter.Formatter
	batchSize int
}

// NewLogger validates the configuration, creates the HTTP sender and starts the dispatcher
func NewLogger(cfg *Config) (*Logger, error) {
	return newLogger(cfg, nil)
}

// NewLoggerWithSender is NewLogger with a caller-provided delivery client
func NewLoggerWithSender(cfg *Config, sender Sender) (*Logger, error) {
	if sender == nil {
		return nil, fmtErrorf("sender cannot be nil")
	}
	return newLogger(cfg, sender)
}

// newLogger builds a started logger, creating an HTTP sender when none is given
func newLogger(cfg *Config, sender Sender) (*Logger, error) {
	if cfg == nil {
		return nil, fmtErrorf("configuration cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmtErrorf("invalid configuration: %w", err)
	}
	cfg = cfg.Clone()

	if sender == nil {
		httpSender, err := NewHTTPSender(cfg)
		if err != nil {
			return nil, err
		}
		sender = httpSender
	}

	l := &Logger{
		config:    cfg,
		sender:    sender,
		formatter: newFormatter(cfg),
		batchSize: int(cfg.BatchSize),
	}

	l.state.LoggerStartTime.Store(time.Now())
	l.state.ProcessorExited.Store(true)
	l.state.wakeChan = make(chan struct{}, 1)
	l.state.stopChan = make(chan struct{})
	l.state.processorDone = make(chan struct{})
	l.state.flushRequestChan = make(chan chan struct{}, 1)

	l.start()
	return l, nil
}

// newFormatter builds the record formatter for a configuration
func newFormatter(cfg *Config) *formatter.Formatter {
	san := sanitizer.New().Policy(sanitizer.PolicyPreset(cfg.Sanitization))
	return formatter.New(san).TimestampFormat(cfg.TimestampFormat)
}

// start launches the dispatcher goroutine exactly once
func (l *Logger) start() {
	if l.state.Started.CompareAndSwap(false, true) {
		l.state.ProcessorExited.Store(false)
		go l.processLogs()
	}
}

// GetConfig returns a copy of the logger configuration
func (l *Logger) GetConfig() *Config {
	return l.config.Clone()
}

// Shutdown stops accepting records, flushes everything already queued and
// waits for the dispatcher to exit. Without a timeout it waits indefinitely.
// Calls after the first return nil immediately.
func (l *Logger) Shutdown(timeout ...time.Duration) error {
	if !l.acc.beginShutdown() {
		return nil
	}
	l.state.ShutdownCalled.Store(true)

	if !l.state.Started.Load() {
		return nil
	}

	// The dispatcher performs one final forced drain-and-flush before exiting
	close(l.state.stopChan)

	if len(timeout) > 0 && timeout[0] > 0 {
		select {
		case <-l.state.processorDone:
		case <-time.After(timeout[0]):
			// Cleanup still runs once the dispatcher gets unstuck
			go func() {
				<-l.state.processorDone
				_ = l.finishShutdown()
			}()
			return fmtErrorf("dispatcher did not exit within timeout (%v)", timeout[0])
		}
	} else {
		<-l.state.processorDone
	}

	return l.finishShutdown()
}

// finishShutdown runs once after the dispatcher exits: it counts records that
// raced past the shutdown check and closes the sender
func (l *Logger) finishShutdown() error {
	l.state.cleanupOnce.Do(func() {
		l.state.Started.Store(false)
		l.dropLate()

		if closer, ok := l.sender.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				l.state.cleanupErr = combineErrors(l.state.cleanupErr, fmtErrorf("failed to close sender: %w", err))
			}
		}
	})
	return l.state.cleanupErr
}

// dropLate discards queued records nobody will dispatch any more
func (l *Logger) dropLate() {
	if late := l.queue.drainAll(); len(late) > 0 {
		l.state.DroppedLogs.Add(uint64(len(late)))
		l.internalLog("warning - %d records arrived after shutdown and were dropped\n", len(late))
	}
}

// Flush forces a drain-and-flush cycle and waits for it to complete or timeout
func (l *Logger) Flush(timeout time.Duration) error {
	l.state.flushMutex.Lock()
	defer l.state.flushMutex.Unlock()

	if l.acc.isShuttingDown() {
		return fmtErrorf("logger already shut down")
	}
	if !l.state.Started.Load() {
		return fmtErrorf("logger not started")
	}

	// Create a channel to wait for confirmation from the dispatcher
	confirmChan := make(chan struct{})

	select {
	case l.state.flushRequestChan <- confirmChan:
		// Request sent
	case <-l.state.processorDone:
		return fmtErrorf("dispatcher exited before flush request")
	case <-time.After(timeout):
		return fmtErrorf("failed to send flush request to dispatcher within %v", timeout)
	}

	select {
	case <-confirmChan:
		return nil
	case <-l.state.processorDone:
		// The final shutdown flush covered everything accepted so far
		return nil
	case <-time.After(timeout):
		return fmtErrorf("timeout waiting for flush confirmation (%v)", timeout)
	}
}

// Trace logs a message at trace level
func (l *Logger) Trace(body any, attrs ...any) {
	l.log(LevelTrace, body, nil, attrs)
}

// Debug logs a message at debug level
func (l *Logger) Debug(body any, attrs ...any) {
	l.log(LevelDebug, body, nil, attrs)
}

// Info logs a message at info level
func (l *Logger) Info(body any, attrs ...any) {
	l.log(LevelInfo, body, nil, attrs)
}

// Warn logs a message at warning level
func (l *Logger) Warn(body any, attrs ...any) {
	l.log(LevelWarn, body, nil, attrs)
}

// Error logs a message at error level. A non-nil err is stored under the "error" attribute.
func (l *Logger) Error(body any, err error, attrs ...any) {
	l.log(LevelError, body, err, attrs)
}

// Log enqueues a record at an arbitrary level. Adapters translate host calls into this.
func (l *Logger) Log(level int64, body any, attrs ...any) {
	l.log(level, body, nil, attrs)
}

// LogStructured logs a message with a map of structured fields
func (l *Logger) LogStructured(level int64, body any, fields map[string]any) {
	l.log(level, body, nil, []any{fields})
}

// Enabled reports whether records at level would be enqueued
func (l *Logger) Enabled(level int64) bool {
	return level >= l.config.Level && !l.state.ShutdownCalled.Load()
}
