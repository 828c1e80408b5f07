// FILE: lixenwraith/logship/compat/fiber.go
package compat

import (
	"fmt"
	"os"
	"time"

	"github.com/lixenwraith/logship"
)

// fiberFlushTimeout bounds the flush performed before fatal and panic handlers run
const fiberFlushTimeout = time.Second

// FiberAdapter wraps logship.Logger to implement Fiber's CommonLogger interface.
// It satisfies the interface structurally, so no fiber import is needed.
type FiberAdapter struct {
	logger       *logship.Logger
	fatalHandler func(msg string) // Customizable fatal behavior
	panicHandler func(msg string) // Customizable panic behavior
}

// NewFiberAdapter creates a new Fiber-compatible logger adapter
func NewFiberAdapter(logger *logship.Logger, opts ...FiberOption) *FiberAdapter {
	adapter := &FiberAdapter{
		logger: logger,
		fatalHandler: func(msg string) {
			os.Exit(1) // Default behavior
		},
		panicHandler: func(msg string) {
			panic(msg) // Default behavior
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FiberOption allows customizing adapter behavior
type FiberOption func(*FiberAdapter)

// WithFiberFatalHandler sets a custom fatal handler
func WithFiberFatalHandler(handler func(string)) FiberOption {
	return func(a *FiberAdapter) {
		a.fatalHandler = handler
	}
}

// WithFiberPanicHandler sets a custom panic handler
func WithFiberPanicHandler(handler func(string)) FiberOption {
	return func(a *FiberAdapter) {
		a.panicHandler = handler
	}
}

// log ships one record; keysAndValues become attributes, tagged with the fiber source
func (a *FiberAdapter) log(level int64, msg string, keysAndValues []any) {
	attrs := make([]any, 0, len(keysAndValues)+2)
	attrs = append(attrs, keysAndValues...)
	attrs = append(attrs, "source", "fiber")
	a.logger.Log(level, msg, attrs...)
}

// terminate flushes the record just written, then hands control to handler
func (a *FiberAdapter) terminate(handler func(string), msg string) {
	_ = a.logger.Flush(fiberFlushTimeout)
	if handler != nil {
		handler(msg)
	}
}

// --- Logger interface ---

// Trace logs at trace level
func (a *FiberAdapter) Trace(v ...any) {
	a.log(logship.LevelTrace, fmt.Sprint(v...), nil)
}

// Debug logs at debug level
func (a *FiberAdapter) Debug(v ...any) {
	a.log(logship.LevelDebug, fmt.Sprint(v...), nil)
}

// Info logs at info level
func (a *FiberAdapter) Info(v ...any) {
	a.log(logship.LevelInfo, fmt.Sprint(v...), nil)
}

// Warn logs at warn level
func (a *FiberAdapter) Warn(v ...any) {
	a.log(logship.LevelWarn, fmt.Sprint(v...), nil)
}

// Error logs at error level
func (a *FiberAdapter) Error(v ...any) {
	a.log(logship.LevelError, fmt.Sprint(v...), nil)
}

// Fatal logs at error level and triggers the fatal handler
func (a *FiberAdapter) Fatal(v ...any) {
	msg := fmt.Sprint(v...)
	a.log(logship.LevelError, msg, []any{"fatal", true})
	a.terminate(a.fatalHandler, msg)
}

// Panic logs at error level and triggers the panic handler
func (a *FiberAdapter) Panic(v ...any) {
	msg := fmt.Sprint(v...)
	a.log(logship.LevelError, msg, []any{"panic", true})
	a.terminate(a.panicHandler, msg)
}

// Write makes FiberAdapter an io.Writer for fiber's output redirection
func (a *FiberAdapter) Write(p []byte) (n int, err error) {
	msg := string(p)
	// Trim trailing newline if present
	if len(msg) > 0 && msg[len(msg)-1] == '\n' {
		msg = msg[:len(msg)-1]
	}
	a.log(logship.LevelInfo, msg, nil)
	return len(p), nil
}

// --- FormatLogger interface ---

// Tracef logs at trace level with printf-style formatting
func (a *FiberAdapter) Tracef(format string, v ...any) {
	a.log(logship.LevelTrace, fmt.Sprintf(format, v...), nil)
}

// Debugf logs at debug level with printf-style formatting
func (a *FiberAdapter) Debugf(format string, v ...any) {
	a.log(logship.LevelDebug, fmt.Sprintf(format, v...), nil)
}

// Infof logs at info level with printf-style formatting
func (a *FiberAdapter) Infof(format string, v ...any) {
	a.log(logship.LevelInfo, fmt.Sprintf(format, v...), nil)
}

// Warnf logs at warn level with printf-style formatting
func (a *FiberAdapter) Warnf(format string, v ...any) {
	a.log(logship.LevelWarn, fmt.Sprintf(format, v...), nil)
}

// Errorf logs at error level with printf-style formatting
func (a *FiberAdapter) Errorf(format string, v ...any) {
	a.log(logship.LevelError, fmt.Sprintf(format, v...), nil)
}

// Fatalf logs at error level and triggers the fatal handler
func (a *FiberAdapter) Fatalf(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	a.log(logship.LevelError, msg, []any{"fatal", true})
	a.terminate(a.fatalHandler, msg)
}

// Panicf logs at error level and triggers the panic handler
func (a *FiberAdapter) Panicf(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	a.log(logship.LevelError, msg, []any{"panic", true})
	a.terminate(a.panicHandler, msg)
}

// --- WithLogger interface ---

// Tracew logs at trace level with structured key-value pairs
func (a *FiberAdapter) Tracew(msg string, keysAndValues ...any) {
	a.log(logship.LevelTrace, msg, keysAndValues)
}

// Debugw logs at debug level with structured key-value pairs
func (a *FiberAdapter) Debugw(msg string, keysAndValues ...any) {
	a.log(logship.LevelDebug, msg, keysAndValues)
}

// Infow logs at info level with structured key-value pairs
func (a *FiberAdapter) Infow(msg string, keysAndValues ...any) {
	a.log(logship.LevelInfo, msg, keysAndValues)
}

// Warnw logs at warn level with structured key-value pairs
func (a *FiberAdapter) Warnw(msg string, keysAndValues ...any) {
	a.log(logship.LevelWarn, msg, keysAndValues)
}

// Errorw logs at error level with structured key-value pairs
func (a *FiberAdapter) Errorw(msg string, keysAndValues ...any) {
	a.log(logship.LevelError, msg, keysAndValues)
}

// Fatalw logs at error level with structured key-value pairs and triggers the fatal handler
func (a *FiberAdapter) Fatalw(msg string, keysAndValues ...any) {
	a.log(logship.LevelError, msg, append(keysAndValues, "fatal", true))
	a.terminate(a.fatalHandler, msg)
}

// Panicw logs at error level with structured key-value pairs and triggers the panic handler
func (a *FiberAdapter) Panicw(msg string, keysAndValues ...any) {
	a.log(logship.LevelError, msg, append(keysAndValues, "panic", true))
	a.terminate(a.panicHandler, msg)
}
