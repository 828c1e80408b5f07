// FILE: lixenwraith/logship/record.go
package logship

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// log handles the core logging logic
func (l *Logger) log(level int64, body any, err error, attrs []any) {
	if level < l.config.Level {
		return
	}

	if l.state.ShutdownCalled.Load() {
		l.state.DroppedLogs.Add(1)
		return
	}

	var trace string
	if depth := l.config.TraceDepth; depth > 0 {
		const skipTrace = 3 // getTrace, log, Info (Adjust if call stack changes)
		trace = getTrace(depth, skipTrace)
	}

	l.enqueue(l.encode(level, body, err, attrs, trace))
}

// enqueue pushes a record and wakes the dispatcher once the size threshold is reached
func (l *Logger) enqueue(record Record) {
	n := l.queue.push(record)
	l.state.EnqueuedLogs.Add(1)

	// Pushed after the dispatcher's final drain
	if l.state.ProcessorExited.Load() {
		l.dropLate()
		return
	}

	if n >= l.batchSize {
		// Non-blocking: a pending wake already covers this push
		select {
		case l.state.wakeChan <- struct{}{}:
		default:
		}
	}
}

// encode converts a log call into an immutable Record with text attributes.
// The timestamp is taken here so buffer order reflects producer order.
func (l *Logger) encode(level int64, body any, err error, attrs []any, trace string) Record {
	record := Record{
		Timestamp:  time.Now().UTC(),
		Level:      level,
		Body:       l.formatter.Stringify(body),
		Attributes: l.encodeAttributes(attrs),
	}

	if err != nil {
		record.Attributes[AttrError] = l.formatter.Stringify(err)
	}
	if trace != "" {
		record.Attributes[AttrTrace] = trace
	}

	return record
}

// encodeAttributes flattens key/value pairs and maps into string attributes.
// A non-string key or a key without a value is stored under AttrBadKey.
func (l *Logger) encodeAttributes(attrs []any) map[string]string {
	out := make(map[string]string, len(attrs)/2+1)

	for i := 0; i < len(attrs); {
		switch key := attrs[i].(type) {
		case map[string]any:
			for k, v := range key {
				out[k] = l.formatter.Stringify(v)
			}
			i++

		case map[string]string:
			for k, v := range key {
				out[k] = l.formatter.Stringify(v)
			}
			i++

		case string:
			if i+1 >= len(attrs) {
				out[AttrBadKey] = key
				i++
				continue
			}
			out[key] = l.formatter.Stringify(attrs[i+1])
			i += 2

		default:
			out[AttrBadKey] = l.formatter.Stringify(key)
			i++
		}
	}

	return out
}

// internalLog handles writing internal logger diagnostics to stderr, if enabled.
func (l *Logger) internalLog(format string, args ...any) {
	if !l.config.InternalErrorsToStderr {
		return
	}

	// Ensure consistent "logship: " prefix
	if !strings.HasPrefix(format, "logship: ") {
		format = "logship: " + format
	}

	fmt.Fprintf(os.Stderr, format, args...)
}
