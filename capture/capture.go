// FILE: lixenwraith/logship/capture/capture.go
// Package capture forwards text written to an io.Writer into a logship.Logger, one record per line.
package capture

import (
	"bytes"
	"io"
	"log"
	"os"
	"sync"

	"github.com/lixenwraith/logship"
)

// MaxLineSize bounds a buffered partial line; longer lines are shipped in pieces
const MaxLineSize = 64 * 1024

// Writer passes writes through to a wrapped writer and ships complete lines as records
type Writer struct {
	mu     sync.Mutex
	logger *logship.Logger
	level  int64
	next   io.Writer // Optional passthrough target
	attrs  []any
	buf    []byte
}

// New creates a capturing writer. next may be nil to only ship.
func New(logger *logship.Logger, level int64, next io.Writer, attrs ...any) *Writer {
	return &Writer{
		logger: logger,
		level:  level,
		next:   next,
		attrs:  attrs,
	}
}

// Stdout wraps os.Stdout, shipping lines at info level with stream=stdout
func Stdout(logger *logship.Logger) *Writer {
	return New(logger, logship.LevelInfo, os.Stdout, "stream", "stdout")
}

// Stderr wraps os.Stderr, shipping lines at error level with stream=stderr
func Stderr(logger *logship.Logger) *Writer {
	return New(logger, logship.LevelError, os.Stderr, "stream", "stderr")
}

// StdLog returns a standard library logger whose output is shipped at level.
// Use it for packages that only accept a *log.Logger.
func StdLog(logger *logship.Logger, level int64, prefix string) *log.Logger {
	return log.New(New(logger, level, nil, "source", "stdlog"), prefix, 0)
}

// Write implements io.Writer. The passthrough result is returned as is;
// shipping never fails the write.
func (w *Writer) Write(p []byte) (int, error) {
	n := len(p)
	var err error
	if w.next != nil {
		n, err = w.next.Write(p)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	for len(w.buf) >= MaxLineSize {
		w.emit(w.buf[:MaxLineSize])
		w.buf = w.buf[MaxLineSize:]
	}

	// Compact so the backing array does not grow unbounded
	if len(w.buf) == 0 {
		w.buf = w.buf[:0:0]
	} else if cap(w.buf) > 2*MaxLineSize {
		w.buf = append([]byte(nil), w.buf...)
	}

	return n, err
}

// Flush ships a buffered partial line
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.emit(w.buf)
		w.buf = nil
	}
}

// Close flushes the partial line. The wrapped writer is not closed.
func (w *Writer) Close() error {
	w.Flush()
	return nil
}

func (w *Writer) emit(line []byte) {
	line = bytes.TrimRight(line, "\r")
	if len(bytes.TrimSpace(line)) == 0 {
		return
	}
	w.logger.Log(w.level, string(line), w.attrs...)
}
