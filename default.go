// FILE: lixenwraith/logship/default.go
package logship

import (
	"os"
	"sync"
	"time"
)

// ConfigEnvVar names the config file used when Default initializes lazily
const ConfigEnvVar = "LOGSHIP_CONFIG"

var (
	defaultMu     sync.Mutex
	defaultLogger *Logger
)

// Init starts the process-wide logger. An already running default logger is shut down first.
func Init(cfg *Config) error {
	logger, err := NewLogger(cfg)
	if err != nil {
		return err
	}

	defaultMu.Lock()
	previous := defaultLogger
	defaultLogger = logger
	defaultMu.Unlock()

	if previous != nil {
		return previous.Shutdown()
	}
	return nil
}

// Default returns the process-wide logger, loading it from the file named by
// LOGSHIP_CONFIG on first use. It returns nil when no logger can be created.
func Default() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultLogger != nil {
		return defaultLogger
	}

	path := os.Getenv(ConfigEnvVar)
	if path == "" {
		return nil
	}
	cfg, err := NewConfigFromFile(path)
	if err != nil {
		return nil
	}
	logger, err := NewLogger(cfg)
	if err != nil {
		return nil
	}
	defaultLogger = logger
	return defaultLogger
}

// Default package-level functions that delegate to the default logger.
// They are no-ops when no default logger is configured.

// Trace logs a message at trace level
func Trace(body any, attrs ...any) {
	if l := Default(); l != nil {
		l.log(LevelTrace, body, nil, attrs)
	}
}

// Debug logs a message at debug level
func Debug(body any, attrs ...any) {
	if l := Default(); l != nil {
		l.log(LevelDebug, body, nil, attrs)
	}
}

// Info logs a message at info level
func Info(body any, attrs ...any) {
	if l := Default(); l != nil {
		l.log(LevelInfo, body, nil, attrs)
	}
}

// Warn logs a message at warning level
func Warn(body any, attrs ...any) {
	if l := Default(); l != nil {
		l.log(LevelWarn, body, nil, attrs)
	}
}

// Error logs a message at error level
func Error(body any, err error, attrs ...any) {
	if l := Default(); l != nil {
		l.log(LevelError, body, err, attrs)
	}
}

// Flush forces delivery of everything queued and waits for completion or timeout
func Flush(timeout time.Duration) error {
	l := Default()
	if l == nil {
		return fmtErrorf("default logger not initialized")
	}
	return l.Flush(timeout)
}

// Shutdown drains and stops the default logger. A later Default call may load a new one.
func Shutdown(timeout ...time.Duration) error {
	defaultMu.Lock()
	l := defaultLogger
	defaultLogger = nil
	defaultMu.Unlock()

	if l == nil {
		return nil
	}
	return l.Shutdown(timeout...)
}
