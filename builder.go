// FILE: lixenwraith/logship/builder.go
package logship

import "time"

// Builder provides a fluent API for building loggers.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg    *Config
	sender Sender
	err    error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build validates the configuration and starts a new Logger.
func (b *Builder) Build() (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}
	return newLogger(b.cfg, b.sender)
}

// Config returns a copy of the configuration built so far.
func (b *Builder) Config() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.cfg.Clone(), nil
}

// Endpoint sets the ingestion endpoint.
func (b *Builder) Endpoint(endpoint string) *Builder {
	b.cfg.Endpoint = endpoint
	return b
}

// Token sets the ingestion token.
func (b *Builder) Token(token string) *Builder {
	b.cfg.Token = token
	return b
}

// Insecure selects http instead of https.
func (b *Builder) Insecure(insecure bool) *Builder {
	b.cfg.Insecure = insecure
	return b
}

// BatchSize sets the record count that triggers a flush.
func (b *Builder) BatchSize(size int64) *Builder {
	b.cfg.BatchSize = size
	return b
}

// FlushInterval sets the time-based flush interval. Sub-millisecond values are rejected.
func (b *Builder) FlushInterval(interval time.Duration) *Builder {
	if b.err != nil {
		return b
	}
	if interval < time.Millisecond {
		b.err = fmtErrorf("flush interval must be at least 1ms: %v", interval)
		return b
	}
	b.cfg.FlushIntervalMs = interval.Milliseconds()
	return b
}

// RequestTimeout sets the per-request transport timeout.
func (b *Builder) RequestTimeout(timeout time.Duration) *Builder {
	if b.err != nil {
		return b
	}
	if timeout < time.Millisecond {
		b.err = fmtErrorf("request timeout must be at least 1ms: %v", timeout)
		return b
	}
	b.cfg.RequestTimeoutMs = timeout.Milliseconds()
	return b
}

// Compress enables gzip request bodies.
func (b *Builder) Compress(compress bool) *Builder {
	b.cfg.Compress = compress
	return b
}

// Level sets the log level.
func (b *Builder) Level(level int64) *Builder {
	b.cfg.Level = level
	return b
}

// LevelString sets the log level from a string.
func (b *Builder) LevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	levelVal, err := Level(level)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg.Level = levelVal
	return b
}

// TraceDepth sets the call trace attribute depth.
func (b *Builder) TraceDepth(depth int64) *Builder {
	b.cfg.TraceDepth = depth
	return b
}

// Sanitization sets the text sanitization policy.
func (b *Builder) Sanitization(policy string) *Builder {
	b.cfg.Sanitization = policy
	return b
}

// HeartbeatLevel sets the heartbeat monitoring level.
func (b *Builder) HeartbeatLevel(level int64) *Builder {
	b.cfg.HeartbeatLevel = level
	return b
}

// HeartbeatIntervalS sets the heartbeat interval in seconds.
func (b *Builder) HeartbeatIntervalS(interval int64) *Builder {
	b.cfg.HeartbeatIntervalS = interval
	return b
}

// InternalErrorsToStderr toggles diagnostics on stderr.
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// Override applies "key=value" overrides on top of the values set so far.
func (b *Builder) Override(overrides ...string) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.cfg.ApplyOverride(overrides...); err != nil {
		b.err = err
	}
	return b
}

// Sender replaces the HTTP delivery client.
func (b *Builder) Sender(sender Sender) *Builder {
	b.sender = sender
	return b
}

// Example usage:
// logger, err := logship.NewBuilder().
//
//	Endpoint("ingest.example.com/v1/logs").
//	Token(os.Getenv("INGEST_TOKEN")).
//	LevelString("info").
//	BatchSize(50).
//	FlushInterval(2 * time.Second).
//	Build()
//
// if err == nil {
//
//	 defer logger.Shutdown(5 * time.Second)
//	 logger.Info("Logger initialized successfully")
//
// }
