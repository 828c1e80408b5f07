// FILE: lixenwraith/logship/compat/zap.go
package compat

import (
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/lixenwraith/logship"
)

var _ zapcore.Core = (*ZapCore)(nil)

// zapSyncTimeout bounds how long Sync waits for delivery
const zapSyncTimeout = 5 * time.Second

// ZapCore is a zapcore.Core that ships entries through a logship.Logger
type ZapCore struct {
	logger *logship.Logger
	fields []zapcore.Field
}

// NewZapCore creates a core for the logger
func NewZapCore(logger *logship.Logger) *ZapCore {
	return &ZapCore{logger: logger}
}

// zapLevel maps zap levels onto logship levels; DPanic and above ship as errors
func zapLevel(level zapcore.Level) int64 {
	switch {
	case level < zapcore.InfoLevel:
		return logship.LevelDebug
	case level == zapcore.InfoLevel:
		return logship.LevelInfo
	case level == zapcore.WarnLevel:
		return logship.LevelWarn
	default:
		return logship.LevelError
	}
}

// Enabled implements zapcore.LevelEnabler
func (c *ZapCore) Enabled(level zapcore.Level) bool {
	return c.logger.Enabled(zapLevel(level))
}

// With returns a core carrying additional fields
func (c *ZapCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &ZapCore{logger: c.logger, fields: merged}
}

// Check adds the core to the checked entry when the level is enabled
func (c *ZapCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write encodes the fields into attributes and enqueues the entry
func (c *ZapCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	attrs := []any{enc.Fields, "source", "zap"}
	if ent.LoggerName != "" {
		attrs = append(attrs, "logger", ent.LoggerName)
	}
	if ent.Caller.Defined {
		attrs = append(attrs, "caller", ent.Caller.TrimmedPath())
	}
	if ent.Level > zapcore.ErrorLevel {
		attrs = append(attrs, "zap_level", ent.Level.String())
	}

	c.logger.Log(zapLevel(ent.Level), ent.Message, attrs...)

	// zap terminates the process after Fatal and Panic entries
	if ent.Level > zapcore.ErrorLevel {
		return c.Sync()
	}
	return nil
}

// Sync waits for everything queued to be delivered
func (c *ZapCore) Sync() error {
	return c.logger.Flush(zapSyncTimeout)
}
