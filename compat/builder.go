// FILE: lixenwraith/logship/compat/builder.go
package compat

import (
	"fmt"

	"github.com/lixenwraith/logship"
)

// Builder provides a flexible way to create configured logger adapters for gnet, fasthttp, fiber, slog and zap.
// It can use an existing *logship.Logger instance or create a new one from a *logship.Config
type Builder struct {
	logger *logship.Logger
	logCfg *logship.Config
	err    error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithLogger specifies an existing logger to use for the adapters.
// Recommended for applications that already have a central logger instance.
// If this is set WithConfig is ignored
func (b *Builder) WithLogger(l *logship.Logger) *Builder {
	if l == nil {
		b.err = fmt.Errorf("logship/compat: provided logger cannot be nil")
		return b
	}
	b.logger = l
	return b
}

// WithConfig provides a configuration for a new logger instance.
// This is used only if an existing logger is NOT provided via WithLogger
func (b *Builder) WithConfig(cfg *logship.Config) *Builder {
	b.logCfg = cfg
	return b
}

// getLogger resolves the logger to be used, creating one if necessary
func (b *Builder) getLogger() (*logship.Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	// An existing logger was provided, so we use it
	if b.logger != nil {
		return b.logger, nil
	}

	if b.logCfg == nil {
		return nil, fmt.Errorf("logship/compat: either a logger or a config is required")
	}

	l, err := logship.NewLogger(b.logCfg)
	if err != nil {
		return nil, err
	}

	// Cache the newly created logger for subsequent builds with this builder
	b.logger = l
	return l, nil
}

// BuildGnet creates a gnet adapter
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewGnetAdapter(l, opts...), nil
}

// BuildStructuredGnet creates a gnet adapter that extracts key=value fields from format strings
func (b *Builder) BuildStructuredGnet(opts ...GnetOption) (*StructuredGnetAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewStructuredGnetAdapter(l, opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(l, opts...), nil
}

// BuildFiber creates a Fiber CommonLogger adapter
func (b *Builder) BuildFiber(opts ...FiberOption) (*FiberAdapter, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewFiberAdapter(l, opts...), nil
}

// BuildSlog creates an slog.Handler shipping through the logger
func (b *Builder) BuildSlog(opts ...SlogOption) (*SlogHandler, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewSlogHandler(l, opts...), nil
}

// BuildZap creates a zapcore.Core shipping through the logger
func (b *Builder) BuildZap() (*ZapCore, error) {
	l, err := b.getLogger()
	if err != nil {
		return nil, err
	}
	return NewZapCore(l), nil
}

// GetLogger returns the underlying *logship.Logger instance.
// If a logger has not been provided or created yet, it will be initialized
func (b *Builder) GetLogger() (*logship.Logger, error) {
	return b.getLogger()
}

// --- Example Usage ---
//
//	appLogger, err := logship.NewBuilder().
//		Endpoint("ingest.example.com/v1/logs").
//		Token(token).
//		Build()
//	if err != nil { /* handle error */ }
//
//	builder := compat.NewBuilder().WithLogger(appLogger)
//
//	gnetLogger, _ := builder.BuildGnet()
//	go gnet.Run(events, "tcp://:9000", gnet.WithLogger(gnetLogger))
//
//	fasthttpLogger, _ := builder.BuildFastHTTP()
//	server := &fasthttp.Server{Handler: handler, Logger: fasthttpLogger}
//
//	fiberLogger, _ := builder.BuildFiber()
//	log.SetLogger(fiberLogger) // github.com/gofiber/fiber/v2/log
//
//	handler, _ := builder.BuildSlog()
//	slog.SetDefault(slog.New(handler))
//
//	core, _ := builder.BuildZap()
//	zapLogger := zap.New(core)
