// FILE: lixenwraith/logship/compat/slog.go
package compat

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/lixenwraith/logship"
)

var _ slog.Handler = (*SlogHandler)(nil)

const (
	fieldTraceID = "trace_id"
	fieldSpanID  = "span_id"
)

// SlogHandler is an slog.Handler that ships records through a logship.Logger.
// Group names prefix attribute keys with dots.
type SlogHandler struct {
	logger     *logship.Logger
	attrs      []any  // Flattened key/value pairs from WithAttrs
	group      string // Dotted prefix from WithGroup
	traceAttrs bool
	source     string
}

// SlogOption allows customizing handler behavior
type SlogOption func(*SlogHandler)

// WithTraceContext toggles trace_id and span_id attributes from the record context
func WithTraceContext(enable bool) SlogOption {
	return func(h *SlogHandler) {
		h.traceAttrs = enable
	}
}

// WithSource sets the "source" attribute added to every record. Empty disables it.
func WithSource(source string) SlogOption {
	return func(h *SlogHandler) {
		h.source = source
	}
}

// NewSlogHandler creates a handler for the logger
func NewSlogHandler(logger *logship.Logger, opts ...SlogOption) *SlogHandler {
	h := &SlogHandler{
		logger:     logger,
		traceAttrs: true,
		source:     "slog",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled reports whether the logger accepts records at level.
// slog and logship share the same level numbering.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.Enabled(int64(level))
}

// Handle converts the record and enqueues it
func (h *SlogHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make([]any, 0, len(h.attrs)+r.NumAttrs()*2+6)
	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		attrs = appendAttr(attrs, h.group, a)
		return true
	})

	if h.traceAttrs && ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			attrs = append(attrs,
				fieldTraceID, sc.TraceID().String(),
				fieldSpanID, sc.SpanID().String(),
			)
		}
	}

	if h.source != "" {
		attrs = append(attrs, "source", h.source)
	}

	h.logger.Log(int64(r.Level), r.Message, attrs...)
	return nil
}

// WithAttrs returns a handler that adds attrs to every record
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = make([]any, len(h.attrs), len(h.attrs)+len(attrs)*2)
	copy(clone.attrs, h.attrs)
	for _, a := range attrs {
		clone.attrs = appendAttr(clone.attrs, h.group, a)
	}
	return &clone
}

// WithGroup returns a handler that prefixes later attribute keys with name
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = joinKey(h.group, name)
	return &clone
}

// appendAttr flattens an attribute into key/value pairs, expanding groups
func appendAttr(dst []any, prefix string, a slog.Attr) []any {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}

	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = joinKey(prefix, a.Key)
		}
		for _, ga := range a.Value.Group() {
			dst = appendAttr(dst, groupPrefix, ga)
		}
		return dst
	}

	return append(dst, joinKey(prefix, a.Key), a.Value.Any())
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
