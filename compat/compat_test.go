// FILE: lixenwraith/logship/compat/compat_test.go
package compat

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/lixenwraith/logship"
)

// memorySender collects shipped records
type memorySender struct {
	mu      sync.Mutex
	records []logship.Record
}

func (s *memorySender) Send(batch logship.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, batch.Records...)
	return nil
}

func (s *memorySender) all() []logship.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]logship.Record(nil), s.records...)
}

// createTestCompatBuilder creates a standard setup for compatibility adapter tests
func createTestCompatBuilder(t *testing.T) (*Builder, *logship.Logger, *memorySender) {
	t.Helper()

	sender := &memorySender{}
	appLogger, err := logship.NewBuilder().
		Endpoint("ingest.test/v1/logs").
		Token("compat-token").
		LevelString("debug").
		FlushInterval(10 * time.Millisecond).
		InternalErrorsToStderr(false).
		Sender(sender).
		Build()
	require.NoError(t, err)

	builder := NewBuilder().WithLogger(appLogger)
	return builder, appLogger, sender
}

// shipped shuts the logger down and returns everything it delivered
func shipped(t *testing.T, logger *logship.Logger, sender *memorySender) []logship.Record {
	t.Helper()
	require.NoError(t, logger.Shutdown(2*time.Second))
	return sender.all()
}

// TestCompatBuilder verifies the compatibility builder can be initialized correctly
func TestCompatBuilder(t *testing.T) {
	t.Run("with existing logger", func(t *testing.T) {
		builder, logger, _ := createTestCompatBuilder(t)
		defer logger.Shutdown()

		gnetAdapter, err := builder.BuildGnet()
		require.NoError(t, err)
		assert.Same(t, logger, gnetAdapter.logger)

		got, err := builder.GetLogger()
		require.NoError(t, err)
		assert.Same(t, logger, got)
	})

	t.Run("with config", func(t *testing.T) {
		cfg := logship.DefaultConfig()
		cfg.Endpoint = "ingest.test/v1/logs"
		cfg.Token = "t"
		cfg.InternalErrorsToStderr = false

		builder := NewBuilder().WithConfig(cfg)
		fasthttpAdapter, err := builder.BuildFastHTTP()
		require.NoError(t, err)
		assert.NotNil(t, fasthttpAdapter)

		logger1, err := builder.GetLogger()
		require.NoError(t, err)
		defer logger1.Shutdown()

		// Cached for later builds
		zapCore, err := builder.BuildZap()
		require.NoError(t, err)
		assert.Same(t, logger1, zapCore.logger)
	})

	t.Run("nil logger", func(t *testing.T) {
		_, err := NewBuilder().WithLogger(nil).BuildGnet()
		assert.Error(t, err)
	})

	t.Run("no logger or config", func(t *testing.T) {
		_, err := NewBuilder().BuildSlog()
		assert.Error(t, err)
	})
}

// TestGnetAdapter tests the gnet adapter's levels and attributes
func TestGnetAdapter(t *testing.T) {
	builder, logger, sender := createTestCompatBuilder(t)

	var fatalMsg string
	adapter, err := builder.BuildGnet(WithFatalHandler(func(msg string) {
		fatalMsg = msg
	}))
	require.NoError(t, err)

	adapter.Debugf("gnet debug id=%d", 1)
	adapter.Infof("gnet info id=%d", 2)
	adapter.Warnf("gnet warn id=%d", 3)
	adapter.Errorf("gnet error id=%d", 4)
	adapter.Fatalf("gnet fatal id=%d", 5)

	records := shipped(t, logger, sender)
	require.Len(t, records, 5)

	expected := []struct {
		level int64
		body  string
	}{
		{logship.LevelDebug, "gnet debug id=1"},
		{logship.LevelInfo, "gnet info id=2"},
		{logship.LevelWarn, "gnet warn id=3"},
		{logship.LevelError, "gnet error id=4"},
		{logship.LevelError, "gnet fatal id=5"},
	}
	for i, r := range records {
		assert.Equal(t, expected[i].level, r.Level)
		assert.Equal(t, expected[i].body, r.Body)
		assert.Equal(t, "gnet", r.Attributes["source"])
	}
	assert.Equal(t, "true", records[4].Attributes["fatal"])
	assert.Equal(t, "gnet fatal id=5", fatalMsg)
}

// TestStructuredGnetAdapter tests the gnet adapter with structured field extraction
func TestStructuredGnetAdapter(t *testing.T) {
	builder, logger, sender := createTestCompatBuilder(t)

	adapter, err := builder.BuildStructuredGnet()
	require.NoError(t, err)

	adapter.Infof("request served status=%d client_ip=%s", 200, "127.0.0.1")
	adapter.Warnf("plain %s message", "printf")

	records := shipped(t, logger, sender)
	require.Len(t, records, 2)

	assert.Equal(t, logship.LevelInfo, records[0].Level)
	assert.Equal(t, "request served", records[0].Body)
	assert.Equal(t, map[string]string{
		"status":    "200",
		"client_ip": "127.0.0.1",
		"source":    "gnet",
	}, records[0].Attributes)

	assert.Equal(t, "plain printf message", records[1].Body)
	assert.Equal(t, map[string]string{"source": "gnet"}, records[1].Attributes)
}

func TestParseFormat(t *testing.T) {
	body, attrs := parseFormat("conn opened fd=%d addr: %s after retry", []any{7, "10.0.0.1"})
	assert.Equal(t, "conn opened after retry", body)
	assert.Equal(t, []any{"fd", 7, "addr", "10.0.0.1"}, attrs)

	// More patterns than args falls back to plain formatting
	body, attrs = parseFormat("a=%d b=%d", []any{1})
	assert.Nil(t, attrs)
	assert.Contains(t, body, "a=1")

	// Verbs ahead of the first pair keep their own args
	body, attrs = parseFormat("%s accepted id=%d", []any{"worker-2", 42})
	assert.Equal(t, "worker-2 accepted", body)
	assert.Equal(t, []any{"id", 42}, attrs)

	body, attrs = parseFormat("100%% of %d done took=%v", []any{3, "1s"})
	assert.Equal(t, "100% of 3 done", body)
	assert.Equal(t, []any{"took", "1s"}, attrs)

	// Verbs in the prefix exhausting args fall back as well
	body, attrs = parseFormat("%s %s id=%d", []any{"a", "b"})
	assert.Nil(t, attrs)
	assert.Contains(t, body, "a b id=")
}

// TestFiberAdapter tests the Fiber adapter's output across all log levels
func TestFiberAdapter(t *testing.T) {
	builder, logger, sender := createTestCompatBuilder(t)

	var fatalSeen, panicSeen []string
	adapter, err := builder.BuildFiber(
		WithFiberFatalHandler(func(msg string) {
			// The record is already delivered when the handler runs
			for _, r := range sender.all() {
				fatalSeen = append(fatalSeen, r.Body)
			}
		}),
		WithFiberPanicHandler(func(msg string) {
			panicSeen = append(panicSeen, msg)
		}),
	)
	require.NoError(t, err)

	adapter.Tracef("fiber trace id=%d", 1) // below the debug threshold
	adapter.Debugf("fiber debug id=%d", 2)
	adapter.Infof("fiber info id=%d", 3)
	adapter.Warnf("fiber warn id=%d", 4)
	adapter.Errorf("fiber error id=%d", 5)
	adapter.Fatalf("fiber fatal id=%d", 6)
	adapter.Panicf("fiber panic id=%d", 7)

	assert.Contains(t, fatalSeen, "fiber fatal id=6")
	assert.Equal(t, []string{"fiber panic id=7"}, panicSeen)

	records := shipped(t, logger, sender)
	expected := []struct {
		level int64
		msg   string
	}{
		{logship.LevelDebug, "fiber debug id=2"},
		{logship.LevelInfo, "fiber info id=3"},
		{logship.LevelWarn, "fiber warn id=4"},
		{logship.LevelError, "fiber error id=5"},
		{logship.LevelError, "fiber fatal id=6"},
		{logship.LevelError, "fiber panic id=7"},
	}
	require.Len(t, records, len(expected))
	for i, r := range records {
		assert.Equal(t, expected[i].level, r.Level)
		assert.Equal(t, expected[i].msg, r.Body)
		assert.Equal(t, "fiber", r.Attributes["source"])
	}
	assert.Equal(t, "true", records[4].Attributes["fatal"])
	assert.Equal(t, "true", records[5].Attributes["panic"])
}

// TestFiberAdapterStructuredLogging tests the WithLogger methods and io.Writer support
func TestFiberAdapterStructuredLogging(t *testing.T) {
	builder, logger, sender := createTestCompatBuilder(t)

	adapter, err := builder.BuildFiber()
	require.NoError(t, err)

	adapter.Infow("request served", "status", 200, "client_ip", "127.0.0.1", "method", "GET")
	adapter.Debugw("query executed", "duration_ms", 42)
	adapter.Warn("slow ", "handler")
	_, err = adapter.Write([]byte("redirected output\n"))
	require.NoError(t, err)

	records := shipped(t, logger, sender)
	require.Len(t, records, 4)

	assert.Equal(t, "request served", records[0].Body)
	assert.Equal(t, logship.LevelInfo, records[0].Level)
	assert.Equal(t, map[string]string{
		"status":    "200",
		"client_ip": "127.0.0.1",
		"method":    "GET",
		"source":    "fiber",
	}, records[0].Attributes)

	assert.Equal(t, "42", records[1].Attributes["duration_ms"])
	assert.Equal(t, logship.LevelDebug, records[1].Level)

	assert.Equal(t, "slow handler", records[2].Body)
	assert.Equal(t, logship.LevelWarn, records[2].Level)

	assert.Equal(t, "redirected output", records[3].Body)
	assert.Equal(t, logship.LevelInfo, records[3].Level)
}

// TestFastHTTPAdapter tests the fasthttp adapter's level detection and message parsing
func TestFastHTTPAdapter(t *testing.T) {
	builder, logger, sender := createTestCompatBuilder(t)

	adapter, err := builder.BuildFastHTTP()
	require.NoError(t, err)

	testMessages := []string{
		"this is some informational message",
		"a debug message for the developers",
		"warning: something might be wrong",
		"an error occurred while processing",
	}
	for _, msg := range testMessages {
		adapter.Printf("%s", msg)
	}
	adapter.Printf("served path=%s status=%d", "/health", 200)

	records := shipped(t, logger, sender)
	require.Len(t, records, 5)

	expectedLevels := []int64{logship.LevelInfo, logship.LevelDebug, logship.LevelWarn, logship.LevelError}
	for i, msg := range testMessages {
		assert.Equal(t, expectedLevels[i], records[i].Level)
		assert.Equal(t, msg, records[i].Body)
		assert.Equal(t, "fasthttp", records[i].Attributes["source"])
	}

	assert.Equal(t, "served", records[4].Body)
	assert.Equal(t, "/health", records[4].Attributes["path"])
	assert.Equal(t, "200", records[4].Attributes["status"])
}

func TestFastHTTPAdapterOptions(t *testing.T) {
	builder, logger, sender := createTestCompatBuilder(t)

	adapter, err := builder.BuildFastHTTP(
		WithDefaultLevel(logship.LevelWarn),
		WithLevelDetector(nil),
		WithMessageParsing(false),
	)
	require.NoError(t, err)

	adapter.Printf("error k=v")

	records := shipped(t, logger, sender)
	require.Len(t, records, 1)
	assert.Equal(t, logship.LevelWarn, records[0].Level)
	assert.Equal(t, "error k=v", records[0].Body)
	assert.Equal(t, map[string]string{"source": "fasthttp"}, records[0].Attributes)
}

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantBody   string
		wantFields map[string]any
	}{
		{
			name:       "json with msg",
			input:      `{"msg":"started","port":8080,"tls":false}`,
			wantBody:   "started",
			wantFields: map[string]any{"port": float64(8080), "tls": false},
		},
		{
			name:       "json with message",
			input:      ` {"message":"stopped","reason":"signal"} `,
			wantBody:   "stopped",
			wantFields: map[string]any{"reason": "signal"},
		},
		{
			name:       "key value pairs",
			input:      `cache miss key=user:42 latency=3ms`,
			wantBody:   "cache miss",
			wantFields: map[string]any{"key": "user:42", "latency": "3ms"},
		},
		{
			name:       "quoted value",
			input:      `job done name="nightly backup" ok=true`,
			wantBody:   "job done",
			wantFields: map[string]any{"name": "nightly backup", "ok": "true"},
		},
		{
			name:     "plain text",
			input:    "nothing structured here",
			wantBody: "nothing structured here",
		},
		{
			name:     "malformed json stays text",
			input:    `{"broken":`,
			wantBody: `{"broken":`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, fields := ParseMessage(tt.input)
			assert.Equal(t, tt.wantBody, body)
			if tt.wantFields == nil {
				assert.Empty(t, fields)
			} else {
				assert.Equal(t, tt.wantFields, fields)
			}
		})
	}
}

// TestSlogHandler tests attribute flattening, groups and level mapping
func TestSlogHandler(t *testing.T) {
	builder, logger, sender := createTestCompatBuilder(t)

	handler, err := builder.BuildSlog()
	require.NoError(t, err)

	sl := slog.New(handler).With("service", "api")
	sl.Debug("debugging", "n", 1)
	sl.WithGroup("http").Info("request", "method", "GET", slog.Group("resp", "status", 200))
	sl.Error("failed", "err", errors.New("timeout"))

	records := shipped(t, logger, sender)
	require.Len(t, records, 3)

	assert.Equal(t, logship.LevelDebug, records[0].Level)
	assert.Equal(t, map[string]string{"service": "api", "n": "1", "source": "slog"}, records[0].Attributes)

	assert.Equal(t, logship.LevelInfo, records[1].Level)
	assert.Equal(t, map[string]string{
		"service":          "api",
		"http.method":      "GET",
		"http.resp.status": "200",
		"source":           "slog",
	}, records[1].Attributes)

	assert.Equal(t, logship.LevelError, records[2].Level)
	assert.Equal(t, "timeout", records[2].Attributes["err"])
}

func TestSlogHandlerTraceContext(t *testing.T) {
	builder, logger, sender := createTestCompatBuilder(t)

	handler, err := builder.BuildSlog(WithSource(""))
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01},
		SpanID:     trace.SpanID{0x02},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	sl := slog.New(handler)
	sl.InfoContext(ctx, "traced")
	sl.InfoContext(context.Background(), "untraced")

	records := shipped(t, logger, sender)
	require.Len(t, records, 2)

	assert.Equal(t, map[string]string{
		"trace_id": "01000000000000000000000000000000",
		"span_id":  "0200000000000000",
	}, records[0].Attributes)
	assert.Empty(t, records[1].Attributes)
}

func TestSlogHandlerEnabled(t *testing.T) {
	sender := &memorySender{}
	logger, err := logship.NewBuilder().
		Endpoint("ingest.test").
		Token("t").
		LevelString("warn").
		InternalErrorsToStderr(false).
		Sender(sender).
		Build()
	require.NoError(t, err)
	defer logger.Shutdown()

	handler := NewSlogHandler(logger)
	assert.False(t, handler.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelWarn))
}

// TestZapCore tests field encoding and level mapping through a zap logger
func TestZapCore(t *testing.T) {
	builder, logger, sender := createTestCompatBuilder(t)

	core, err := builder.BuildZap()
	require.NoError(t, err)

	zl := zap.New(core).Named("worker").With(zap.String("region", "eu"))
	zl.Debug("tick", zap.Int("n", 3))
	zl.Warn("slow", zap.Duration("took", 1500*time.Millisecond))
	zl.Error("crashed", zap.Error(errors.New("oom")))
	require.NoError(t, zl.Sync())

	records := shipped(t, logger, sender)
	require.Len(t, records, 3)

	assert.Equal(t, logship.LevelDebug, records[0].Level)
	assert.Equal(t, "tick", records[0].Body)
	assert.Equal(t, map[string]string{
		"region": "eu",
		"n":      "3",
		"source": "zap",
		"logger": "worker",
	}, records[0].Attributes)

	assert.Equal(t, logship.LevelWarn, records[1].Level)
	assert.Equal(t, "1.5s", records[1].Attributes["took"])

	assert.Equal(t, logship.LevelError, records[2].Level)
	assert.Equal(t, "oom", records[2].Attributes["error"])
}

func TestZapLevel(t *testing.T) {
	assert.Equal(t, logship.LevelDebug, zapLevel(zap.DebugLevel))
	assert.Equal(t, logship.LevelInfo, zapLevel(zap.InfoLevel))
	assert.Equal(t, logship.LevelWarn, zapLevel(zap.WarnLevel))
	assert.Equal(t, logship.LevelError, zapLevel(zap.ErrorLevel))
	assert.Equal(t, logship.LevelError, zapLevel(zap.FatalLevel))
}
