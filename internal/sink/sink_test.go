// FILE: lixenwraith/logship/internal/sink/sink_test.go
package sink

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/lixenwraith/logship"
)

// startSink serves s on an in-memory listener and returns a logger shipping to it
func startSink(t *testing.T, s *Server, token string, modify ...func(*logship.Config)) *logship.Logger {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = s.Serve(ln) }()
	t.Cleanup(func() { _ = s.Shutdown() })

	cfg := logship.DefaultConfig()
	cfg.Endpoint = "sink.local/ingest"
	cfg.Token = token
	cfg.Insecure = true
	cfg.FlushIntervalMs = 20
	cfg.InternalErrorsToStderr = false
	for _, m := range modify {
		m(cfg)
	}

	sender, err := logship.NewHTTPSender(cfg, logship.WithDial(func(string) (net.Conn, error) {
		return ln.Dial()
	}))
	require.NoError(t, err)

	logger, err := logship.NewLoggerWithSender(cfg, sender)
	require.NoError(t, err)
	return logger
}

func TestSinkReceivesBatches(t *testing.T) {
	var mu sync.Mutex
	var tokens []string

	s := New(WithRetention(), WithToken("sink-token"), WithBatchHandler(func(b Batch) {
		mu.Lock()
		tokens = append(tokens, b.Token)
		mu.Unlock()
	}))
	logger := startSink(t, s, "sink-token", func(c *logship.Config) { c.Compress = true })

	logger.Info("hello", "k", "v")
	logger.Warn("careful")
	require.NoError(t, logger.Shutdown(time.Second))

	records := s.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "hello", records[0].Body)
	assert.Equal(t, "INFO", records[0].Level)
	assert.Equal(t, map[string]string{"k": "v"}, records[0].Attributes)
	assert.Equal(t, "WARNING", records[1].Level)

	assert.Equal(t, uint64(2), s.Received())
	assert.NotZero(t, s.Batches())
	assert.Zero(t, s.Rejected())

	mu.Lock()
	defer mu.Unlock()
	for _, tok := range tokens {
		assert.Equal(t, "sink-token", tok)
	}
}

func TestSinkRejectsWrongToken(t *testing.T) {
	s := New(WithToken("expected"))
	logger := startSink(t, s, "other")

	logger.Info("denied")
	require.NoError(t, logger.Shutdown(time.Second))

	assert.Zero(t, s.Received())
	assert.Equal(t, uint64(1), s.Rejected())
	assert.Equal(t, uint64(1), logger.Stats().FailedBatches)
}

func TestSinkStatusOverride(t *testing.T) {
	s := New(WithStatus(fasthttp.StatusAccepted))
	logger := startSink(t, s, "t", func(c *logship.Config) { c.FlushIntervalMs = 60000 })

	s.SetStatus(fasthttp.StatusServiceUnavailable)
	logger.Info("lost")
	require.NoError(t, logger.Flush(time.Second))

	s.SetStatus(fasthttp.StatusAccepted)
	logger.Info("kept")
	require.NoError(t, logger.Shutdown(time.Second))

	assert.Equal(t, uint64(1), s.Received())
	assert.Equal(t, uint64(1), s.Rejected())

	stats := logger.Stats()
	assert.Equal(t, uint64(1), stats.SentBatches)
	assert.Equal(t, uint64(1), stats.FailedBatches)
}
