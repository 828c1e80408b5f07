// FILE: lixenwraith/logship/delivery_test.go
package logship

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

// capturedRequest is what the in-memory ingestion server saw
type capturedRequest struct {
	Method          string
	Path            string
	Host            string
	ContentType     string
	ContentEncoding string
	Body            []byte
}

// wirePayload mirrors the batch JSON body
type wirePayload struct {
	Token string `json:"token"`
	Type  string `json:"type"`
	Logs  []struct {
		Timestamp  string            `json:"timestamp"`
		Body       string            `json:"body"`
		Level      string            `json:"level"`
		Attributes map[string]string `json:"attributes"`
	} `json:"logs"`
}

// ingestServer is an in-memory fasthttp server standing in for the remote endpoint
type ingestServer struct {
	ln       *fasthttputil.InmemoryListener
	mu       sync.Mutex
	requests []capturedRequest
	status   int
}

func startIngestServer(t testing.TB) *ingestServer {
	s := &ingestServer{
		ln:     fasthttputil.NewInmemoryListener(),
		status: fasthttp.StatusOK,
	}

	srv := &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			req := capturedRequest{
				Method:          string(ctx.Method()),
				Path:            string(ctx.Path()),
				Host:            string(ctx.Host()),
				ContentType:     string(ctx.Request.Header.ContentType()),
				ContentEncoding: string(ctx.Request.Header.Peek(fasthttp.HeaderContentEncoding)),
			}
			if req.ContentEncoding == "gzip" {
				body, err := ctx.Request.BodyGunzip()
				if err != nil {
					ctx.SetStatusCode(fasthttp.StatusBadRequest)
					return
				}
				req.Body = body
			} else {
				req.Body = append([]byte(nil), ctx.Request.Body()...)
			}

			s.mu.Lock()
			s.requests = append(s.requests, req)
			status := s.status
			s.mu.Unlock()

			ctx.SetStatusCode(status)
			if status >= 300 {
				ctx.SetBodyString("ingestion unavailable")
			}
		},
	}

	go func() { _ = srv.Serve(s.ln) }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	return s
}

func (s *ingestServer) dial(string) (net.Conn, error) {
	return s.ln.Dial()
}

func (s *ingestServer) setStatus(status int) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

func (s *ingestServer) captured() []capturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]capturedRequest(nil), s.requests...)
}

// newTestSender creates an HTTPSender that dials the in-memory server
func newTestSender(t testing.TB, server *ingestServer, modify ...func(*Config)) *HTTPSender {
	cfg := testConfig()
	cfg.Insecure = true
	for _, m := range modify {
		m(cfg)
	}
	sender, err := NewHTTPSender(cfg, WithDial(server.dial))
	require.NoError(t, err)
	return sender
}

func testBatch() Batch {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 42, time.UTC)
	return Batch{
		Token: "test-token",
		Records: []Record{
			{Timestamp: ts, Level: LevelInfo, Body: "first", Attributes: map[string]string{"b": "2", "a": "1"}},
			{Timestamp: ts, Level: LevelError, Body: "second", Attributes: map[string]string{}},
		},
	}
}

func TestHTTPSenderPostsJSON(t *testing.T) {
	server := startIngestServer(t)
	sender := newTestSender(t, server)
	defer sender.Close()

	require.NoError(t, sender.Send(testBatch()))

	requests := server.captured()
	require.Len(t, requests, 1)
	req := requests[0]

	assert.Equal(t, fasthttp.MethodPost, req.Method)
	assert.Equal(t, "/v1/logs", req.Path)
	assert.Equal(t, "ingest.test", req.Host)
	assert.Equal(t, "application/json", req.ContentType)
	assert.Empty(t, req.ContentEncoding)

	var payload wirePayload
	require.NoError(t, json.Unmarshal(req.Body, &payload), string(req.Body))
	assert.Equal(t, "test-token", payload.Token)
	assert.Equal(t, "logs", payload.Type)
	require.Len(t, payload.Logs, 2)
	assert.Equal(t, "2024-05-01T10:00:00.000000042Z", payload.Logs[0].Timestamp)
	assert.Equal(t, "first", payload.Logs[0].Body)
	assert.Equal(t, "INFO", payload.Logs[0].Level)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, payload.Logs[0].Attributes)
	assert.Equal(t, "ERROR", payload.Logs[1].Level)
}

func TestCustomLevelsOnWire(t *testing.T) {
	server := startIngestServer(t)
	sender := newTestSender(t, server)

	cfg := testConfig()
	cfg.Level = LevelTrace
	logger, err := NewLoggerWithSender(cfg, sender)
	require.NoError(t, err)

	logger.Log(int64(slog.LevelWarn+2), "custom")
	logger.Log(12, "critical")
	logger.Log(-6, "verbose")
	require.NoError(t, logger.Shutdown(time.Second))

	levels := make(map[string]string)
	for _, req := range server.captured() {
		var payload wirePayload
		require.NoError(t, json.Unmarshal(req.Body, &payload), string(req.Body))
		for _, rec := range payload.Logs {
			levels[rec.Body] = rec.Level
		}
	}
	assert.Equal(t, map[string]string{
		"custom":   "WARNING",
		"critical": "ERROR",
		"verbose":  "DEBUG",
	}, levels)
}

func TestHTTPSenderGzip(t *testing.T) {
	server := startIngestServer(t)
	sender := newTestSender(t, server, func(c *Config) { c.Compress = true })
	defer sender.Close()

	// Twice to exercise writer reuse
	require.NoError(t, sender.Send(testBatch()))
	require.NoError(t, sender.Send(testBatch()))

	requests := server.captured()
	require.Len(t, requests, 2)
	for _, req := range requests {
		assert.Equal(t, "gzip", req.ContentEncoding)

		var payload wirePayload
		require.NoError(t, json.Unmarshal(req.Body, &payload))
		assert.Len(t, payload.Logs, 2)
	}
}

func TestHTTPSenderStatusError(t *testing.T) {
	server := startIngestServer(t)
	server.setStatus(fasthttp.StatusServiceUnavailable)
	sender := newTestSender(t, server)
	defer sender.Close()

	err := sender.Send(testBatch())
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, fasthttp.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, "ingestion unavailable", statusErr.Body)
	assert.ErrorIs(t, err, ErrDelivery)
}

func TestHTTPSenderTransportError(t *testing.T) {
	cfg := testConfig()
	cfg.Insecure = true
	sender, err := NewHTTPSender(cfg, WithDial(func(string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	}))
	require.NoError(t, err)

	err = sender.Send(testBatch())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDelivery)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewHTTPSenderValidation(t *testing.T) {
	_, err := NewHTTPSender(nil)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Endpoint = ""
	_, err = NewHTTPSender(cfg)
	assert.Error(t, err)
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		endpoint string
		insecure bool
		expected string
	}{
		{"ingest.example.com/v1/logs", false, "https://ingest.example.com/v1/logs"},
		{"ingest.example.com/v1/logs", true, "http://ingest.example.com/v1/logs"},
		{"https://ingest.example.com", true, "http://ingest.example.com"},
		{"HTTP://ingest.example.com/", false, "https://ingest.example.com"},
		{" localhost:8080/logs ", true, "http://localhost:8080/logs"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildURL(tt.endpoint, tt.insecure))
		})
	}
}
