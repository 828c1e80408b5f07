// FILE: lixenwraith/logship/internal/sink/sink.go
// Package sink is a local ingestion endpoint used by the commands and examples.
// It accepts the batch payload logship posts, decoding gzip bodies, and keeps counters.
package sink

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/valyala/fasthttp"
)

// Record is one entry of a received batch
type Record struct {
	Timestamp  string            `json:"timestamp"`
	Body       string            `json:"body"`
	Level      string            `json:"level"`
	Attributes map[string]string `json:"attributes"`
}

// Batch is a decoded request body
type Batch struct {
	Token string   `json:"token"`
	Type  string   `json:"type"`
	Logs  []Record `json:"logs"`
}

// Server is an in-process ingestion endpoint
type Server struct {
	srv     *fasthttp.Server
	token   string
	status  atomic.Int64
	onBatch func(Batch)

	batches  atomic.Uint64
	records  atomic.Uint64
	rejected atomic.Uint64

	mu   sync.Mutex
	keep bool
	kept []Record
}

// Option configures a Server
type Option func(*Server)

// WithToken rejects batches whose token differs with 401
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = token
	}
}

// WithStatus sets the status code returned for accepted batches
func WithStatus(status int) Option {
	return func(s *Server) {
		s.status.Store(int64(status))
	}
}

// WithBatchHandler is called for every accepted batch, from the serving goroutine
func WithBatchHandler(fn func(Batch)) Option {
	return func(s *Server) {
		s.onBatch = fn
	}
}

// WithRetention keeps every received record for Records
func WithRetention() Option {
	return func(s *Server) {
		s.keep = true
	}
}

// New creates a server; call Serve or ListenAndServe to start it
func New(opts ...Option) *Server {
	s := &Server{}
	s.status.Store(fasthttp.StatusOK)
	for _, opt := range opts {
		opt(s)
	}
	s.srv = &fasthttp.Server{
		Handler:               s.handle,
		Name:                  "logship-sink",
		NoDefaultServerHeader: true,
	}
	return s
}

// Serve accepts connections on ln until Shutdown
func (s *Server) Serve(ln net.Listener) error {
	return s.srv.Serve(ln)
}

// ListenAndServe listens on the TCP address and serves until Shutdown
func (s *Server) ListenAndServe(addr string) error {
	return s.srv.ListenAndServe(addr)
}

// Shutdown stops the server and waits for open requests
func (s *Server) Shutdown() error {
	return s.srv.Shutdown()
}

// SetStatus changes the status code returned for accepted batches
func (s *Server) SetStatus(status int) {
	s.status.Store(int64(status))
}

// Batches returns the number of accepted batches
func (s *Server) Batches() uint64 {
	return s.batches.Load()
}

// Received returns the number of records in accepted batches
func (s *Server) Received() uint64 {
	return s.records.Load()
}

// Rejected returns the number of requests answered with a non-2xx status
func (s *Server) Rejected() uint64 {
	return s.rejected.Load()
}

// Records returns a copy of the retained records
func (s *Server) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.kept...)
}

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		s.reject(ctx, fasthttp.StatusMethodNotAllowed, "POST only")
		return
	}

	body := ctx.Request.Body()
	if string(ctx.Request.Header.Peek(fasthttp.HeaderContentEncoding)) == "gzip" {
		var err error
		if body, err = ctx.Request.BodyGunzip(); err != nil {
			s.reject(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("gunzip: %v", err))
			return
		}
	}

	var batch Batch
	if err := json.Unmarshal(body, &batch); err != nil {
		s.reject(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("decode: %v", err))
		return
	}
	if batch.Type != "logs" {
		s.reject(ctx, fasthttp.StatusBadRequest, "unexpected type "+batch.Type)
		return
	}
	if s.token != "" && batch.Token != s.token {
		s.reject(ctx, fasthttp.StatusUnauthorized, "invalid token")
		return
	}

	status := int(s.status.Load())
	if status < 200 || status >= 300 {
		s.reject(ctx, status, "ingestion unavailable")
		return
	}

	s.batches.Add(1)
	s.records.Add(uint64(len(batch.Logs)))
	if s.keep {
		s.mu.Lock()
		s.kept = append(s.kept, batch.Logs...)
		s.mu.Unlock()
	}
	if s.onBatch != nil {
		s.onBatch(batch)
	}

	ctx.SetStatusCode(status)
}

func (s *Server) reject(ctx *fasthttp.RequestCtx, status int, msg string) {
	s.rejected.Add(1)
	ctx.SetStatusCode(status)
	ctx.SetBodyString(msg)
}
