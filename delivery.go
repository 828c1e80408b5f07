// FILE: lixenwraith/logship/delivery.go
package logship

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/logship/formatter"
)

// ErrDelivery is wrapped by every error returned from HTTPSender.Send
var ErrDelivery = errors.New("logship: delivery failed")

// Sender delivers one batch. Send is only called from the dispatcher goroutine.
type Sender interface {
	Send(batch Batch) error
}

// StatusError reports a non-2xx response from the ingestion endpoint
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("logship: endpoint returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("logship: endpoint returned status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrDelivery }

// Response bodies longer than this are truncated in StatusError
const maxErrorBodyLen = 512

// HTTPSender posts batches as JSON to the ingestion endpoint
type HTTPSender struct {
	client   *fasthttp.Client
	url      string
	timeout  time.Duration
	compress bool

	mu        sync.Mutex
	formatter *formatter.Formatter
	gzBuf     bytes.Buffer
	gzWriter  *gzip.Writer
}

// SenderOption configures an HTTPSender
type SenderOption func(*HTTPSender)

// WithHTTPClient replaces the default fasthttp client
func WithHTTPClient(client *fasthttp.Client) SenderOption {
	return func(s *HTTPSender) {
		if client != nil {
			s.client = client
		}
	}
}

// WithDial sets the dial function of the sender's client
func WithDial(dial fasthttp.DialFunc) SenderOption {
	return func(s *HTTPSender) {
		s.client.Dial = dial
	}
}

// NewHTTPSender creates a sender for the endpoint, token format and transport settings in cfg
func NewHTTPSender(cfg *Config, opts ...SenderOption) (*HTTPSender, error) {
	if cfg == nil {
		return nil, fmtErrorf("configuration cannot be nil")
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmtErrorf("endpoint cannot be empty")
	}

	timeout := time.Duration(cfg.RequestTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = time.Duration(DefaultConfig().RequestTimeoutMs) * time.Millisecond
	}

	s := &HTTPSender{
		client: &fasthttp.Client{
			Name:         "logship",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		url:       BuildURL(cfg.Endpoint, cfg.Insecure),
		timeout:   timeout,
		compress:  cfg.Compress,
		formatter: newFormatter(cfg),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.compress {
		s.gzWriter = gzip.NewWriter(&s.gzBuf)
	}

	return s, nil
}

// URL returns the full request URL
func (s *HTTPSender) URL() string {
	return s.url
}

// Send serializes the batch and performs one POST. No retry is attempted.
func (s *HTTPSender) Send(batch Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.formatter.BeginBatch(batch.Token)
	for _, r := range batch.Records {
		s.formatter.AppendRecord(r.Timestamp, r.Level, r.Body, r.Attributes)
	}
	body := s.formatter.EndBatch()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")

	if s.compress {
		compressed, err := s.gzip(body)
		if err != nil {
			return fmt.Errorf("%w: compress body: %v", ErrDelivery, err)
		}
		req.Header.Set(fasthttp.HeaderContentEncoding, "gzip")
		req.SetBody(compressed)
	} else {
		req.SetBody(body)
	}

	if err := s.client.DoTimeout(req, resp, s.timeout); err != nil {
		return fmt.Errorf("%w: post %s: %v", ErrDelivery, s.url, err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		respBody := resp.Body()
		if len(respBody) > maxErrorBodyLen {
			respBody = respBody[:maxErrorBodyLen]
		}
		return &StatusError{StatusCode: status, Body: string(respBody)}
	}

	return nil
}

// gzip compresses body into the reusable buffer
func (s *HTTPSender) gzip(body []byte) ([]byte, error) {
	s.gzBuf.Reset()
	s.gzWriter.Reset(&s.gzBuf)
	if _, err := s.gzWriter.Write(body); err != nil {
		return nil, err
	}
	if err := s.gzWriter.Close(); err != nil {
		return nil, err
	}
	return s.gzBuf.Bytes(), nil
}

// Close releases idle connections held by the client
func (s *HTTPSender) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// BuildURL prefixes the endpoint with http when insecure, https otherwise.
// Any scheme already present on the endpoint is replaced.
func BuildURL(endpoint string, insecure bool) string {
	host := strings.TrimSpace(endpoint)
	lower := strings.ToLower(host)
	switch {
	case strings.HasPrefix(lower, "https://"):
		host = host[len("https://"):]
	case strings.HasPrefix(lower, "http://"):
		host = host[len("http://"):]
	}
	host = strings.TrimSuffix(host, "/")

	scheme := "https"
	if insecure {
		scheme = "http"
	}
	return scheme + "://" + host
}
