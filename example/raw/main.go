// FILE: example/raw/main.go
package main

import (
	"fmt"
	"net"
	"time"

	"github.com/lixenwraith/logship"
	"github.com/lixenwraith/logship/internal/sink"
)

// TestPayload defines a struct for testing complex type stringification.
type TestPayload struct {
	RequestID uint64
	User      string
	Metrics   map[string]float64
}

func main() {
	fmt.Println("--- Logship Attribute Stringification Test ---")

	// --- 1. Define the records to be tested ---
	// Record 1: A byte slice with special characters (newline, tab, null).
	byteRecord := []byte("binary\ndata\twith\x00null")

	// Record 2: A struct containing a uint64, a string, and a map.
	structRecord := TestPayload{
		RequestID: 9223372036854775807, // A large uint64
		User:      "test_user",
		Metrics: map[string]float64{
			"latency_ms":  15.7,
			"cpu_percent": 88.2,
		},
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		fmt.Printf("Failed to listen: %v\n", err)
		return
	}
	server := sink.New(sink.WithBatchHandler(func(b sink.Batch) {
		for _, r := range b.Logs {
			fmt.Printf("  body=%q\n", r.Body)
			for k, v := range r.Attributes {
				fmt.Printf("    %s=%q\n", k, v)
			}
		}
	}))
	go func() { _ = server.Serve(ln) }()
	defer server.Shutdown()

	// --- 2. Ship the same records under each sanitization policy ---
	for i, policy := range []string{"raw", "json", "txt", "shell"} {
		fmt.Printf("\n[%d] sanitization=%s\n", i+1, policy)

		logger, err := logship.NewBuilder().
			Endpoint(ln.Addr().String() + "/ingest").
			Token("raw-demo").
			Insecure(true).
			Sanitization(policy).
			Build()
		if err != nil {
			fmt.Printf("Failed to initialize logger: %v\n", err)
			return
		}

		logger.Info("Byte Record ->", "payload", byteRecord)
		logger.Info("Struct Record ->", "payload", structRecord)
		logger.Info("Nil Record ->", "payload", nil)

		// Shutdown delivers what is buffered before returning
		if err := logger.Shutdown(time.Second); err != nil {
			fmt.Printf("Shutdown error: %v\n", err)
		}
	}

	fmt.Println("\n--- Test Complete ---")
}
