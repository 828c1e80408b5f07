// FILE: lixenwraith/logship/cmd/heartbeat/main.go
package main

import (
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lixenwraith/logship"
	"github.com/lixenwraith/logship/internal/sink"
)

func main() {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to listen: %v\n", err)
		os.Exit(1)
	}

	// Print heartbeat records as the sink receives them
	server := sink.New(sink.WithBatchHandler(func(b sink.Batch) {
		for _, r := range b.Logs {
			if r.Body == "heartbeat" {
				fmt.Printf("  %s %-5s %s\n", r.Timestamp, r.Attributes["type"], formatAttrs(r.Attributes))
			}
		}
	}))
	go func() { _ = server.Serve(ln) }()
	defer server.Shutdown()

	// Test cycle: disable -> PROC -> PROC+SYS -> PROC -> disable
	levels := []struct {
		level       int64
		description string
	}{
		{0, "Heartbeats disabled"},
		{1, "PROC heartbeats only"},
		{2, "PROC+SYS heartbeats"},
		{1, "PROC heartbeats only (reducing from 2)"},
		{0, "Heartbeats disabled (final)"},
	}

	for _, levelConfig := range levels {
		// A logger's configuration is fixed, so each phase gets its own instance
		cfg, err := logship.NewConfigFromOverrides(
			"endpoint="+ln.Addr().String()+"/ingest",
			"token=heartbeat-demo",
			"insecure=true",
			"level=debug",
			"flush_interval_ms=500",
			"heartbeat_interval_s=2",
			fmt.Sprintf("heartbeat_level=%d", levelConfig.level),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		logger, err := logship.NewLogger(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\n--- Testing heartbeat level %d: %s ---\n", levelConfig.level, levelConfig.description)

		// Generate some logs to move heartbeat counters
		for j := 0; j < 10; j++ {
			logger.Debug("Debug test log", "iteration", j, "level_test", levelConfig.level)
			logger.Info("Info test log", "iteration", j, "level_test", levelConfig.level)
			logger.Warn("Warning test log", "iteration", j, "level_test", levelConfig.level)
			time.Sleep(50 * time.Millisecond)
		}

		// Wait for heartbeats to generate (slightly longer than the interval)
		waitTime := 3 * time.Second
		fmt.Printf("Waiting %v for heartbeats...\n", waitTime)
		time.Sleep(waitTime)

		if err := logger.Shutdown(2 * time.Second); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to shut down logger: %v\n", err)
		}
	}

	fmt.Printf("\nSink received %d records in %d batches\n", server.Received(), server.Batches())
	fmt.Println("Heartbeat test program completed successfully")
}

func formatAttrs(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		if k != "type" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+attrs[k])
	}
	return strings.Join(parts, " ")
}
