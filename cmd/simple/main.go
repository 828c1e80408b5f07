// FILE: lixenwraith/logship/cmd/simple/main.go
package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/lixenwraith/logship"
	"github.com/lixenwraith/logship/capture"
	"github.com/lixenwraith/logship/internal/sink"
)

const configFile = "simple_config.toml"

// Example TOML content, endpoint filled in once the local sink is listening
const tomlTemplate = `
# Example simple_config.toml
[logship]
  endpoint = "%s/ingest"
  token = "simple-token"
  insecure = true
  level = -4 # Debug
  batch_size = 5
  flush_interval_ms = 100
  trace_depth = 2
  sanitization = "txt"
  # Other settings use defaults
`

func main() {
	fmt.Println("--- Simple Logship Example ---")

	// --- Local ingestion sink ---
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to listen: %v\n", err)
		os.Exit(1)
	}
	server := sink.New(sink.WithToken("simple-token"), sink.WithRetention())
	go func() { _ = server.Serve(ln) }()
	defer server.Shutdown()

	// --- Setup Config ---
	err = os.WriteFile(configFile, []byte(fmt.Sprintf(tomlTemplate, ln.Addr())), 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created config file: %s\n", configFile)
	defer os.Remove(configFile)

	cfg, err := logship.NewConfigFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// --- Initialize the process-wide logger ---
	if err := logship.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Logger initialized.")

	// --- Logging ---
	logship.Debug("This is a debug message.", "user_id", 123)
	logship.Info("Application starting...")
	logship.Warn("Potential issue detected.", "threshold", 0.95)
	logship.Error("An error occurred!", errors.New("upstream timeout"), "code", 500)
	logship.Info("Control\ncharacters\tare hex encoded by the txt policy")

	// Console output can be shipped too
	stdout := capture.Stdout(logship.Default())
	fmt.Fprintln(stdout, "This line is printed and shipped.")
	_ = stdout.Close()

	// Logging from goroutines
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logship.Info("Goroutine started", "id", id)
			time.Sleep(time.Duration(50+id*50) * time.Millisecond)
			logship.Info("Goroutine finished", "id", id)
		}(i)
	}

	wg.Wait()
	fmt.Println("Goroutines finished.")

	// --- Shutdown Logger ---
	fmt.Println("Shutting down logger...")
	if err := logship.Shutdown(2 * time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "Logger shutdown error: %v\n", err)
	} else {
		fmt.Println("Logger shutdown complete.")
	}

	// --- What the endpoint saw ---
	for _, r := range server.Records() {
		fmt.Printf("%s %-7s %q %v\n", r.Timestamp, r.Level, r.Body, r.Attributes)
	}
	fmt.Println("--- Example Finished ---")
}
