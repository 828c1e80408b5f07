// FILE: lixenwraith/logship/cmd/stress/main.go
package main

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/logship"
	"github.com/lixenwraith/logship/internal/sink"
)

const stressToken = "stress-token"

var (
	totalBursts    = pflag.Int("bursts", 100, "total bursts to submit")
	logsPerBurst   = pflag.Int("logs-per-burst", 500, "records per burst")
	maxMessageSize = pflag.Int("max-message-size", 2000, "largest random body")
	numWorkers     = pflag.Int("workers", 64, "concurrent producers")
	batchSize      = pflag.Int64("batch-size", 200, "records per batch")
	compress       = pflag.Bool("compress", true, "gzip request bodies")
)

var levels = []int64{
	logship.LevelDebug,
	logship.LevelInfo,
	logship.LevelWarn,
	logship.LevelError,
}

func generateRandomMessage(rng *rand.Rand, size int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[rng.Intn(len(chars))])
	}
	return sb.String()
}

// logBurst simulates a burst of logging activity
func logBurst(logger *logship.Logger, rng *rand.Rand, burstID int) {
	for i := 0; i < *logsPerBurst; i++ {
		level := levels[rng.Intn(len(levels))]
		msg := generateRandomMessage(rng, rng.Intn(*maxMessageSize)+10)
		logger.Log(level, msg,
			"wkr", burstID%*numWorkers,
			"bst", burstID,
			"seq", i,
			"rnd", rng.Int63(),
		)
	}
}

func main() {
	pflag.Parse()

	fmt.Println("--- Logship Stress Test ---")

	// --- Start local ingestion sink ---
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to listen: %v\n", err)
		os.Exit(1)
	}
	server := sink.New(sink.WithToken(stressToken))
	go func() {
		if err := server.Serve(ln); err != nil {
			fmt.Fprintf(os.Stderr, "Sink stopped: %v\n", err)
		}
	}()
	defer server.Shutdown()
	fmt.Printf("Sink listening on %s\n", ln.Addr())

	// --- Initialize Logger ---
	logger, err := logship.NewBuilder().
		Endpoint(ln.Addr().String() + "/ingest").
		Token(stressToken).
		Insecure(true).
		BatchSize(*batchSize).
		FlushInterval(50 * time.Millisecond).
		Compress(*compress).
		HeartbeatLevel(1).
		HeartbeatIntervalS(1).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting stress test: %d workers, %d bursts, %d logs/burst.\n",
		*numWorkers, *totalBursts, *logsPerBurst)
	fmt.Println("Press Ctrl+C to stop early.")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Run Test ---
	burstChan := make(chan int, *numWorkers)
	var completedBursts atomic.Int64
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(burstChan)
		for i := 1; i <= *totalBursts; i++ {
			select {
			case burstChan <- i:
			case <-gctx.Done():
				fmt.Println("\n[Signal Received] Halting burst submission.")
				return nil
			}
		}
		return nil
	})

	startTime := time.Now()
	for w := 0; w < *numWorkers; w++ {
		seed := startTime.UnixNano() + int64(w)
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed))
			for burstID := range burstChan {
				logBurst(logger, rng, burstID)
				completed := completedBursts.Add(1)
				if completed%10 == 0 || completed == int64(*totalBursts) {
					fmt.Printf("\rProgress: %d/%d bursts completed", completed, *totalBursts)
				}
			}
			return nil
		})
	}

	_ = g.Wait()
	duration := time.Since(startTime)
	finalCompleted := completedBursts.Load()

	fmt.Printf("\n--- Producers Finished ---")
	fmt.Printf("\nCompleted %d/%d bursts in %v\n", finalCompleted, *totalBursts, duration.Round(time.Millisecond))
	if finalCompleted > 0 && duration.Seconds() > 0 {
		logsPerSec := float64(finalCompleted*int64(*logsPerBurst)) / duration.Seconds()
		fmt.Printf("Approximate Logs/sec: %.2f\n", logsPerSec)
	}

	// --- Shutdown Logger ---
	fmt.Println("Shutting down logger (allowing up to 30s)...")
	if err := logger.Shutdown(30 * time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "Logger shutdown error: %v\n", err)
		os.Exit(1)
	}

	// --- Verify ---
	stats := logger.Stats()
	fmt.Printf("Enqueued: %d  Delivered: %d  Dropped: %d  Batches: %d  Failed: %d\n",
		stats.Enqueued, stats.Delivered, stats.Dropped, stats.SentBatches, stats.FailedBatches)
	fmt.Printf("Sink received: %d records in %d batches\n", server.Received(), server.Batches())

	if stats.Dropped != 0 || stats.Delivered != stats.Enqueued || server.Received() != stats.Delivered {
		fmt.Fprintln(os.Stderr, "FAIL: records were lost")
		os.Exit(1)
	}
	fmt.Println("OK: every enqueued record reached the sink.")
}
