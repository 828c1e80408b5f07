// FILE: example/fasthttp/main.go
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/logship"
	"github.com/lixenwraith/logship/compat"
)

func main() {
	// Create and configure logger
	cfg, err := logship.NewConfigFromOverrides(
		"endpoint=ingest.example.com/v1/logs",
		"token="+os.Getenv("LOGSHIP_TOKEN"),
		"level=info",
		"batch_size=100",
		"flush_interval_ms=2000",
	)
	if err != nil {
		panic(err)
	}

	logger, err := logship.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Shutdown(5 * time.Second)

	// Create fasthttp adapter with custom level detection
	fasthttpAdapter := compat.NewFastHTTPAdapter(
		logger,
		compat.WithDefaultLevel(logship.LevelInfo),
		compat.WithLevelDetector(customLevelDetector),
	)

	// Configure fasthttp server
	server := &fasthttp.Server{
		Handler: requestHandler,
		Logger:  fasthttpAdapter,

		// Other server settings
		Name:              "MyServer",
		Concurrency:       fasthttp.DefaultConcurrency,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		TCPKeepalive:      true,
		ReduceMemoryUsage: true,
	}

	// Start server
	fmt.Println("Starting server on :8080")
	logger.Info("server starting", "addr", ":8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		logger.Error("server stopped", err)
	}
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain")
	fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
}

func customLevelDetector(msg string) (int64, bool) {
	// Specific fasthttp message patterns first
	if strings.Contains(msg, "connection cannot be served") {
		return logship.LevelWarn, true
	}
	if strings.Contains(msg, "error when serving connection") {
		return logship.LevelError, true
	}

	// Use default detection
	return compat.DetectLogLevel(msg)
}
