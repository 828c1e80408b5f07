// FILE: example/sink/main.go
// A standalone ingestion endpoint printing every received record. Point a logger at it:
//
//	go run ./example/sink -listen 127.0.0.1:8080 -token demo
//	echo hello | go run ./cmd/logship -e 127.0.0.1:8080/ingest -t demo --insecure
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/logship/internal/sink"
)

func main() {
	listen := pflag.String("listen", "127.0.0.1:8080", "address to listen on")
	token := pflag.String("token", "", "reject batches with a different token")
	status := pflag.Int("status", fasthttp.StatusOK, "status returned for accepted batches")
	pflag.Parse()

	opts := []sink.Option{
		sink.WithStatus(*status),
		sink.WithBatchHandler(printBatch),
	}
	if *token != "" {
		opts = append(opts, sink.WithToken(*token))
	}
	server := sink.New(opts...)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		_ = server.Shutdown()
	}()

	fmt.Printf("Sink listening on %s\n", *listen)
	if err := server.ListenAndServe(*listen); err != nil {
		fmt.Fprintf(os.Stderr, "Sink error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nReceived %d records in %d batches, rejected %d requests\n",
		server.Received(), server.Batches(), server.Rejected())
}

func printBatch(b sink.Batch) {
	fmt.Printf("--- batch of %d ---\n", len(b.Logs))
	for _, r := range b.Logs {
		keys := make([]string, 0, len(r.Attributes))
		for k := range r.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sb strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%q", k, r.Attributes[k])
		}
		fmt.Printf("%s [%s] %s%s\n", r.Timestamp, r.Level, r.Body, sb.String())
	}
}
