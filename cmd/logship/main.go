// FILE: lixenwraith/logship/cmd/logship/main.go
// Command logship ships lines read from stdin to an ingestion endpoint.
//
//	tail -F app.log | logship -e ingest.example.com/v1/logs -t $TOKEN --parse
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/lixenwraith/logship"
	"github.com/lixenwraith/logship/compat"
)

const tokenEnvVar = "LOGSHIP_TOKEN"

type options struct {
	configPath    string
	endpoint      string
	token         string
	insecure      bool
	batchSize     int64
	flushInterval time.Duration
	compress      bool
	lineLevel     string
	detectLevel   bool
	parse         bool
	tee           bool
	overrides     []string
	attrs         []string
	shutdownWait  time.Duration
}

func main() {
	var opts options
	flags := pflag.NewFlagSet("logship", pflag.ExitOnError)
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (.toml, .yaml, .json)")
	flags.StringVarP(&opts.endpoint, "endpoint", "e", "", "ingestion endpoint, host and path")
	flags.StringVarP(&opts.token, "token", "t", "", "ingestion token (default $"+tokenEnvVar+")")
	flags.BoolVar(&opts.insecure, "insecure", false, "use http instead of https")
	flags.Int64Var(&opts.batchSize, "batch-size", 0, "records per batch")
	flags.DurationVar(&opts.flushInterval, "flush-interval", 0, "time-based flush interval")
	flags.BoolVar(&opts.compress, "compress", false, "gzip request bodies")
	flags.StringVarP(&opts.lineLevel, "level", "l", "info", "level for shipped lines")
	flags.BoolVar(&opts.detectLevel, "detect-level", false, "derive the level from line content")
	flags.BoolVar(&opts.parse, "parse", false, "extract JSON and key=value attributes from lines")
	flags.BoolVar(&opts.tee, "tee", false, "copy input to stdout")
	flags.StringArrayVarP(&opts.overrides, "set", "s", nil, "config override key=value (repeatable)")
	flags.StringArrayVarP(&opts.attrs, "attr", "a", nil, "attribute key=value added to every line (repeatable)")
	flags.DurationVar(&opts.shutdownWait, "shutdown-timeout", 10*time.Second, "time allowed for the final delivery")
	_ = flags.Parse(os.Args[1:])

	if err := run(flags, opts); err != nil {
		fmt.Fprintf(os.Stderr, "logship: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, explicit flags and overrides
func loadConfig(flags *pflag.FlagSet, opts options) (*logship.Config, error) {
	cfg := logship.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = logship.ReadConfigFile(opts.configPath); err != nil {
			return nil, err
		}
	}

	if cfg.Token == "" {
		cfg.Token = os.Getenv(tokenEnvVar)
	}

	if flags.Changed("endpoint") {
		cfg.Endpoint = opts.endpoint
	}
	if flags.Changed("token") {
		cfg.Token = opts.token
	}
	if flags.Changed("insecure") {
		cfg.Insecure = opts.insecure
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize = opts.batchSize
	}
	if flags.Changed("flush-interval") {
		cfg.FlushIntervalMs = opts.flushInterval.Milliseconds()
	}
	if flags.Changed("compress") {
		cfg.Compress = opts.compress
	}

	if err := cfg.ApplyOverride(opts.overrides...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseAttrs converts key=value flags into logger attributes
func parseAttrs(pairs []string) ([]any, error) {
	attrs := make([]any, 0, len(pairs)*2)
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid attribute %q, expected key=value", p)
		}
		attrs = append(attrs, key, value)
	}
	return attrs, nil
}

func run(flags *pflag.FlagSet, opts options) error {
	cfg, err := loadConfig(flags, opts)
	if err != nil {
		return err
	}

	level, err := logship.Level(opts.lineLevel)
	if err != nil {
		return err
	}
	// Lines below the logger's level would be filtered silently
	if level < cfg.Level {
		cfg.Level = level
	}

	attrs, err := parseAttrs(opts.attrs)
	if err != nil {
		return err
	}

	logger, err := logship.NewLogger(cfg)
	if err != nil {
		return err
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "logship: reading from terminal, Ctrl-D to finish")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	readErr := make(chan error, 1)
	go func() {
		readErr <- readLines(logger, level, attrs, opts)
	}()

	select {
	case err = <-readErr:
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "logship: interrupted, delivering buffered lines")
	}

	shutdownErr := logger.Shutdown(opts.shutdownWait)

	stats := logger.Stats()
	fmt.Fprintf(os.Stderr, "logship: enqueued=%d delivered=%d dropped=%d batches=%d failed=%d\n",
		stats.Enqueued, stats.Delivered, stats.Dropped, stats.SentBatches, stats.FailedBatches)

	if err != nil {
		return err
	}
	return shutdownErr
}

func readLines(logger *logship.Logger, level int64, attrs []any, opts options) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if opts.tee {
			fmt.Println(line)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		lineLevel := level
		if opts.detectLevel {
			if detected, ok := compat.DetectLogLevel(line); ok {
				lineLevel = detected
			}
		}

		if !opts.parse {
			logger.Log(lineLevel, line, attrs...)
			continue
		}

		body, fields := compat.ParseMessage(line)
		logger.Log(lineLevel, body, append([]any{fields}, attrs...)...)
	}

	return scanner.Err()
}
