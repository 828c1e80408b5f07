// FILE: lixenwraith/logship/config.go
package logship

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/lixenwraith/config"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/logship/formatter"
	"github.com/lixenwraith/logship/sanitizer"
)

// configPrefix is the TOML table holding logger settings
const configPrefix = "logship."

// Config holds all logger configuration values
type Config struct {
	// Destination
	Endpoint string `toml:"endpoint" yaml:"endpoint" json:"endpoint"` // Ingestion host and path, scheme optional
	Token    string `toml:"token" yaml:"token" json:"token"`          // Sent in every batch body
	Insecure bool   `toml:"insecure" yaml:"insecure" json:"insecure"` // http instead of https

	// Batching
	BatchSize        int64 `toml:"batch_size" yaml:"batch_size" json:"batch_size"`                         // Record count that triggers a flush
	FlushIntervalMs  int64 `toml:"flush_interval_ms" yaml:"flush_interval_ms" json:"flush_interval_ms"`    // Interval for time-based flush
	RequestTimeoutMs int64 `toml:"request_timeout_ms" yaml:"request_timeout_ms" json:"request_timeout_ms"` // Per-request transport timeout
	Compress         bool  `toml:"compress" yaml:"compress" json:"compress"`                               // gzip request bodies

	// Records
	Level           int64  `toml:"level" yaml:"level" json:"level"`
	TraceDepth      int64  `toml:"trace_depth" yaml:"trace_depth" json:"trace_depth"`                // Call trace attribute depth (0-10)
	TimestampFormat string `toml:"timestamp_format" yaml:"timestamp_format" json:"timestamp_format"` // Wire timestamp layout
	Sanitization    string `toml:"sanitization" yaml:"sanitization" json:"sanitization"`             // raw, txt, json or shell

	// Heartbeat configuration
	HeartbeatLevel     int64 `toml:"heartbeat_level" yaml:"heartbeat_level" json:"heartbeat_level"`                // 0=disabled, 1=proc only, 2=proc+sys
	HeartbeatIntervalS int64 `toml:"heartbeat_interval_s" yaml:"heartbeat_interval_s" json:"heartbeat_interval_s"` // Interval seconds for heartbeat

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr" yaml:"internal_errors_to_stderr" json:"internal_errors_to_stderr"` // Write internal errors to stderr
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Endpoint: "",
	Token:    "",
	Insecure: false,

	BatchSize:        10,
	FlushIntervalMs:  5000,
	RequestTimeoutMs: 10000,
	Compress:         false,

	Level:           LevelDebug,
	TraceDepth:      0,
	TimestampFormat: formatter.DefaultTimestampFormat,
	Sanitization:    string(sanitizer.PolicyRaw),

	HeartbeatLevel:     0,
	HeartbeatIntervalS: 60,

	InternalErrorsToStderr: true,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	// Create a copy to prevent modifications to the original
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from a TOML, YAML or JSON file and returns a validated Config.
// YAML (.yaml, .yml) and JSON (.json, .jsonc) files keep settings under a top-level "logship" key,
// TOML under [logship]. JSON files may contain comments and trailing commas.
func NewConfigFromFile(path string) (*Config, error) {
	cfg, err := ReadConfigFile(path)
	if err != nil {
		return nil, err
	}

	// Validate the loaded configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ReadConfigFile loads a configuration file over the defaults without validating it,
// for callers that complete the values before use.
func ReadConfigFile(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAMLConfig(path)
	case ".json", ".jsonc":
		return loadJSONConfig(path)
	default:
		return loadTOMLConfig(path)
	}
}

// loadTOMLConfig uses lixenwraith/config as a loader
func loadTOMLConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()

	// Register the struct to enable proper unmarshaling
	if err := loader.RegisterStruct(configPrefix, *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	// Load from file (handles file not found gracefully)
	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	// Extract values into our Config struct
	if err := extractConfig(loader, configPrefix, cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	return cfg, nil
}

// loadYAMLConfig decodes the "logship" section of a YAML file over the defaults
func loadYAMLConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmtErrorf("failed to read config from %s: %w", path, err)
	}

	doc := struct {
		Logship *Config `yaml:"logship"`
	}{Logship: cfg}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmtErrorf("failed to parse config from %s: %w", path, err)
	}

	return cfg, nil
}

// loadJSONConfig decodes the "logship" object of a JSON file over the defaults
func loadJSONConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmtErrorf("failed to read config from %s: %w", path, err)
	}

	doc := struct {
		Logship *Config `json:"logship"`
	}{Logship: cfg}

	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmtErrorf("failed to parse config from %s: %w", path, err)
	}

	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	// Apply overrides using reflection
	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmtErrorf("failed to apply overrides: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig extracts values from lixenwraith/config into our Config struct
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		// Get the toml tag to determine the config key
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue // Use default value
		}

		// Set the field value with type conversion
		if err := setFieldValue(fieldValue, val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	// Create a map of field names to field values for efficient lookup
	fieldMap := make(map[string]reflect.Value)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}

		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		case float64:
			// Decoders without an integer type hand back whole floats
			if v != float64(int64(v)) {
				return fmt.Errorf("expected integer, got %v", v)
			}
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	// String validations
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmtErrorf("endpoint cannot be empty")
	}

	if strings.TrimSpace(c.Token) == "" {
		return fmtErrorf("token cannot be empty")
	}

	if strings.TrimSpace(c.TimestampFormat) == "" {
		return fmtErrorf("timestamp_format cannot be empty")
	}

	if !sanitizer.IsPolicy(c.Sanitization) {
		return fmtErrorf("invalid sanitization: '%s' (use raw, txt, json, or shell)", c.Sanitization)
	}

	// Numeric validations
	if c.BatchSize <= 0 {
		return fmtErrorf("batch_size must be positive: %d", c.BatchSize)
	}

	if c.FlushIntervalMs <= 0 || c.RequestTimeoutMs <= 0 {
		return fmtErrorf("interval settings must be positive")
	}

	if c.TraceDepth < 0 || c.TraceDepth > maxTraceDepth {
		return fmtErrorf("trace_depth must be between 0 and %d: %d", maxTraceDepth, c.TraceDepth)
	}

	if c.HeartbeatLevel < 0 || c.HeartbeatLevel > 2 {
		return fmtErrorf("heartbeat_level must be between 0 and 2: %d", c.HeartbeatLevel)
	}

	// Cross-field validations
	if c.HeartbeatLevel > 0 && c.HeartbeatIntervalS <= 0 {
		return fmtErrorf("heartbeat_interval_s must be positive when heartbeat is enabled: %d",
			c.HeartbeatIntervalS)
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}
