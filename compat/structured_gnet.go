// FILE: lixenwraith/logship/compat/structured_gnet.go
package compat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lixenwraith/logship"
)

// Detects structured patterns like "key=%v" or "key: %v"
var keyValuePattern = regexp.MustCompile(`(\w+)\s*[:=]\s*%[vsdqxXeEfFgGpbcU]`)

// parseFormat extracts structured fields from printf-style format strings.
// It returns the free text as body and the key/value pairs as attributes.
func parseFormat(format string, args []any) (string, []any) {
	matches := keyValuePattern.FindAllStringSubmatchIndex(format, -1)
	if len(matches) == 0 || len(matches) > len(args) {
		// Fallback to simple message if pattern doesn't match
		return fmt.Sprintf(format, args...), nil
	}

	// Verbs in the text between matches consume args too
	needed := len(matches)
	lastEnd := 0
	for _, match := range matches {
		needed += countVerbs(format[lastEnd:match[0]])
		lastEnd = match[1]
	}
	if needed > len(args) {
		return fmt.Sprintf(format, args...), nil
	}

	var body []string
	attrs := make([]any, 0, len(matches)*2)
	lastEnd = 0
	argIndex := 0

	for _, match := range matches {
		// Text before this match is part of the body
		segment := format[lastEnd:match[0]]
		n := countVerbs(segment)
		if prefix := strings.TrimSpace(fmt.Sprintf(segment, args[argIndex:argIndex+n]...)); prefix != "" {
			body = append(body, prefix)
		}
		argIndex += n

		key := format[match[2]:match[3]]
		attrs = append(attrs, key, args[argIndex])
		argIndex++

		lastEnd = match[1]
	}

	// Handle remaining format string and args
	if lastEnd < len(format) {
		remaining := strings.TrimSpace(fmt.Sprintf(format[lastEnd:], args[argIndex:]...))
		if remaining != "" {
			body = append(body, remaining)
		}
	}

	return strings.Join(body, " "), attrs
}

// countVerbs returns the number of printf verbs in s, ignoring %% escapes
func countVerbs(s string) int {
	count := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			continue
		}
		i++
		// Skip flags, width and precision
		for i < len(s) && strings.IndexByte("+-# 0123456789.", s[i]) >= 0 {
			i++
		}
		if i < len(s) && s[i] != '%' {
			count++
		}
	}
	return count
}

// StructuredGnetAdapter provides enhanced structured logging for gnet
type StructuredGnetAdapter struct {
	*GnetAdapter
	extractFields bool
}

// NewStructuredGnetAdapter creates a gnet adapter with structured field extraction
func NewStructuredGnetAdapter(logger *logship.Logger, opts ...GnetOption) *StructuredGnetAdapter {
	return &StructuredGnetAdapter{
		GnetAdapter:   NewGnetAdapter(logger, opts...),
		extractFields: true,
	}
}

func (a *StructuredGnetAdapter) logf(level int64, format string, args []any) {
	body, attrs := parseFormat(format, args)
	a.logger.Log(level, body, append(attrs, "source", "gnet")...)
}

// Debugf logs with structured field extraction
func (a *StructuredGnetAdapter) Debugf(format string, args ...any) {
	if a.extractFields {
		a.logf(logship.LevelDebug, format, args)
	} else {
		a.GnetAdapter.Debugf(format, args...)
	}
}

// Infof logs with structured field extraction
func (a *StructuredGnetAdapter) Infof(format string, args ...any) {
	if a.extractFields {
		a.logf(logship.LevelInfo, format, args)
	} else {
		a.GnetAdapter.Infof(format, args...)
	}
}

// Warnf logs with structured field extraction
func (a *StructuredGnetAdapter) Warnf(format string, args ...any) {
	if a.extractFields {
		a.logf(logship.LevelWarn, format, args)
	} else {
		a.GnetAdapter.Warnf(format, args...)
	}
}

// Errorf logs with structured field extraction
func (a *StructuredGnetAdapter) Errorf(format string, args ...any) {
	if a.extractFields {
		a.logf(logship.LevelError, format, args)
	} else {
		a.GnetAdapter.Errorf(format, args...)
	}
}
