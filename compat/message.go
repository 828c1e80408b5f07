// FILE: lixenwraith/logship/compat/message.go
package compat

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Matches key=value and key="quoted value" pairs
var messagePairPattern = regexp.MustCompile(`([A-Za-z_][\w.\-]*)=("(?:[^"\\]|\\.)*"|\S+)`)

// ParseMessage splits free-form text emitted by a host framework into a body and attributes.
// A JSON object yields its fields, with "msg" or "message" taken as the body.
// Text containing key=value pairs yields those pairs and the remaining words as the body.
// Anything else is returned unchanged as the body with no attributes.
func ParseMessage(text string) (string, map[string]any) {
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
			body := ""
			for _, key := range []string{"msg", "message"} {
				if v, ok := obj[key].(string); ok {
					body = v
					delete(obj, key)
					break
				}
			}
			return body, obj
		}
	}

	matches := messagePairPattern.FindAllStringSubmatchIndex(trimmed, -1)
	if len(matches) == 0 {
		return trimmed, nil
	}

	fields := make(map[string]any, len(matches))
	var rest []string
	lastEnd := 0
	for _, m := range matches {
		// Only pairs that start a word count
		if m[0] > 0 && trimmed[m[0]-1] != ' ' && trimmed[m[0]-1] != '\t' {
			continue
		}
		if part := strings.TrimSpace(trimmed[lastEnd:m[0]]); part != "" {
			rest = append(rest, part)
		}

		key := trimmed[m[2]:m[3]]
		value := trimmed[m[4]:m[5]]
		if strings.HasPrefix(value, `"`) {
			if unquoted, err := strconv.Unquote(value); err == nil {
				value = unquoted
			}
		}
		fields[key] = value
		lastEnd = m[1]
	}

	if len(fields) == 0 {
		return trimmed, nil
	}
	if part := strings.TrimSpace(trimmed[lastEnd:]); part != "" {
		rest = append(rest, part)
	}

	return strings.Join(rest, " "), fields
}
