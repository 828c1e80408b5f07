// Package formatter converts log values to text and serializes record
// batches into the ingestion wire format.
package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/lixenwraith/logship/sanitizer"
)

// DefaultTimestampFormat renders UTC timestamps with fixed nanosecond width
const DefaultTimestampFormat = "2006-01-02T15:04:05.000000000Z"

// BatchType is the value of the "type" field of every shipped batch
const BatchType = "logs"

// Formatter stringifies values and builds wire batches.
// Stringify is safe for concurrent use; batch building reuses an internal
// buffer and must be driven by a single goroutine.
type Formatter struct {
	sanitizer       *sanitizer.Sanitizer
	text            *sanitizer.Serializer
	json            *sanitizer.Serializer
	timestampFormat string

	buf     []byte
	records int
}

// New creates a formatter with the provided sanitizer
func New(s ...*sanitizer.Sanitizer) *Formatter {
	var san *sanitizer.Sanitizer
	if len(s) > 0 && s[0] != nil {
		san = s[0]
	} else {
		san = sanitizer.New() // Default passthrough sanitizer
	}
	return &Formatter{
		sanitizer:       san,
		text:            sanitizer.NewSerializer("text", san),
		json:            sanitizer.NewSerializer("json", san),
		timestampFormat: DefaultTimestampFormat,
		buf:             make([]byte, 0, 4096),
	}
}

// TimestampFormat sets the timestamp layout used on the wire and for time.Time values
func (f *Formatter) TimestampFormat(format string) *Formatter {
	if format != "" {
		f.timestampFormat = format
	}
	return f
}

// LevelToString converts integer level values to their wire names.
// Levels between the named ones round down, so custom slog levels stay in the enum.
func LevelToString(level int64) string {
	switch {
	case level >= 8:
		return "ERROR"
	case level >= 4:
		return "WARNING"
	case level >= 0:
		return "INFO"
	case level > -8:
		return "DEBUG"
	default:
		return "TRACE"
	}
}

// FormatTimestamp renders t in UTC with the configured layout
func (f *Formatter) FormatTimestamp(t time.Time) string {
	return t.UTC().Format(f.timestampFormat)
}

// Stringify converts any value to its natural text form, applying the sanitizer.
// It never fails: composite values are rendered by spew with sorted map keys.
func (f *Formatter) Stringify(v any) string {
	buf := make([]byte, 0, 32)
	f.convertValue(&buf, v)
	return string(buf)
}

// convertValue provides unified type conversion
func (f *Formatter) convertValue(buf *[]byte, v any) {
	defer func() {
		// A panicking String or Error method must not escape into the caller
		if r := recover(); r != nil {
			f.text.WriteString(buf, fmt.Sprintf("%%!v(PANIC=%v)", r))
		}
	}()

	serializer := f.text

	switch val := v.(type) {
	case string:
		serializer.WriteString(buf, val)

	case []byte:
		serializer.WriteString(buf, string(val))

	case int:
		serializer.WriteNumber(buf, strconv.FormatInt(int64(val), 10))

	case int8:
		serializer.WriteNumber(buf, strconv.FormatInt(int64(val), 10))

	case int16:
		serializer.WriteNumber(buf, strconv.FormatInt(int64(val), 10))

	case int32:
		serializer.WriteNumber(buf, strconv.FormatInt(int64(val), 10))

	case int64:
		serializer.WriteNumber(buf, strconv.FormatInt(val, 10))

	case uint:
		serializer.WriteNumber(buf, strconv.FormatUint(uint64(val), 10))

	case uint8:
		serializer.WriteNumber(buf, strconv.FormatUint(uint64(val), 10))

	case uint16:
		serializer.WriteNumber(buf, strconv.FormatUint(uint64(val), 10))

	case uint32:
		serializer.WriteNumber(buf, strconv.FormatUint(uint64(val), 10))

	case uint64:
		serializer.WriteNumber(buf, strconv.FormatUint(val, 10))

	case float32:
		serializer.WriteNumber(buf, strconv.FormatFloat(float64(val), 'f', -1, 32))

	case float64:
		serializer.WriteNumber(buf, strconv.FormatFloat(val, 'f', -1, 64))

	case bool:
		serializer.WriteBool(buf, val)

	case nil:
		serializer.WriteNil(buf)

	case time.Time:
		serializer.WriteString(buf, f.FormatTimestamp(val))

	case time.Duration:
		serializer.WriteString(buf, val.String())

	case error:
		serializer.WriteString(buf, val.Error())

	case fmt.Stringer:
		serializer.WriteString(buf, val.String())

	default:
		serializer.WriteComplex(buf, val)
	}
}

// BeginBatch resets the internal buffer and opens a new wire batch
func (f *Formatter) BeginBatch(token string) {
	f.buf = f.buf[:0]
	f.records = 0

	f.buf = append(f.buf, `{"token":`...)
	f.json.WriteString(&f.buf, token)
	f.buf = append(f.buf, `,"type":`...)
	f.json.WriteString(&f.buf, BatchType)
	f.buf = append(f.buf, `,"logs":[`...)
}

// AppendRecord adds one record to the open batch. Attribute keys are written in sorted order.
func (f *Formatter) AppendRecord(timestamp time.Time, level int64, body string, attributes map[string]string) {
	if f.records > 0 {
		f.buf = append(f.buf, ',')
	}
	f.records++

	f.buf = append(f.buf, `{"timestamp":`...)
	f.json.WriteString(&f.buf, f.FormatTimestamp(timestamp))
	f.buf = append(f.buf, `,"body":`...)
	f.json.WriteString(&f.buf, body)
	f.buf = append(f.buf, `,"level":"`...)
	f.buf = append(f.buf, LevelToString(level)...)
	f.buf = append(f.buf, `","attributes":{`...)

	keys := make([]string, 0, len(attributes))
	for k := range attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if i > 0 {
			f.buf = append(f.buf, ',')
		}
		f.json.WriteString(&f.buf, k)
		f.buf = append(f.buf, ':')
		f.json.WriteString(&f.buf, attributes[k])
	}

	f.buf = append(f.buf, '}', '}')
}

// EndBatch closes the batch and returns the serialized body.
// The returned slice is only valid until the next BeginBatch.
func (f *Formatter) EndBatch() []byte {
	f.buf = append(f.buf, ']', '}')
	return f.buf
}
