// FILE: lixenwraith/logship/constant.go
package logship

import (
	"time"
)

// Log level constants
const (
	LevelTrace int64 = -8
	LevelDebug int64 = -4
	LevelInfo  int64 = 0
	LevelWarn  int64 = 4
	LevelError int64 = 8
)

// Attribute keys set by the logger itself
const (
	AttrError  = "error"
	AttrTrace  = "trace"
	AttrBadKey = "!BADKEY"
)

// Timers
const (
	// Minimum wait time used throughout the package
	minWaitTime = 10 * time.Millisecond
	// Upper bound for the trace depth attribute
	maxTraceDepth = 10
)
