package logger

import "go.uber.org/zap/zapcore"

// Verbosity level constants for CLI flag counts.
const (
	VerbosityUser  = 0 // No flags: results and errors only
	VerbosityInfo  = 1 // -v: + progress, indexing status
	VerbosityDebug = 2 // -vv: + per-facet evaluation detail
	VerbosityTrace = 3 // -vvv: + per-entity check records
)

// VerbosityToLevel maps verbosity flags (-v, -vv, etc.) to zap log levels.
//
//	0 (none)  -> WarnLevel  (errors and warnings only)
//	1 (-v)    -> InfoLevel  (+ informational messages)
//	2+ (-vv)  -> DebugLevel (+ debug messages)
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch verbosity {
	case VerbosityUser:
		return zapcore.WarnLevel
	case VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// ShouldLogTrace returns true for verbosity >= 3 (-vvv).
// Use this for dumping per-entity check records and full data structures.
func ShouldLogTrace(verbosity int) bool {
	return verbosity >= VerbosityTrace
}
