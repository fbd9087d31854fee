// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package ffmpeg

import "strings"

// Level mirrors FFmpeg's av_log severity values.
type Level int

const (
	LevelQuiet   Level = -8
	LevelPanic   Level = 0
	LevelFatal   Level = 8
	LevelError   Level = 16
	LevelWarning Level = 24
	LevelInfo    Level = 32
	LevelVerbose Level = 40
	LevelDebug   Level = 48
	LevelTrace   Level = 56
)

// LogEvent is a classified stderr line delivered on the log channel
type LogEvent struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// LevelToString maps a level to its canonical label. Quiet and any value
// outside the defined set map to the empty string.
func LevelToString(l Level) string {
	switch l {
	case LevelQuiet:
		return ""
	case LevelPanic:
		return "PANIC"
	case LevelFatal:
		return "FATAL"
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARNING"
	case LevelInfo:
		return "INFO"
	case LevelVerbose:
		return "VERBOSE"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	}
	return ""
}

// ParseLevelName maps a -loglevel style name to a level
func ParseLevelName(name string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "quiet":
		return LevelQuiet, true
	case "panic":
		return LevelPanic, true
	case "fatal":
		return LevelFatal, true
	case "error":
		return LevelError, true
	case "warning":
		return LevelWarning, true
	case "info":
		return LevelInfo, true
	case "verbose":
		return LevelVerbose, true
	case "debug":
		return LevelDebug, true
	case "trace":
		return LevelTrace, true
	}
	return LevelInfo, false
}

// cliName is the value passed to ffmpeg's -loglevel flag
func (l Level) cliName() string {
	switch l {
	case LevelQuiet:
		return "quiet"
	case LevelPanic:
		return "panic"
	case LevelFatal:
		return "fatal"
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelVerbose:
		return "verbose"
	case LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	}
	return "info"
}

// classifyLine guesses a severity for a raw stderr line. FFmpeg does not tag
// lines, so this goes by the usual markers.
func classifyLine(line string) Level {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "panic"):
		return LevelPanic
	case strings.Contains(lower, "fatal"):
		return LevelFatal
	case strings.Contains(lower, "error") || strings.Contains(lower, "invalid") || strings.Contains(lower, "no such file"):
		return LevelError
	case strings.Contains(lower, "warning") || strings.Contains(lower, "deprecated"):
		return LevelWarning
	}
	return LevelInfo
}
