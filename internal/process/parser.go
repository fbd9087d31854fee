// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package process

import "time"

// Parser parses process output (FFmpeg writes everything to stderr)
type Parser interface {
	Parse(line string) uint64
	ResetStats()
	ResetLog()
	Log() []Line
}

// Line is a timestamped output line
type Line struct {
	Timestamp time.Time
	Data      string
}
