// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package session

import "errors"

var (
	ErrNotFound        = errors.New("execution not found")
	ErrEmptyArguments  = errors.New("empty argument string")
	ErrBlockedCommand  = errors.New("command blocked by guard rules")
	ErrStillRunning    = errors.New("execution still running")
)
