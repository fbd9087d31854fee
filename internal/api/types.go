// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package api

import "github.com/ZSC714725/ffmpegbridge/internal/ffmpeg/parse"

// ExecuteRequest launches an FFmpeg command
type ExecuteRequest struct {
	Arguments string `json:"arguments" binding:"required"`
}

// VersionResponse reports the wrapped binary and host
type VersionResponse struct {
	Version  string `json:"version"`
	Platform string `json:"platform"`
}

// LogLevelRequest sets the engine log level
type LogLevelRequest struct {
	Level int `json:"level"`
}

// LogLevelResponse reports the engine log level
type LogLevelResponse struct {
	Level int    `json:"level"`
	Name  string `json:"name"`
}

// FontconfigRequest configures font resolution for spawned processes
type FontconfigRequest struct {
	ConfigurationPath string `json:"configuration_path"`
	FontDirectory     string `json:"font_directory"`
}

// Execution represents one launched command in API responses
type Execution struct {
	ID         string            `json:"id"`
	Arguments  string            `json:"arguments"`
	CreatedAt  int64             `json:"created_at"`
	State      string            `json:"state"`
	ReturnCode int               `json:"return_code"`
	CPU        float64           `json:"cpu_usage"`
	Memory     uint64            `json:"memory_bytes"`
	Statistics *parse.Statistics `json:"statistics,omitempty"`
	Log        [][2]string       `json:"log,omitempty"`
}

// ErrorResponse for API errors
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}
