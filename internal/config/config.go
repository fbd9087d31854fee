// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Server ServerConfig `yaml:"server"`
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`
	Guard  GuardConfig  `yaml:"guard"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Bind string `yaml:"bind"`
}

// FFmpegConfig FFmpeg 配置
type FFmpegConfig struct {
	Path            string `yaml:"path"`
	LogLevel        string `yaml:"log_level"`
	MaxLogLines     int    `yaml:"max_log_lines"`
	FontconfigPath  string `yaml:"fontconfig_path"`
	FontDirectory   string `yaml:"font_directory"`
}

// GuardConfig 命令参数允许/阻止规则（正则），为空则全部放行
type GuardConfig struct {
	Allow []string `yaml:"allow"`
	Block []string `yaml:"block"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{Bind: ":8080"},
		FFmpeg: FFmpegConfig{
			Path:        "ffmpeg",
			LogLevel:    "info",
			MaxLogLines: 100,
		},
	}
}

// Load 从 YAML 文件加载配置
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// 填充空值
	if cfg.Server.Bind == "" {
		cfg.Server.Bind = ":8080"
	}
	if cfg.FFmpeg.Path == "" {
		cfg.FFmpeg.Path = "ffmpeg"
	}
	if cfg.FFmpeg.LogLevel == "" {
		cfg.FFmpeg.LogLevel = "info"
	}
	if cfg.FFmpeg.MaxLogLines <= 0 {
		cfg.FFmpeg.MaxLogLines = 100
	}

	return cfg, nil
}
