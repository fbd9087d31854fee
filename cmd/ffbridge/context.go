// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package main

import (
	"strings"

	"github.com/ZSC714725/ffmpegbridge/internal/bridge"
	"github.com/ZSC714725/ffmpegbridge/internal/config"
	"github.com/ZSC714725/ffmpegbridge/internal/events"
	"github.com/ZSC714725/ffmpegbridge/internal/ffmpeg"
	"github.com/ZSC714725/ffmpegbridge/internal/logger"
)

// commandContext wires the engine and session lazily so commands like help
// work without a usable ffmpeg binary.
type commandContext struct {
	configFlag *string
	ffmpegFlag *string
}

func newCommandContext(configFlag, ffmpegFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, ffmpegFlag: ffmpegFlag}
}

func (c *commandContext) session() (*bridge.Session, ffmpeg.Engine, error) {
	cfg := config.Default()
	if *c.configFlag != "" {
		var err error
		cfg, err = config.Load(*c.configFlag)
		if err != nil {
			return nil, nil, err
		}
	}

	binary := cfg.FFmpeg.Path
	if *c.ffmpegFlag != "" {
		binary = *c.ffmpegFlag
	}

	bus := events.New()
	log := logger.NewNop()

	engine, err := ffmpeg.New(ffmpeg.Config{
		Binary:      binary,
		MaxLogLines: cfg.FFmpeg.MaxLogLines,
		Bus:         bus,
		Logger:      log,
		GuardAllow:  cfg.Guard.Allow,
		GuardBlock:  cfg.Guard.Block,
	})
	if err != nil {
		return nil, nil, err
	}

	if level, ok := ffmpeg.ParseLevelName(cfg.FFmpeg.LogLevel); ok {
		engine.SetLogLevel(level)
	}

	sess, err := bridge.New(bridge.Config{Engine: engine, Bus: bus, Logger: log})
	if err != nil {
		return nil, nil, err
	}

	return sess, engine, nil
}

// joinArguments rebuilds a single argument string from argv elements,
// quoting anything with whitespace so splitting restores it.
func joinArguments(args []string) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if strings.ContainsAny(arg, " \t\n") {
			parts = append(parts, "\""+arg+"\"")
		} else {
			parts = append(parts, arg)
		}
	}
	return strings.Join(parts, " ")
}
