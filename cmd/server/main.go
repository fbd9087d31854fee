// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package main

import (
	"flag"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ZSC714725/ffmpegbridge/internal/api"
	"github.com/ZSC714725/ffmpegbridge/internal/bridge"
	"github.com/ZSC714725/ffmpegbridge/internal/config"
	"github.com/ZSC714725/ffmpegbridge/internal/events"
	"github.com/ZSC714725/ffmpegbridge/internal/ffmpeg"
	"github.com/ZSC714725/ffmpegbridge/internal/logger"
	"github.com/ZSC714725/ffmpegbridge/internal/session"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	bind := flag.String("bind", "", "Bind address (overrides config)")
	ffmpegBin := flag.String("ffmpeg", "", "FFmpeg binary path (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Load config: %v", err)
		}
	}

	bindAddr := cfg.Server.Bind
	if *bind != "" {
		bindAddr = *bind
	}
	ffmpegPath := cfg.FFmpeg.Path
	if *ffmpegBin != "" {
		ffmpegPath = *ffmpegBin
	}

	appLogger := logger.New("ffmpegbridge")
	bus := events.New()

	engine, err := ffmpeg.New(ffmpeg.Config{
		Binary:      ffmpegPath,
		MaxLogLines: cfg.FFmpeg.MaxLogLines,
		Bus:         bus,
		Logger:      appLogger,
		GuardAllow:  cfg.Guard.Allow,
		GuardBlock:  cfg.Guard.Block,
	})
	if err != nil {
		log.Fatalf("Engine init: %v", err)
	}

	if level, ok := ffmpeg.ParseLevelName(cfg.FFmpeg.LogLevel); ok {
		engine.SetLogLevel(level)
	}

	sess, err := bridge.New(bridge.Config{
		Engine: engine,
		Bus:    bus,
		Logger: appLogger,
	})
	if err != nil {
		log.Fatalf("Bridge init: %v", err)
	}

	// FFmpeg output flows through the service log instead of the console
	sess.EnableLogCallback(func(event ffmpeg.LogEvent) {
		appLogger.Debug("[ffmpeg] %s", event.Message)
	})

	if cfg.FFmpeg.FontconfigPath != "" {
		sess.SetFontconfigConfigurationPath(cfg.FFmpeg.FontconfigPath)
	}
	if cfg.FFmpeg.FontDirectory != "" {
		if err := sess.SetFontDirectory(cfg.FFmpeg.FontDirectory); err != nil {
			log.Fatalf("Font directory: %v", err)
		}
	}

	store := session.NewStore(engine, appLogger)
	handler := api.NewHandler(store, sess, engine, bus, appLogger)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), cors.Default())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/version", handler.Version)
		v1.GET("/skills", handler.Skills)
		v1.POST("/skills/reload", handler.ReloadSkills)

		v1.GET("/loglevel", handler.GetLogLevel)
		v1.PUT("/loglevel", handler.SetLogLevel)

		v1.GET("/statistics/last", handler.LastStatistics)
		v1.POST("/statistics/reset", handler.ResetStatistics)

		v1.POST("/redirection/disable", handler.DisableRedirection)
		v1.PUT("/fontconfig", handler.SetFontconfig)

		v1.POST("/executions", handler.AddExecution)
		v1.GET("/executions", handler.ListExecutions)
		v1.GET("/executions/:id", handler.GetExecution)
		v1.PUT("/executions/:id/cancel", handler.CancelExecution)
		v1.DELETE("/executions/:id", handler.DeleteExecution)

		v1.GET("/events", handler.Events)
	}

	appLogger.Info("FFmpegBridge %s listening on %s", sess.GetFFmpegVersion(), bindAddr)
	if err := r.Run(bindAddr); err != nil {
		log.Fatalf("Server: %v", err)
	}
}
