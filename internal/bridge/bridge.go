// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层
//
// Package bridge is the application-facing facade. A Session holds two
// optional callback slots, subscribes once per event channel at construction
// and forwards every operation to the engine.

package bridge

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ZSC714725/ffmpegbridge/internal/events"
	"github.com/ZSC714725/ffmpegbridge/internal/ffmpeg"
	"github.com/ZSC714725/ffmpegbridge/internal/ffmpeg/parse"
	"github.com/ZSC714725/ffmpegbridge/internal/logger"
)

// LogCallback receives log events while registered
type LogCallback func(event ffmpeg.LogEvent)

// StatisticsCallback receives statistics events while registered
type StatisticsCallback func(statistics parse.Statistics)

// Config for a session
type Config struct {
	Engine ffmpeg.Engine
	Bus    *events.Bus
	Logger logger.Logger
	// ConsoleOut receives log events while no log callback is registered.
	// Defaults to os.Stderr.
	ConsoleOut io.Writer
}

// Session bridges application code and the engine
type Session struct {
	engine     ffmpeg.Engine
	bus        *events.Bus
	logger     logger.Logger
	consoleOut io.Writer

	mu                 sync.RWMutex
	logCallback        LogCallback
	statisticsCallback StatisticsCallback

	logSub  *events.Subscription
	statSub *events.Subscription
}

// New creates a session: one listener per channel, log and statistics events
// and redirection enabled on the engine. The platform identifier is logged in
// the background; a failure there stays silent.
func New(config Config) (*Session, error) {
	if config.Engine == nil {
		return nil, fmt.Errorf("no engine given")
	}
	if config.Bus == nil {
		return nil, fmt.Errorf("no event bus given")
	}

	s := &Session{
		engine:     config.Engine,
		bus:        config.Bus,
		logger:     config.Logger,
		consoleOut: config.ConsoleOut,
	}
	if s.logger == nil {
		s.logger = logger.NewNop()
	}
	if s.consoleOut == nil {
		s.consoleOut = os.Stderr
	}

	s.logSub = s.bus.Subscribe(events.ChannelLog, s.onLogEvent)
	s.statSub = s.bus.Subscribe(events.ChannelStatistics, s.onStatisticsEvent)

	s.engine.EnableLogEvents()
	s.engine.EnableStatisticsEvents()
	s.engine.EnableRedirection()

	go func() {
		s.logger.Info("running on platform %s", s.engine.Platform())
	}()

	return s, nil
}

// onLogEvent dispatches to the log callback, falling back to the console
// sink while no callback is registered.
func (s *Session) onLogEvent(ev events.Event) {
	entry, ok := ev.Payload.(ffmpeg.LogEvent)
	if !ok {
		return
	}

	s.mu.RLock()
	cb := s.logCallback
	s.mu.RUnlock()

	if cb != nil {
		cb(entry)
		return
	}
	fmt.Fprintln(s.consoleOut, entry.Message)
}

// onStatisticsEvent dispatches to the statistics callback. Only the
// statistics slot decides; the log slot has no say here.
func (s *Session) onStatisticsEvent(ev events.Event) {
	stats, ok := ev.Payload.(parse.Statistics)
	if !ok {
		return
	}

	s.mu.RLock()
	cb := s.statisticsCallback
	s.mu.RUnlock()

	if cb != nil {
		cb(stats)
	}
}

// GetFFmpegVersion returns the engine-reported FFmpeg version
func (s *Session) GetFFmpegVersion() string {
	return s.engine.Version()
}

// GetPlatform returns the engine-reported platform identifier
func (s *Session) GetPlatform() string {
	return s.engine.Platform()
}

// Execute forwards a raw argument string to the engine and returns the
// process return code. No parsing or validation happens here.
func (s *Session) Execute(ctx context.Context, parameters string) (int, error) {
	return s.engine.Execute(ctx, parameters)
}

// Cancel requests cancellation of the in-flight execution
func (s *Session) Cancel() {
	s.engine.Cancel()
}

// DisableRedirection stops routing stderr through the event channels.
// Re-enabling happens only through constructing a new session.
func (s *Session) DisableRedirection() {
	s.engine.DisableRedirection()
}

// GetLogLevel returns the engine log level
func (s *Session) GetLogLevel() ffmpeg.Level {
	return s.engine.LogLevel()
}

// SetLogLevel sets the engine log level
func (s *Session) SetLogLevel(level ffmpeg.Level) {
	s.engine.SetLogLevel(level)
}

// DisableLogs stops log event emission
func (s *Session) DisableLogs() {
	s.engine.DisableLogEvents()
}

// DisableStatistics stops statistics event emission. The last-received
// cache keeps its value.
func (s *Session) DisableStatistics() {
	s.engine.DisableStatisticsEvents()
}

// EnableLogCallback replaces the log callback slot. Passing nil restores
// console-sink behavior for subsequent events.
func (s *Session) EnableLogCallback(callback LogCallback) {
	s.mu.Lock()
	s.logCallback = callback
	s.mu.Unlock()
}

// EnableStatisticsCallback replaces the statistics callback slot. Passing
// nil drops subsequent statistics events.
func (s *Session) EnableStatisticsCallback(callback StatisticsCallback) {
	s.mu.Lock()
	s.statisticsCallback = callback
	s.mu.Unlock()
}

// GetLastReceivedStatistics returns the engine's cached last snapshot,
// independent of callback registration.
func (s *Session) GetLastReceivedStatistics() parse.Statistics {
	return s.engine.LastReceivedStatistics()
}

// ResetStatistics clears the engine cache. Recommended before a new
// execution to avoid stale reads.
func (s *Session) ResetStatistics() {
	s.engine.ResetStatistics()
}

// SetFontconfigConfigurationPath forwards the fontconfig directory
func (s *Session) SetFontconfigConfigurationPath(path string) {
	s.engine.SetFontconfigConfigurationPath(path)
}

// SetFontDirectory registers a font directory with the engine
func (s *Session) SetFontDirectory(path string) error {
	return s.engine.SetFontDirectory(path)
}

// LogLevelToString maps a log level to its canonical name. Quiet and
// unknown values map to the empty string.
func LogLevelToString(level ffmpeg.Level) string {
	return ffmpeg.LevelToString(level)
}
