// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层
//
// Package ffmpeg is the engine behind the bridge: it owns the binary, the
// global toggles (log level, redirection, event emission), the last-received
// statistics cache and fontconfig state, and it turns process stderr into
// events on the bus.

package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/ZSC714725/ffmpegbridge/internal/events"
	"github.com/ZSC714725/ffmpegbridge/internal/ffmpeg/parse"
	"github.com/ZSC714725/ffmpegbridge/internal/ffmpeg/skills"
	"github.com/ZSC714725/ffmpegbridge/internal/logger"
	"github.com/ZSC714725/ffmpegbridge/internal/process"
)

// Engine is the native side of the bridge
type Engine interface {
	Binary() string
	Version() string
	Platform() string
	Skills() skills.Skills
	ReloadSkills() error

	Execute(ctx context.Context, parameters string) (int, error)
	Cancel()
	NewParser() parse.Parser
	NewProcess(config ProcessConfig) (process.Process, error)
	ValidateCommand(arguments string) bool

	EnableLogEvents()
	DisableLogEvents()
	EnableStatisticsEvents()
	DisableStatisticsEvents()
	EnableRedirection()
	DisableRedirection()

	LogLevel() Level
	SetLogLevel(level Level)

	LastReceivedStatistics() parse.Statistics
	ResetStatistics()

	SetFontconfigConfigurationPath(path string)
	SetFontDirectory(path string) error
}

// ProcessConfig for creating a process
type ProcessConfig struct {
	Args          []string
	StaleTimeout  time.Duration
	Parser        process.Parser
	Logger        logger.Logger
	OnStart       func()
	OnExit        func()
	OnStateChange func(from, to string)
}

// Config for the engine
type Config struct {
	Binary      string
	MaxLogLines int
	Bus         *events.Bus
	Logger      logger.Logger
	GuardAllow  []string
	GuardBlock  []string
	// StderrSink receives raw lines while redirection is disabled.
	// Defaults to os.Stderr.
	StderrSink io.Writer
}

type engine struct {
	binary     string
	bus        *events.Bus
	logger     logger.Logger
	guard      Validator
	logLines   int
	stderrSink io.Writer

	mu         sync.RWMutex
	level      Level
	redirect   bool
	logEvents  bool
	statEvents bool
	lastStats  parse.Statistics
	fontconfig fontconfigState

	proc struct {
		current process.Process
		lock    sync.Mutex
	}

	skills     skills.Skills
	skillsLock sync.RWMutex
}

// New creates the engine
func New(config Config) (Engine, error) {
	binary, err := exec.LookPath(config.Binary)
	if err != nil {
		return nil, fmt.Errorf("invalid ffmpeg binary: %w", err)
	}
	if config.Bus == nil {
		return nil, fmt.Errorf("no event bus given")
	}

	e := &engine{
		binary:     binary,
		bus:        config.Bus,
		logger:     config.Logger,
		logLines:   config.MaxLogLines,
		stderrSink: config.StderrSink,
		level:      LevelInfo,
	}

	if e.logger == nil {
		e.logger = logger.NewNop()
	}
	if e.logLines <= 0 {
		e.logLines = 100
	}
	if e.stderrSink == nil {
		e.stderrSink = os.Stderr
	}

	e.guard, err = NewValidator(config.GuardAllow, config.GuardBlock)
	if err != nil {
		return nil, err
	}

	s, err := skills.New(binary)
	if err != nil {
		return nil, fmt.Errorf("invalid ffmpeg: %w", err)
	}
	e.skills = s

	return e, nil
}

func (e *engine) Binary() string {
	return e.binary
}

func (e *engine) Version() string {
	e.skillsLock.RLock()
	defer e.skillsLock.RUnlock()
	return e.skills.FFmpeg.Version
}

func (e *engine) Platform() string {
	return runtime.GOOS + "-" + runtime.GOARCH
}

func (e *engine) Skills() skills.Skills {
	e.skillsLock.RLock()
	defer e.skillsLock.RUnlock()
	return e.skills
}

func (e *engine) ReloadSkills() error {
	s, err := skills.New(e.binary)
	if err != nil {
		return fmt.Errorf("reload skills: %w", err)
	}
	e.skillsLock.Lock()
	e.skills = s
	e.skillsLock.Unlock()
	return nil
}

// NewParser creates a parser whose output feeds the event bus and the
// last-received statistics cache.
func (e *engine) NewParser() parse.Parser {
	return parse.New(parse.Config{
		LogLines:     e.logLines,
		OnLog:        e.handleLogLine,
		OnStatistics: e.handleStatistics,
	})
}

// NewProcess creates a process for the engine's binary. The configured log
// level is prepended; arguments may still override it.
func (e *engine) NewProcess(config ProcessConfig) (process.Process, error) {
	args := append([]string{"-loglevel", e.LogLevel().cliName()}, config.Args...)

	log := config.Logger
	if log == nil {
		log = e.logger
	}

	return process.New(process.Config{
		Binary:        e.binary,
		Args:          args,
		Env:           e.processEnv(),
		StaleTimeout:  config.StaleTimeout,
		Parser:        config.Parser,
		Logger:        log,
		OnStart:       config.OnStart,
		OnExit:        config.OnExit,
		OnStateChange: config.OnStateChange,
	})
}

// Execute runs a raw argument string to completion and returns the process
// return code. The string is split, not interpreted; what the arguments mean
// is FFmpeg's business.
func (e *engine) Execute(ctx context.Context, parameters string) (int, error) {
	parser := e.NewParser()

	proc, err := e.NewProcess(ProcessConfig{
		Args:   SplitArguments(parameters),
		Parser: parser,
	})
	if err != nil {
		return -1, err
	}

	e.proc.lock.Lock()
	e.proc.current = proc
	e.proc.lock.Unlock()

	if err := proc.Start(); err != nil {
		return -1, err
	}

	rc, err := proc.Wait(ctx)
	if err != nil {
		proc.Stop(false)
		return -1, err
	}
	return rc, nil
}

// Cancel asks the in-flight execution to quit. Advisory: no confirmation,
// no error if nothing is running.
func (e *engine) Cancel() {
	e.proc.lock.Lock()
	proc := e.proc.current
	e.proc.lock.Unlock()

	if proc != nil {
		proc.Stop(false)
	}
}

func (e *engine) ValidateCommand(arguments string) bool {
	return e.guard.IsValid(arguments)
}

func (e *engine) EnableLogEvents() {
	e.mu.Lock()
	e.logEvents = true
	e.mu.Unlock()
}

func (e *engine) DisableLogEvents() {
	e.mu.Lock()
	e.logEvents = false
	e.mu.Unlock()
}

func (e *engine) EnableStatisticsEvents() {
	e.mu.Lock()
	e.statEvents = true
	e.mu.Unlock()
}

func (e *engine) DisableStatisticsEvents() {
	e.mu.Lock()
	e.statEvents = false
	e.mu.Unlock()
}

func (e *engine) EnableRedirection() {
	e.mu.Lock()
	e.redirect = true
	e.mu.Unlock()
}

func (e *engine) DisableRedirection() {
	e.mu.Lock()
	e.redirect = false
	e.mu.Unlock()
}

func (e *engine) LogLevel() Level {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.level
}

func (e *engine) SetLogLevel(level Level) {
	e.mu.Lock()
	e.level = level
	e.mu.Unlock()
}

func (e *engine) LastReceivedStatistics() parse.Statistics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastStats
}

func (e *engine) ResetStatistics() {
	e.mu.Lock()
	e.lastStats = parse.Statistics{}
	e.mu.Unlock()
}

// handleLogLine routes one non-statistics stderr line: to the bus while
// redirection and log events are on, to the stderr sink while redirection
// is off, to nowhere while log events are off.
func (e *engine) handleLogLine(line process.Line) {
	level := classifyLine(line.Data)

	e.mu.RLock()
	redirect := e.redirect
	logEvents := e.logEvents
	max := e.level
	e.mu.RUnlock()

	if !redirect {
		fmt.Fprintln(e.stderrSink, line.Data)
		return
	}
	if !logEvents {
		return
	}
	if level > max {
		return
	}

	e.bus.Publish(events.ChannelLog, LogEvent{Level: level, Message: line.Data})
}

// handleStatistics always refreshes the last-received cache; emission on the
// bus is what the toggles gate.
func (e *engine) handleStatistics(s parse.Statistics) {
	e.mu.Lock()
	e.lastStats = s
	redirect := e.redirect
	statEvents := e.statEvents
	e.mu.Unlock()

	if !redirect || !statEvents {
		return
	}

	e.bus.Publish(events.ChannelStatistics, s)
}
