// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层
//
// Package session keeps a record of executions launched through the service
// so they can be inspected and cancelled by ID.

package session

import (
	"strings"
	"sync"
	"time"

	"github.com/ZSC714725/ffmpegbridge/internal/ffmpeg"
	"github.com/ZSC714725/ffmpegbridge/internal/ffmpeg/parse"
	"github.com/ZSC714725/ffmpegbridge/internal/logger"
	"github.com/ZSC714725/ffmpegbridge/internal/process"

	"github.com/lithammer/shortuuid/v4"
)

// Execution is one launched FFmpeg command
type Execution struct {
	ID        string
	Arguments string
	CreatedAt int64

	proc   process.Process
	parser parse.Parser
}

// Status returns process status
func (e *Execution) Status() process.Status {
	return e.proc.Status()
}

// Statistics returns the parsed counters for this execution
func (e *Execution) Statistics() parse.Statistics {
	if e.parser == nil {
		return parse.Statistics{}
	}
	return e.parser.Statistics()
}

// Log returns buffered output lines
func (e *Execution) Log() []process.Line {
	if e.parser == nil {
		return nil
	}
	return e.parser.Log()
}

// IsRunning returns whether the process is running
func (e *Execution) IsRunning() bool {
	return e.proc.IsRunning()
}

// ReturnCode returns the exit code, -1 while running
func (e *Execution) ReturnCode() int {
	return e.proc.ExitCode()
}

// Store manages executions in memory
type Store interface {
	Add(arguments string) (*Execution, error)
	Get(id string) (*Execution, error)
	List(ids []string) []*Execution
	Cancel(id string) error
	Delete(id string) error
}

type store struct {
	engine     ffmpeg.Engine
	logger     logger.Logger
	executions map[string]*Execution
	mu         sync.RWMutex
}

// NewStore creates an execution store
func NewStore(engine ffmpeg.Engine, log logger.Logger) Store {
	return &store{
		engine:     engine,
		logger:     log,
		executions: make(map[string]*Execution),
	}
}

// Add launches the argument string and records it. The string itself is not
// interpreted beyond splitting and the optional guard rules.
func (s *store) Add(arguments string) (*Execution, error) {
	if strings.TrimSpace(arguments) == "" {
		return nil, ErrEmptyArguments
	}
	if !s.engine.ValidateCommand(arguments) {
		return nil, ErrBlockedCommand
	}

	id := shortuuid.New()
	parser := s.engine.NewParser()

	proc, err := s.engine.NewProcess(ffmpeg.ProcessConfig{
		Args:   ffmpeg.SplitArguments(arguments),
		Parser: parser,
		Logger: s.logger,
		OnStateChange: func(from, to string) {
			s.logger.Info("execution %s state %s -> %s", id, from, to)
		},
	})
	if err != nil {
		return nil, err
	}

	exec := &Execution{
		ID:        id,
		Arguments: arguments,
		CreatedAt: time.Now().Unix(),
		proc:      proc,
		parser:    parser,
	}

	s.mu.Lock()
	s.executions[id] = exec
	s.mu.Unlock()

	go proc.Start()

	return exec, nil
}

func (s *store) Get(id string) (*Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.executions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *store) List(ids []string) []*Execution {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Execution
	for _, e := range s.executions {
		if len(ids) > 0 {
			found := false
			for _, id := range ids {
				if e.ID == id {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func (s *store) Cancel(id string) error {
	e, err := s.Get(id)
	if err != nil {
		return err
	}
	return e.proc.Stop(false)
}

func (s *store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.executions[id]
	if !ok {
		return ErrNotFound
	}

	if e.proc.IsRunning() {
		e.proc.Stop(true)
	}
	delete(s.executions, id)
	return nil
}
