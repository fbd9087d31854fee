// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层
//
// Package process wraps exec.Cmd for controlling a one-shot FFmpeg run.

package process

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unicode/utf8"
)

// Process represents a single FFmpeg invocation
type Process interface {
	Status() Status
	Start() error
	Stop(wait bool) error
	Wait(ctx context.Context) (int, error)
	ExitCode() int
	IsRunning() bool
}

// Config for a process
type Config struct {
	Binary        string
	Args          []string
	Env           []string
	StaleTimeout  time.Duration
	Parser        Parser
	OnStart       func()
	OnExit        func()
	OnStateChange func(from, to string)
	Logger        Logger
}

// Status of a process
type Status struct {
	State    string
	Order    string
	Duration time.Duration
	Time     time.Time
	ExitCode int
	CPU      float64
	Memory   uint64
}

// Logger interface
type Logger interface {
	Info(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

type stateType string

const (
	stateFinished  stateType = "finished"
	stateStarting  stateType = "starting"
	stateRunning   stateType = "running"
	stateFinishing stateType = "finishing"
	stateFailed    stateType = "failed"
	stateKilled    stateType = "killed"
)

func (s stateType) String() string { return string(s) }

func (s stateType) IsRunning() bool {
	return s == stateStarting || s == stateRunning || s == stateFinishing
}

type process struct {
	binary string
	args   []string
	env    []string
	cmd    *exec.Cmd
	pid    int32
	stdout io.ReadCloser

	state struct {
		state stateType
		time  time.Time
		lock  sync.Mutex
	}
	order struct {
		order string
		lock  sync.Mutex
	}
	stale struct {
		last    time.Time
		timeout time.Duration
		cancel  context.CancelFunc
		lock    sync.Mutex
	}
	exit struct {
		code int
		done chan struct{}
		once sync.Once
		lock sync.Mutex
	}
	killTimer     *time.Timer
	killTimerLock sync.Mutex
	parser        Parser
	logger        Logger
	limits        Limiter
	callbacks     struct {
		onStart       func()
		onExit        func()
		onStateChange func(from, to string)
		lock          sync.Mutex
	}
}

// New creates a new process
func New(config Config) (Process, error) {
	p := &process{
		binary: config.Binary,
		args:   config.Args,
		env:    config.Env,
		parser: config.Parser,
		logger: config.Logger,
		limits: NewSysLimiter(),
	}

	if len(p.binary) == 0 {
		return nil, fmt.Errorf("no valid binary given")
	}

	if p.parser == nil {
		p.parser = &nullParser{}
	}

	if p.logger == nil {
		p.logger = &nopLogger{}
	}

	p.order.order = "stop"
	p.initState(stateFinished)
	p.stale.last = time.Now()
	p.stale.timeout = config.StaleTimeout
	p.exit.code = -1
	p.exit.done = make(chan struct{})
	p.callbacks.onStart = config.OnStart
	p.callbacks.onExit = config.OnExit
	p.callbacks.onStateChange = config.OnStateChange

	return p, nil
}

func (p *process) initState(state stateType) {
	p.state.lock.Lock()
	defer p.state.lock.Unlock()
	p.state.state = state
	p.state.time = time.Now()
}

func (p *process) setState(state stateType) error {
	p.state.lock.Lock()
	defer p.state.lock.Unlock()

	prevState := p.state.state
	failed := false

	switch p.state.state {
	case stateFinished, stateFailed, stateKilled:
		if state == stateStarting {
			p.state.state = state
		} else {
			failed = true
		}
	case stateStarting:
		switch state {
		case stateFinishing, stateRunning, stateFailed:
			p.state.state = state
		default:
			failed = true
		}
	case stateRunning:
		switch state {
		case stateFinished, stateFinishing, stateFailed, stateKilled:
			p.state.state = state
		default:
			failed = true
		}
	case stateFinishing:
		switch state {
		case stateFinished, stateFailed, stateKilled:
			p.state.state = state
		default:
			failed = true
		}
	default:
		return fmt.Errorf("unhandled state: %s", p.state.state)
	}

	if failed {
		return fmt.Errorf("can't change from %s to %s", p.state.state, state)
	}

	p.state.time = time.Now()
	if p.callbacks.onStateChange != nil {
		go p.callbacks.onStateChange(prevState.String(), p.state.state.String())
	}
	return nil
}

func (p *process) getState() stateType {
	p.state.lock.Lock()
	defer p.state.lock.Unlock()
	return p.state.state
}

func (p *process) isRunning() bool {
	return p.getState().IsRunning()
}

func (p *process) Status() Status {
	cpu, memory := p.limits.Current()

	p.state.lock.Lock()
	stateTime := p.state.time
	stateString := p.state.state.String()
	p.state.lock.Unlock()

	p.order.lock.Lock()
	order := p.order.order
	p.order.lock.Unlock()

	return Status{
		State:    stateString,
		Order:    order,
		Duration: time.Since(stateTime),
		Time:     stateTime,
		ExitCode: p.ExitCode(),
		CPU:      cpu,
		Memory:   memory,
	}
}

func (p *process) IsRunning() bool {
	return p.isRunning()
}

// ExitCode returns the recorded exit code, -1 while the process has not exited
func (p *process) ExitCode() int {
	p.exit.lock.Lock()
	defer p.exit.lock.Unlock()
	return p.exit.code
}

// Wait blocks until the process exits or the context is done
func (p *process) Wait(ctx context.Context) (int, error) {
	select {
	case <-p.exit.done:
		return p.ExitCode(), nil
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}

func (p *process) Start() error {
	p.order.lock.Lock()
	defer p.order.lock.Unlock()

	if p.order.order == "start" {
		return nil
	}
	p.order.order = "start"
	return p.start()
}

func (p *process) start() error {
	if p.isRunning() {
		return nil
	}

	p.setState(stateStarting)

	var err error
	p.cmd = exec.Command(p.binary, p.args...)
	p.cmd.Env = p.env

	p.stdout, err = p.cmd.StderrPipe()
	if err != nil {
		p.setState(stateFailed)
		p.parser.Parse(err.Error())
		p.finish(-1)
		return err
	}

	if err := p.cmd.Start(); err != nil {
		p.setState(stateFailed)
		p.parser.Parse(err.Error())
		p.finish(-1)
		return err
	}

	p.pid = int32(p.cmd.Process.Pid)
	p.limits.Start(int(p.pid))

	p.setState(stateRunning)

	if p.callbacks.onStart != nil {
		go p.callbacks.onStart()
	}

	go p.reader()

	if p.stale.timeout != 0 {
		p.stale.lock.Lock()
		ctx, cancel := context.WithCancel(context.Background())
		p.stale.cancel = cancel
		p.stale.lock.Unlock()
		go p.staler(ctx)
	}

	return nil
}

// Stop asks the process to quit: SIGINT first so FFmpeg can finalize its
// output, escalating to SIGKILL after 5 seconds.
func (p *process) Stop(wait bool) error {
	p.order.lock.Lock()
	defer p.order.lock.Unlock()

	if p.order.order == "stop" {
		return nil
	}
	p.order.order = "stop"
	return p.stop(wait)
}

func (p *process) stop(wait bool) error {
	if !p.isRunning() {
		return nil
	}
	if p.getState() == stateFinishing {
		return nil
	}

	p.setState(stateFinishing)

	wg := sync.WaitGroup{}
	if wait {
		wg.Add(1)
		p.callbacks.lock.Lock()
		cb := p.callbacks.onExit
		p.callbacks.onExit = func() {
			if cb != nil {
				cb()
			}
			wg.Done()
		}
		p.callbacks.lock.Unlock()
	}

	var err error
	if runtime.GOOS == "windows" {
		err = p.cmd.Process.Kill()
	} else {
		err = p.cmd.Process.Signal(os.Interrupt)
		if err != nil {
			err = p.cmd.Process.Kill()
		} else {
			p.killTimerLock.Lock()
			p.killTimer = time.AfterFunc(5*time.Second, func() {
				p.cmd.Process.Kill()
			})
			p.killTimerLock.Unlock()
		}
	}

	if err == nil && wait {
		wg.Wait()
	}

	if err != nil {
		p.parser.Parse(err.Error())
		p.setState(stateFailed)
	}
	return err
}

func (p *process) staler(ctx context.Context) {
	p.stale.lock.Lock()
	p.stale.last = time.Now()
	p.stale.lock.Unlock()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			p.stale.lock.Lock()
			last := p.stale.last
			timeout := p.stale.timeout
			p.stale.lock.Unlock()

			if t.Sub(last).Seconds() > timeout.Seconds() {
				p.stop(false)
				return
			}
		}
	}
}

func (p *process) reader() {
	scanner := bufio.NewScanner(p.stdout)
	scanner.Split(scanLine)

	p.parser.ResetStats()
	p.parser.ResetLog()

	for scanner.Scan() {
		line := scanner.Text()
		n := p.parser.Parse(line)
		if n != 0 {
			p.stale.lock.Lock()
			p.stale.last = time.Now()
			p.stale.lock.Unlock()
		}
	}

	p.waiter()
}

func (p *process) waiter() {
	code := 0
	if err := p.cmd.Wait(); err != nil {
		if exiterr, ok := err.(*exec.ExitError); ok {
			status := exiterr.Sys().(syscall.WaitStatus)
			if status.Exited() {
				code = status.ExitStatus()
				p.setState(stateFailed)
			} else {
				code = -1
				p.setState(stateKilled)
			}
		} else {
			code = -1
			p.setState(stateKilled)
		}
	} else {
		p.setState(stateFinished)
	}

	p.limits.Stop()

	p.killTimerLock.Lock()
	if p.killTimer != nil {
		p.killTimer.Stop()
		p.killTimer = nil
	}
	p.killTimerLock.Unlock()

	p.stale.lock.Lock()
	if p.stale.cancel != nil {
		p.stale.cancel()
		p.stale.cancel = nil
	}
	p.stale.lock.Unlock()

	p.finish(code)

	p.callbacks.lock.Lock()
	if p.callbacks.onExit != nil {
		go p.callbacks.onExit()
	}
	p.callbacks.lock.Unlock()
}

func (p *process) finish(code int) {
	p.exit.lock.Lock()
	p.exit.code = code
	p.exit.lock.Unlock()
	p.exit.once.Do(func() { close(p.exit.done) })
}

func scanLine(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) {
		r, w := utf8.DecodeRune(data[start:])
		if r != '\n' && r != '\r' {
			break
		}
		start += w
	}

	for i := start; i < len(data); {
		r, w := utf8.DecodeRune(data[i:])
		if r == '\n' || r == '\r' {
			return i + w, data[start:i], nil
		}
		i += w
	}

	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}

type nullParser struct{}

func (p *nullParser) Parse(line string) uint64 { return 1 }
func (p *nullParser) ResetStats() {}
func (p *nullParser) ResetLog() {}
func (p *nullParser) Log() []Line { return nil }

type nopLogger struct{}

func (l *nopLogger) Info(format string, args ...interface{}) {}
func (l *nopLogger) Error(format string, args ...interface{}) {}
func (l *nopLogger) Debug(format string, args ...interface{}) {}
