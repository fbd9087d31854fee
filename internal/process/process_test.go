// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package process

import (
	"bufio"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresBinary(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestInitialStatus(t *testing.T) {
	p, err := New(Config{Binary: "ffmpeg"})
	require.NoError(t, err)

	status := p.Status()
	assert.Equal(t, "finished", status.State)
	assert.Equal(t, "stop", status.Order)
	assert.Equal(t, -1, status.ExitCode)

	assert.False(t, p.IsRunning())
	assert.Equal(t, -1, p.ExitCode())
}

func TestStopBeforeStartIsANop(t *testing.T) {
	p, err := New(Config{Binary: "ffmpeg"})
	require.NoError(t, err)

	assert.NoError(t, p.Stop(false))
	assert.Equal(t, "stop", p.Status().Order)
}

func TestWaitHonorsContext(t *testing.T) {
	p, err := New(Config{Binary: "ffmpeg"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc, err := p.Wait(ctx)
	assert.Equal(t, -1, rc)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitReturnsAfterFinish(t *testing.T) {
	p, err := New(Config{Binary: "ffmpeg"})
	require.NoError(t, err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		p.(*process).finish(2)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	rc, err := p.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, rc)
	assert.Equal(t, 2, p.ExitCode())
}

func TestFinishIsIdempotent(t *testing.T) {
	p, err := New(Config{Binary: "ffmpeg"})
	require.NoError(t, err)

	proc := p.(*process)
	proc.finish(0)
	assert.NotPanics(t, func() { proc.finish(0) })
}

func TestStateTransitions(t *testing.T) {
	p, err := New(Config{Binary: "ffmpeg"})
	require.NoError(t, err)
	proc := p.(*process)

	require.NoError(t, proc.setState(stateStarting))
	assert.True(t, proc.isRunning())

	require.NoError(t, proc.setState(stateRunning))
	require.NoError(t, proc.setState(stateFinishing))
	require.NoError(t, proc.setState(stateFinished))
	assert.False(t, proc.isRunning())

	// finished only restarts
	assert.Error(t, proc.setState(stateRunning))
	require.NoError(t, proc.setState(stateStarting))
	require.NoError(t, proc.setState(stateFailed))
	assert.Equal(t, "failed", proc.getState().String())
}

func TestScanLineSplitsOnCRAndLF(t *testing.T) {
	input := "frame=  100\rframe=  200\nsize=    2048kB\r\nlast"

	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Split(scanLine)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())

	assert.Equal(t, []string{
		"frame=  100",
		"frame=  200",
		"size=    2048kB",
		"last",
	}, lines)
}

func TestScanLineSkipsLeadingBreaks(t *testing.T) {
	scanner := bufio.NewScanner(strings.NewReader("\r\n\r\nonly"))
	scanner.Split(scanLine)

	require.True(t, scanner.Scan())
	assert.Equal(t, "only", scanner.Text())
	assert.False(t, scanner.Scan())
}

func TestNullLimiter(t *testing.T) {
	limiter := NewNullLimiter()
	require.NoError(t, limiter.Start(1234))

	cpu, memory := limiter.Current()
	assert.Zero(t, cpu)
	assert.Zero(t, memory)
	limiter.Stop()
}
