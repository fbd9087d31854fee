// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZSC714725/ffmpegbridge/internal/bridge"
	"github.com/ZSC714725/ffmpegbridge/internal/events"
	"github.com/ZSC714725/ffmpegbridge/internal/ffmpeg"
	"github.com/ZSC714725/ffmpegbridge/internal/ffmpeg/parse"
	"github.com/ZSC714725/ffmpegbridge/internal/ffmpeg/skills"
	"github.com/ZSC714725/ffmpegbridge/internal/logger"
	"github.com/ZSC714725/ffmpegbridge/internal/process"
	"github.com/ZSC714725/ffmpegbridge/internal/session"
)

type fakeProcess struct {
	mu      sync.Mutex
	running bool
}

func (p *fakeProcess) Status() process.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	state := "finished"
	if p.running {
		state = "running"
	}
	return process.Status{State: state, ExitCode: -1}
}

func (p *fakeProcess) Start() error {
	p.mu.Lock()
	p.running = true
	p.mu.Unlock()
	return nil
}

func (p *fakeProcess) Stop(wait bool) error {
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *fakeProcess) Wait(ctx context.Context) (int, error) { return -1, nil }
func (p *fakeProcess) ExitCode() int { return -1 }

func (p *fakeProcess) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

type fakeEngine struct {
	mu        sync.Mutex
	level     ffmpeg.Level
	lastStats parse.Statistics
	blocked   string
}

func (e *fakeEngine) Binary() string { return "/usr/bin/ffmpeg" }
func (e *fakeEngine) Version() string { return "6.1.1" }
func (e *fakeEngine) Platform() string { return "linux-amd64" }
func (e *fakeEngine) Skills() skills.Skills { return skills.Skills{} }
func (e *fakeEngine) ReloadSkills() error { return nil }

func (e *fakeEngine) Execute(ctx context.Context, parameters string) (int, error) { return 0, nil }
func (e *fakeEngine) Cancel() {}

func (e *fakeEngine) NewParser() parse.Parser { return parse.New(parse.Config{}) }
func (e *fakeEngine) NewProcess(config ffmpeg.ProcessConfig) (process.Process, error) {
	return &fakeProcess{}, nil
}

func (e *fakeEngine) ValidateCommand(arguments string) bool {
	return e.blocked == "" || !strings.Contains(arguments, e.blocked)
}

func (e *fakeEngine) EnableLogEvents() {}
func (e *fakeEngine) DisableLogEvents() {}
func (e *fakeEngine) EnableStatisticsEvents() {}
func (e *fakeEngine) DisableStatisticsEvents() {}
func (e *fakeEngine) EnableRedirection() {}
func (e *fakeEngine) DisableRedirection() {}

func (e *fakeEngine) LogLevel() ffmpeg.Level {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.level
}

func (e *fakeEngine) SetLogLevel(level ffmpeg.Level) {
	e.mu.Lock()
	e.level = level
	e.mu.Unlock()
}

func (e *fakeEngine) LastReceivedStatistics() parse.Statistics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastStats
}

func (e *fakeEngine) ResetStatistics() {
	e.mu.Lock()
	e.lastStats = parse.Statistics{}
	e.mu.Unlock()
}

func (e *fakeEngine) SetFontconfigConfigurationPath(path string) {}
func (e *fakeEngine) SetFontDirectory(path string) error { return nil }

func newTestRouter(t *testing.T, engine *fakeEngine) (*gin.Engine, session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bus := events.New()
	s, err := bridge.New(bridge.Config{
		Engine:     engine,
		Bus:        bus,
		ConsoleOut: io.Discard,
	})
	require.NoError(t, err)

	store := session.NewStore(engine, logger.NewNop())
	h := NewHandler(store, s, engine, bus, logger.NewNop())

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.GET("/version", h.Version)
	v1.GET("/loglevel", h.GetLogLevel)
	v1.PUT("/loglevel", h.SetLogLevel)
	v1.GET("/statistics/last", h.LastStatistics)
	v1.POST("/statistics/reset", h.ResetStatistics)
	v1.POST("/redirection/disable", h.DisableRedirection)
	v1.PUT("/fontconfig", h.SetFontconfig)
	v1.POST("/executions", h.AddExecution)
	v1.GET("/executions", h.ListExecutions)
	v1.GET("/executions/:id", h.GetExecution)
	v1.PUT("/executions/:id/cancel", h.CancelExecution)
	v1.DELETE("/executions/:id", h.DeleteExecution)

	return router, store
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestVersion(t *testing.T) {
	router, _ := newTestRouter(t, &fakeEngine{})

	w := doRequest(router, http.MethodGet, "/api/v1/version", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp VersionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "6.1.1", resp.Version)
	assert.Equal(t, "linux-amd64", resp.Platform)
}

func TestLogLevelRoundTrip(t *testing.T) {
	router, _ := newTestRouter(t, &fakeEngine{level: ffmpeg.LevelInfo})

	w := doRequest(router, http.MethodGet, "/api/v1/loglevel", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp LogLevelResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int(ffmpeg.LevelInfo), resp.Level)
	assert.Equal(t, "INFO", resp.Name)

	w = doRequest(router, http.MethodPut, "/api/v1/loglevel", LogLevelRequest{Level: int(ffmpeg.LevelDebug)})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int(ffmpeg.LevelDebug), resp.Level)
	assert.Equal(t, "DEBUG", resp.Name)
}

func TestSetLogLevelAcceptsUnknownValues(t *testing.T) {
	router, _ := newTestRouter(t, &fakeEngine{})

	// out-of-range values pass through; the name comes back empty
	w := doRequest(router, http.MethodPut, "/api/v1/loglevel", LogLevelRequest{Level: 1000})
	require.Equal(t, http.StatusOK, w.Code)

	var resp LogLevelResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1000, resp.Level)
	assert.Equal(t, "", resp.Name)
}

func TestSetLogLevelInvalidJSON(t *testing.T) {
	router, _ := newTestRouter(t, &fakeEngine{})

	req := httptest.NewRequest(http.MethodPut, "/api/v1/loglevel", strings.NewReader("{broken"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatistics(t *testing.T) {
	engine := &fakeEngine{lastStats: parse.Statistics{Frame: 1500, Fps: 30}}
	router, _ := newTestRouter(t, engine)

	w := doRequest(router, http.MethodGet, "/api/v1/statistics/last", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats parse.Statistics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, uint64(1500), stats.Frame)

	w = doRequest(router, http.MethodPost, "/api/v1/statistics/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, engine.LastReceivedStatistics().Frame)
}

func TestAddExecution(t *testing.T) {
	router, _ := newTestRouter(t, &fakeEngine{})

	w := doRequest(router, http.MethodPost, "/api/v1/executions", ExecuteRequest{
		Arguments: "-i in.mp4 -c copy out.mp4",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var exec Execution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exec))
	assert.NotEmpty(t, exec.ID)
	assert.Equal(t, "-i in.mp4 -c copy out.mp4", exec.Arguments)
}

func TestAddExecutionRejectsMissingArguments(t *testing.T) {
	router, _ := newTestRouter(t, &fakeEngine{})

	w := doRequest(router, http.MethodPost, "/api/v1/executions", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddExecutionBlockedCommand(t *testing.T) {
	router, _ := newTestRouter(t, &fakeEngine{blocked: "lavfi"})

	w := doRequest(router, http.MethodPost, "/api/v1/executions", ExecuteRequest{
		Arguments: "-f lavfi -i testsrc out.mp4",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetExecution(t *testing.T) {
	router, store := newTestRouter(t, &fakeEngine{})

	exec, err := store.Add("-i in.mp4 out.mp4")
	require.NoError(t, err)

	w := doRequest(router, http.MethodGet, "/api/v1/executions/"+exec.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp Execution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, exec.ID, resp.ID)

	w = doRequest(router, http.MethodGet, "/api/v1/executions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListExecutionsFilter(t *testing.T) {
	router, store := newTestRouter(t, &fakeEngine{})

	_, err := store.Add("-i a.mp4 a.mkv")
	require.NoError(t, err)
	b, err := store.Add("-i b.mp4 b.mkv")
	require.NoError(t, err)

	w := doRequest(router, http.MethodGet, "/api/v1/executions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var all []Execution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	w = doRequest(router, http.MethodGet, "/api/v1/executions?id="+b.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var filtered []Execution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, b.ID, filtered[0].ID)
}

func TestCancelAndDeleteExecution(t *testing.T) {
	router, store := newTestRouter(t, &fakeEngine{})

	exec, err := store.Add("-i in.mp4 out.mp4")
	require.NoError(t, err)

	w := doRequest(router, http.MethodPut, "/api/v1/executions/"+exec.ID+"/cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/v1/executions/"+exec.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/executions/"+exec.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodPut, "/api/v1/executions/missing/cancel", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/v1/executions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDisableRedirection(t *testing.T) {
	router, _ := newTestRouter(t, &fakeEngine{})

	w := doRequest(router, http.MethodPost, "/api/v1/redirection/disable", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetFontconfig(t *testing.T) {
	router, _ := newTestRouter(t, &fakeEngine{})

	w := doRequest(router, http.MethodPut, "/api/v1/fontconfig", FontconfigRequest{
		ConfigurationPath: "/etc/fonts",
		FontDirectory:     "/usr/share/fonts",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}
