// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ZSC714725/ffmpegbridge/internal/bridge"
	"github.com/ZSC714725/ffmpegbridge/internal/events"
	"github.com/ZSC714725/ffmpegbridge/internal/ffmpeg"
	"github.com/ZSC714725/ffmpegbridge/internal/logger"
	"github.com/ZSC714725/ffmpegbridge/internal/session"
)

// Handler holds dependencies
type Handler struct {
	store   session.Store
	session *bridge.Session
	engine  ffmpeg.Engine
	bus     *events.Bus
	logger  logger.Logger
}

// NewHandler creates the API handler
func NewHandler(store session.Store, s *bridge.Session, engine ffmpeg.Engine, bus *events.Bus, log logger.Logger) *Handler {
	return &Handler{store: store, session: s, engine: engine, bus: bus, logger: log}
}

func errResp(c *gin.Context, code int, msg, detail string) {
	c.JSON(code, ErrorResponse{Code: code, Message: msg, Detail: detail})
}

// Version GET /api/v1/version
func (h *Handler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, VersionResponse{
		Version:  h.session.GetFFmpegVersion(),
		Platform: h.session.GetPlatform(),
	})
}

// GetLogLevel GET /api/v1/loglevel
func (h *Handler) GetLogLevel(c *gin.Context) {
	level := h.session.GetLogLevel()
	c.JSON(http.StatusOK, LogLevelResponse{
		Level: int(level),
		Name:  bridge.LogLevelToString(level),
	})
}

// SetLogLevel PUT /api/v1/loglevel
func (h *Handler) SetLogLevel(c *gin.Context) {
	var req LogLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp(c, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}

	// pass-through: the value is not validated here
	h.session.SetLogLevel(ffmpeg.Level(req.Level))

	level := h.session.GetLogLevel()
	c.JSON(http.StatusOK, LogLevelResponse{
		Level: int(level),
		Name:  bridge.LogLevelToString(level),
	})
}

// LastStatistics GET /api/v1/statistics/last
func (h *Handler) LastStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.GetLastReceivedStatistics())
}

// ResetStatistics POST /api/v1/statistics/reset
func (h *Handler) ResetStatistics(c *gin.Context) {
	h.session.ResetStatistics()
	c.JSON(http.StatusOK, "OK")
}

// DisableRedirection POST /api/v1/redirection/disable
func (h *Handler) DisableRedirection(c *gin.Context) {
	h.session.DisableRedirection()
	c.JSON(http.StatusOK, "OK")
}

// SetFontconfig PUT /api/v1/fontconfig
func (h *Handler) SetFontconfig(c *gin.Context) {
	var req FontconfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp(c, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}

	if req.ConfigurationPath != "" {
		h.session.SetFontconfigConfigurationPath(req.ConfigurationPath)
	}
	if req.FontDirectory != "" {
		if err := h.session.SetFontDirectory(req.FontDirectory); err != nil {
			errResp(c, http.StatusBadRequest, "Invalid font directory", err.Error())
			return
		}
	}

	c.JSON(http.StatusOK, "OK")
}

// AddExecution POST /api/v1/executions
func (h *Handler) AddExecution(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errResp(c, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}

	e, err := h.store.Add(req.Arguments)
	if err != nil {
		if err == session.ErrBlockedCommand {
			errResp(c, http.StatusForbidden, "Command blocked", err.Error())
			return
		}
		errResp(c, http.StatusBadRequest, "Invalid arguments", err.Error())
		return
	}

	c.JSON(http.StatusOK, executionToAPI(e, false))
}

// ListExecutions GET /api/v1/executions
func (h *Handler) ListExecutions(c *gin.Context) {
	idStr := c.DefaultQuery("id", "")

	var ids []string
	if idStr != "" {
		ids = strings.FieldsFunc(idStr, func(r rune) bool { return r == ',' })
		for i := range ids {
			ids[i] = strings.TrimSpace(ids[i])
		}
	}

	executions := h.store.List(ids)
	out := make([]Execution, 0, len(executions))
	for _, e := range executions {
		out = append(out, executionToAPI(e, false))
	}

	c.JSON(http.StatusOK, out)
}

// GetExecution GET /api/v1/executions/:id
func (h *Handler) GetExecution(c *gin.Context) {
	id := c.Param("id")

	e, err := h.store.Get(id)
	if err != nil {
		errResp(c, http.StatusNotFound, "Unknown execution ID", err.Error())
		return
	}

	c.JSON(http.StatusOK, executionToAPI(e, true))
}

// CancelExecution PUT /api/v1/executions/:id/cancel
func (h *Handler) CancelExecution(c *gin.Context) {
	id := c.Param("id")

	if err := h.store.Cancel(id); err != nil {
		if err == session.ErrNotFound {
			errResp(c, http.StatusNotFound, "Unknown execution ID", err.Error())
			return
		}
		errResp(c, http.StatusInternalServerError, "Cancel failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, "OK")
}

// DeleteExecution DELETE /api/v1/executions/:id
func (h *Handler) DeleteExecution(c *gin.Context) {
	id := c.Param("id")

	if err := h.store.Delete(id); err != nil {
		if err == session.ErrNotFound {
			errResp(c, http.StatusNotFound, "Unknown execution ID", err.Error())
			return
		}
		errResp(c, http.StatusInternalServerError, "Delete failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, "OK")
}

func executionToAPI(e *session.Execution, withLog bool) Execution {
	status := e.Status()

	out := Execution{
		ID:         e.ID,
		Arguments:  e.Arguments,
		CreatedAt:  e.CreatedAt,
		State:      status.State,
		ReturnCode: status.ExitCode,
		CPU:        status.CPU,
		Memory:     status.Memory,
	}

	stats := e.Statistics()
	out.Statistics = &stats

	if withLog {
		lines := e.Log()
		out.Log = make([][2]string, len(lines))
		for i, line := range lines {
			out.Log[i] = [2]string{
				line.Timestamp.Format("2006-01-02 15:04:05.000"),
				line.Data,
			}
		}
	}

	return out
}
