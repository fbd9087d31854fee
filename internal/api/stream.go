// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ZSC714725/ffmpegbridge/internal/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// streamMessage is one bus event on the wire
type streamMessage struct {
	Channel   string      `json:"channel"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Events GET /api/v1/events upgrades to a websocket and forwards log and
// statistics events until the client goes away.
func (h *Handler) Events(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade: %v", err)
		return
	}

	// Slow clients fall behind instead of stalling the bus.
	outgoing := make(chan streamMessage, 256)
	forward := func(ev events.Event) {
		select {
		case outgoing <- streamMessage{Channel: ev.Channel, Payload: ev.Payload, Timestamp: ev.Timestamp}:
		default:
		}
	}

	logSub := h.bus.Subscribe(events.ChannelLog, forward)
	statSub := h.bus.Subscribe(events.ChannelStatistics, forward)

	done := make(chan struct{})

	// reader: detect disconnect, discard client messages
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			logSub.Close()
			statSub.Close()
			conn.Close()
			return
		case msg := <-outgoing:
			if err := conn.WriteJSON(msg); err != nil {
				logSub.Close()
				statSub.Close()
				conn.Close()
				return
			}
		}
	}
}
