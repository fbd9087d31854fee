// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层
//
// Package events is a small in-process pub/sub bus. The engine publishes
// FFmpeg log and statistics events on named channels; the bridge session and
// the API event stream subscribe to them.

package events

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Channel names used by the engine.
const (
	ChannelLog        = "log"
	ChannelStatistics = "statistics"
)

// Event is a payload delivered on a channel
type Event struct {
	Channel   string
	Payload   interface{}
	Timestamp time.Time
}

// Handler receives events on a subscribed channel
type Handler func(Event)

// Subscription is a handle for one registered handler
type Subscription struct {
	id      string
	channel string
	bus     *Bus
}

// Close removes the subscription from the bus
func (s *Subscription) Close() {
	if s == nil || s.bus == nil {
		return
	}
	s.bus.unsubscribe(s.channel, s.id)
}

// Bus dispatches events to channel subscribers
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[string]Handler
}

// New creates an event bus
func New() *Bus {
	return &Bus{
		subs: make(map[string]map[string]Handler),
	}
}

// Subscribe registers a handler on a channel
func (b *Bus) Subscribe(channel string, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[channel] == nil {
		b.subs[channel] = make(map[string]Handler)
	}
	id := newSubscriptionID()
	b.subs[channel][id] = h

	return &Subscription{id: id, channel: channel, bus: b}
}

// Publish delivers an event to every subscriber of the channel. Dispatch is
// synchronous in the caller's goroutine so events on one channel keep their
// publish order.
func (b *Bus) Publish(channel string, payload interface{}) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[channel]))
	for _, h := range b.subs[channel] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	ev := Event{Channel: channel, Payload: payload, Timestamp: time.Now()}
	for _, h := range handlers {
		h(ev)
	}
}

// SubscriberCount returns the number of handlers on a channel
func (b *Bus) SubscriberCount(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[channel])
}

func (b *Bus) unsubscribe(channel, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if handlers, ok := b.subs[channel]; ok {
		delete(handlers, id)
	}
}

func newSubscriptionID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(buf)
}
