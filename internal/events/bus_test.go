// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribers(t *testing.T) {
	bus := New()

	var got []Event
	bus.Subscribe(ChannelLog, func(ev Event) { got = append(got, ev) })

	bus.Publish(ChannelLog, "first")
	bus.Publish(ChannelLog, "second")

	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Payload)
	assert.Equal(t, "second", got[1].Payload)
	assert.Equal(t, ChannelLog, got[0].Channel)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestChannelsAreIndependent(t *testing.T) {
	bus := New()

	logCount := 0
	statCount := 0
	bus.Subscribe(ChannelLog, func(Event) { logCount++ })
	bus.Subscribe(ChannelStatistics, func(Event) { statCount++ })

	bus.Publish(ChannelLog, nil)
	bus.Publish(ChannelStatistics, nil)
	bus.Publish(ChannelStatistics, nil)

	assert.Equal(t, 1, logCount)
	assert.Equal(t, 2, statCount)
}

func TestSubscriptionClose(t *testing.T) {
	bus := New()

	count := 0
	sub := bus.Subscribe(ChannelLog, func(Event) { count++ })
	assert.Equal(t, 1, bus.SubscriberCount(ChannelLog))

	bus.Publish(ChannelLog, nil)
	sub.Close()
	bus.Publish(ChannelLog, nil)

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, bus.SubscriberCount(ChannelLog))
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := New()
	assert.NotPanics(t, func() { bus.Publish(ChannelStatistics, 42) })
}

func TestCloseNilSubscription(t *testing.T) {
	var sub *Subscription
	assert.NotPanics(t, func() { sub.Close() })
}
