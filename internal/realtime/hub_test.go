package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHubBroadcastReachesRoomOnly(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe(1)
	b := hub.Subscribe(1)
	other := hub.Subscribe(2)

	hub.Broadcast(Event{Kind: EventPublicMessage, ReportID: 1, Payload: "hi"})

	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
	assert.Len(t, other, 0)

	got := <-a
	assert.Equal(t, EventPublicMessage, got.Kind)
	assert.Equal(t, uint(1), got.ReportID)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe(7)
	hub.Unsubscribe(7, ch)

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.Subscribers(7))

	// double unsubscribe must not panic
	hub.Unsubscribe(7, ch)
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe(3)

	for i := 0; i < 40; i++ {
		hub.Broadcast(Event{Kind: EventStatusChange, ReportID: 3})
	}

	// channel capacity is 16; the rest were dropped, not queued
	assert.Len(t, ch, 16)
}
