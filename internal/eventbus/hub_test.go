package eventbus

import (
	"context"
	"testing"
	"time"
)

func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	sub := hub.Subscribe(ctx, 4)

	hub.Publish(Event{Type: TypeWorkoutUpdated, Data: map[string]any{"index": 1}})

	select {
	case evt := <-sub:
		if evt.Type != TypeWorkoutUpdated || evt.Timestamp == 0 {
			t.Fatalf("evt=%+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for event")
	}

	cancel()
	deadline := time.Now().Add(time.Second)
	for hub.Subscribers() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.Subscribers() != 0 {
		t.Fatalf("subscriber not removed after cancel")
	}
	if _, ok := <-sub; ok {
		t.Fatalf("channel should be closed")
	}
}

func TestHubNilSafe(t *testing.T) {
	var hub *Hub
	hub.Publish(Event{Type: TypeRestTimerDone})
	if hub.Subscribers() != 0 {
		t.Fatalf("nil hub should report zero subscribers")
	}
}
