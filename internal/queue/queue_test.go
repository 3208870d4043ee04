package queue

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	evt := MarkEvent{
		MarkID:        "m1",
		StudentNumber: "2024001",
		Day:           "mon",
		Period:        "first",
		Date:          "2026-03-02",
	}
	if err := q.Publish(ctx, evt); err != nil {
		t.Fatalf("publish: %v", err)
	}

	events, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	select {
	case got := <-events:
		if got != evt {
			t.Errorf("got %+v, want %+v", got, evt)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestInMemoryPublishHonorsCancel(t *testing.T) {
	q := NewInMemory(1)
	ctx, cancel := context.WithCancel(context.Background())

	if err := q.Publish(ctx, MarkEvent{MarkID: "m1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	cancel()
	// queue is full and the context is done; publish must not block
	if err := q.Publish(ctx, MarkEvent{MarkID: "m2"}); err == nil {
		t.Error("expected context error on full queue")
	}
}
