package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("message.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindMessageAppended, Timestamp: time.Now(), Payload: MessageAppended{RoomID: "r1"}})

	select {
	case evt := <-ch:
		if evt.Kind != KindMessageAppended {
			t.Errorf("got kind %q, want %q", evt.Kind, KindMessageAppended)
		}
		p, ok := evt.Payload.(MessageAppended)
		if !ok || p.RoomID != "r1" {
			t.Errorf("payload = %#v, want MessageAppended for r1", evt.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("room.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindMessageAppended})
	b.Publish(Event{Kind: KindRoomCreated})

	select {
	case evt := <-ch:
		if evt.Kind != KindRoomCreated {
			t.Errorf("got kind %q, want %q", evt.Kind, KindRoomCreated)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	// Ensure the message event was not delivered.
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected: no more events.
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("room.", 10)
	unsub()
	unsub() // idempotent

	b.Publish(Event{Kind: KindRoomCreated})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected.
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("room.", 1)
	defer unsub()

	// Fill buffer.
	b.Publish(Event{Kind: KindRoomCreated})
	// This should be dropped (non-blocking).
	b.Publish(Event{Kind: KindRoomPreviewUpdated})

	evt := <-ch
	if evt.Kind != KindRoomCreated {
		t.Errorf("got %q, want %q", evt.Kind, KindRoomCreated)
	}
}
