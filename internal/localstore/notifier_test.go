package localstore

import (
	"testing"
	"time"
)

func TestNotifierSubscribeAndCancel(t *testing.T) {
	n := NewNotifier()

	events, cancel := n.Subscribe()
	if n.SubscriberCount() != 1 {
		t.Fatalf("subscriber count = %d, want 1", n.SubscriberCount())
	}

	n.Publish(Event{Type: EventPut, Collection: CollectionRecipes, ID: "r1", HouseholdID: "h1"})
	select {
	case got := <-events:
		if got.ID != "r1" {
			t.Errorf("event = %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	cancel()
	if n.SubscriberCount() != 0 {
		t.Errorf("subscriber count = %d after cancel, want 0", n.SubscriberCount())
	}
	if _, ok := <-events; ok {
		t.Error("channel still open after cancel")
	}

	// Cancel twice is safe.
	cancel()
}

func TestNotifierDropsWhenSubscriberStalls(t *testing.T) {
	n := NewNotifier()

	_, cancel := n.Subscribe()
	defer cancel()

	// Nobody is draining; publishing past the buffer must not block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*2; i++ {
			n.Publish(Event{Type: EventPut, Collection: CollectionRecipes, ID: "r", HouseholdID: "h"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a stalled subscriber")
	}
}

func TestNotifierFanOut(t *testing.T) {
	n := NewNotifier()

	a, cancelA := n.Subscribe()
	defer cancelA()
	b, cancelB := n.Subscribe()
	defer cancelB()

	n.Publish(Event{Type: EventDelete, Collection: CollectionShopping, ID: "s1", HouseholdID: "h1"})

	for _, ch := range []<-chan Event{a, b} {
		select {
		case got := <-ch:
			if got.Type != EventDelete {
				t.Errorf("event = %+v", got)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber missed the event")
		}
	}
}
