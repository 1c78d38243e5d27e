package localstore

import "sync"

type Collection string

const (
	CollectionRecipes   Collection = "recipes"
	CollectionInventory Collection = "inventory"
	CollectionShopping  Collection = "shopping"
	CollectionChatLogs  Collection = "chat_logs"
)

type EventType string

const (
	EventPut    EventType = "put"
	EventDelete EventType = "delete"
)

// Event describes one mutation of the local store. Subscribers use it to
// re-query the affected collection; the record itself is not carried.
type Event struct {
	Type        EventType  `json:"type"`
	Collection  Collection `json:"collection"`
	ID          string     `json:"id"`
	HouseholdID string     `json:"householdId"`
}

const subscriberBuffer = 64

// Notifier fans every store mutation out to registered subscribers. Sends
// never block: a subscriber that falls behind loses events and is expected
// to re-query on the next one it does receive.
type Notifier struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called when the subscriber goes away; it closes the channel.
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		if _, ok := n.subs[ch]; ok {
			delete(n.subs, ch)
			close(ch)
		}
		n.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber with room in its buffer.
func (n *Notifier) Publish(e Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.subs {
		select {
		case ch <- e:
		default:
			// Subscriber buffer full — drop rather than block a write path
		}
	}
}

// SubscriberCount returns the number of registered subscribers.
func (n *Notifier) SubscriberCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}
