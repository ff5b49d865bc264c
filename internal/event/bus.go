package event

import (
	"sync"

	"glaunch/internal/domain"
)

// Event is either a progress update or a structured error.
type Event struct {
	Progress *domain.ProgressEvent
	Error    *domain.ErrorEvent
}

// Bus fans out progress and error events to subscribers. Publishing never
// blocks: a subscriber whose channel is full misses that event. Progress
// streams are dense enough that dropped intermediate updates are harmless,
// and a transfer must never backpressure on a slow consumer.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Event
}

// NewBus creates an event bus with no subscribers.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe function. The channel is closed on unsubscribe.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 64
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// PublishProgress sends a progress event to all subscribers.
func (b *Bus) PublishProgress(ev domain.ProgressEvent) {
	b.publish(Event{Progress: &ev})
}

// PublishError sends an error event to all subscribers.
func (b *Bus) PublishError(ev domain.ErrorEvent) {
	b.publish(Event{Error: &ev})
}

func (b *Bus) publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber is behind; drop rather than block the transfer.
		}
	}
}

// SubscriberCount reports the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
