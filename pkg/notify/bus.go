// Package notify fans out change notifications to in-process subscribers,
// such as the API's event stream.
package notify

import (
	"sync"
	"time"
)

// Change describes a mutation of one record.
type Change struct {
	Entity string    `json:"entity"` // inbox, task, reference
	Action string    `json:"action"` // created, converted, deleted, done, snoozed
	ID     int64     `json:"id"`
	At     time.Time `json:"at"`
}

// Bus delivers every published Change to all current subscribers.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan Change]struct{}
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan Change]struct{})}
}

// Publish sends c to every subscriber without blocking. A subscriber whose
// buffer is full misses c.
func (b *Bus) Publish(c Change) {
	if c.At.IsZero() {
		c.At = time.Now().UTC()
	}
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- c:
		default:
		}
	}
	b.mu.RUnlock()
}

// Subscribe returns a buffered channel that receives all new changes.
func (b *Bus) Subscribe() chan Change {
	ch := make(chan Change, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(ch chan Change) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Subscribers reports how many subscribers are attached.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
