package notify

import (
	"sync"
	"time"

	"lingochat-backend/pkg/logger"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a one-shot, user-visible message.
type Notification struct {
	Level       Level     `json:"level"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Time        time.Time `json:"time"`
}

// Publisher is what producers of notifications depend on.
type Publisher interface {
	Publish(level Level, title, description string)
}

const subscriberBuffer = 16

// Hub fans notifications out to every subscriber. Slow subscribers lose
// events rather than blocking the publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan Notification
	nextID int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Notification)}
}

// Subscribe returns a channel of notifications and a cancel func that
// unregisters and closes it.
func (h *Hub) Subscribe() (<-chan Notification, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Notification, subscriberBuffer)
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (h *Hub) Publish(level Level, title, description string) {
	n := Notification{
		Level:       level,
		Title:       title,
		Description: description,
		Time:        time.Now(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs {
		select {
		case ch <- n:
		default:
			logger.Warnf("Dropping notification %q for slow subscriber %d", title, id)
		}
	}
}

// Subscribers reports the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Publish(Level, string, string) {}
