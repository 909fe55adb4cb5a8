package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventConnected     = "connected"
	EventBudgetUpdated = "budget_updated"
	EventBudgetAlert   = "budget_alert"
)

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// BudgetUpdate сообщает клиенту, что данные бюджетов нужно перечитать.
type BudgetUpdate struct {
	Version  uint64 `json:"version"`
	Reason   string `json:"reason"`
	Category string `json:"category,omitempty"`
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan Event]struct{}
	versions    map[uuid.UUID]uint64
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[chan Event]struct{}),
		versions:    make(map[uuid.UUID]uint64),
	}
}

// Subscribe подписывает пользователя на события и возвращает канал и функцию отписки.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, 10)

	h.mu.Lock()
	defer h.mu.Unlock()

	userSubs, ok := h.subscribers[userID]
	if !ok {
		userSubs = make(map[chan Event]struct{})
		h.subscribers[userID] = userSubs
	}
	userSubs[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			if subs, exists := h.subscribers[userID]; exists {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.subscribers, userID)
				}
			}
			close(ch)
		})
	}
}

// Publish отправляет событие всем подписчикам пользователя. Медленные подписчики пропускают событие.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.subscribers[userID]
	if !ok {
		return
	}

	for ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount возвращает число открытых подписок пользователя.
func (h *Hub) SubscriberCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[userID])
}

// Version возвращает текущую версию бюджетов пользователя.
func (h *Hub) Version(userID uuid.UUID) uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.versions[userID]
}

// BudgetUpdated увеличивает версию бюджетов пользователя и рассылает budget_updated.
func (h *Hub) BudgetUpdated(userID uuid.UUID, reason, category string) uint64 {
	h.mu.Lock()
	h.versions[userID]++
	version := h.versions[userID]
	h.mu.Unlock()

	h.Publish(userID, Event{
		Type: EventBudgetUpdated,
		Data: BudgetUpdate{Version: version, Reason: reason, Category: category},
	})

	return version
}
