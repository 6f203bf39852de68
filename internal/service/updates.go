package service

import (
	"encoding/json"
	"sync"
	"time"
)

// UpdateType represents the type of a live update event
type UpdateType string

const (
	UpdateNotification   UpdateType = "notification"
	UpdateMessage        UpdateType = "discussion.message"
	UpdateSessionChanged UpdateType = "session.changed"
	UpdateHeartbeat      UpdateType = "heartbeat"
)

// Update represents a server-sent event delivered to a connected client
type Update struct {
	Type UpdateType  `json:"type"`
	Data interface{} `json:"data"`
}

// Format returns the SSE wire format of the update
func (u *Update) Format() string {
	data, _ := json.Marshal(u.Data)
	return "event: " + string(u.Type) + "\ndata: " + string(data) + "\n\n"
}

// Subscriber represents a connected SSE client
type Subscriber struct {
	ID        string
	AccountID string
	Updates   chan *Update
	Done      chan struct{}
}

// UpdateHub manages per-account SSE subscriptions. A client opens one
// stream and receives its account's notifications, incoming messages and
// session changes.
type UpdateHub struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]*Subscriber // accountID -> subscriberID -> subscriber
	heartbeat   *time.Ticker
	done        chan struct{}
}

// NewUpdateHub creates a new update hub
func NewUpdateHub() *UpdateHub {
	hub := &UpdateHub{
		subscribers: make(map[string]map[string]*Subscriber),
		done:        make(chan struct{}),
	}
	hub.heartbeat = time.NewTicker(30 * time.Second)
	go hub.sendHeartbeats()
	return hub
}

// Subscribe adds a new subscriber for an account
func (h *UpdateHub) Subscribe(accountID, subscriberID string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{
		ID:        subscriberID,
		AccountID: accountID,
		Updates:   make(chan *Update, 100), // Buffer to prevent blocking
		Done:      make(chan struct{}),
	}

	if h.subscribers[accountID] == nil {
		h.subscribers[accountID] = make(map[string]*Subscriber)
	}
	h.subscribers[accountID][subscriberID] = sub

	return sub
}

// Unsubscribe removes a subscriber
func (h *UpdateHub) Unsubscribe(accountID, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if accountSubs, ok := h.subscribers[accountID]; ok {
		if sub, ok := accountSubs[subscriberID]; ok {
			close(sub.Done)
			close(sub.Updates)
			delete(accountSubs, subscriberID)
		}
		if len(accountSubs) == 0 {
			delete(h.subscribers, accountID)
		}
	}
}

// SendToAccount sends an update to all of an account's subscribers.
// A subscriber with a full buffer is skipped rather than blocked on.
func (h *UpdateHub) SendToAccount(accountID string, update Update) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	accountSubs, ok := h.subscribers[accountID]
	if !ok {
		return
	}

	for _, sub := range accountSubs {
		select {
		case sub.Updates <- &update:
		default:
		}
	}
}

// SendToAccounts sends an update to several accounts at once
func (h *UpdateHub) SendToAccounts(accountIDs []string, update Update) {
	for _, id := range accountIDs {
		h.SendToAccount(id, update)
	}
}

// sendHeartbeats keeps idle connections alive through proxies
func (h *UpdateHub) sendHeartbeats() {
	for {
		select {
		case <-h.heartbeat.C:
			h.mu.RLock()
			update := &Update{
				Type: UpdateHeartbeat,
				Data: map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				},
			}
			for _, accountSubs := range h.subscribers {
				for _, sub := range accountSubs {
					select {
					case sub.Updates <- update:
					default:
					}
				}
			}
			h.mu.RUnlock()
		case <-h.done:
			return
		}
	}
}

// SubscriberCount returns the number of subscribers for an account
func (h *UpdateHub) SubscriberCount(accountID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if accountSubs, ok := h.subscribers[accountID]; ok {
		return len(accountSubs)
	}
	return 0
}

// Close stops the hub and disconnects every subscriber
func (h *UpdateHub) Close() {
	close(h.done)
	h.heartbeat.Stop()

	h.mu.Lock()
	defer h.mu.Unlock()

	for accountID, accountSubs := range h.subscribers {
		for _, sub := range accountSubs {
			close(sub.Done)
			close(sub.Updates)
		}
		delete(h.subscribers, accountID)
	}
}
