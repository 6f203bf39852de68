package service

import (
	"strings"
	"testing"
)

func TestUpdateHub_SubscribeAndSend(t *testing.T) {
	hub := NewUpdateHub()
	defer hub.Close()

	sub1 := hub.Subscribe("account:alice", "sub-1")
	sub2 := hub.Subscribe("account:alice", "sub-2")
	other := hub.Subscribe("account:bob", "sub-3")

	if hub.SubscriberCount("account:alice") != 2 {
		t.Errorf("expected 2 subscribers, got %d", hub.SubscriberCount("account:alice"))
	}

	hub.SendToAccount("account:alice", Update{
		Type: UpdateNotification,
		Data: map[string]string{"id": "notification:1"},
	})

	for _, sub := range []*Subscriber{sub1, sub2} {
		select {
		case update := <-sub.Updates:
			if update.Type != UpdateNotification {
				t.Errorf("expected notification update, got %s", update.Type)
			}
		default:
			t.Errorf("subscriber %s received nothing", sub.ID)
		}
	}

	select {
	case <-other.Updates:
		t.Error("bob should not receive alice's update")
	default:
	}
}

func TestUpdateHub_Unsubscribe(t *testing.T) {
	hub := NewUpdateHub()
	defer hub.Close()

	sub := hub.Subscribe("account:alice", "sub-1")
	hub.Unsubscribe("account:alice", "sub-1")

	if hub.SubscriberCount("account:alice") != 0 {
		t.Error("expected no subscribers after unsubscribe")
	}

	select {
	case <-sub.Done:
	default:
		t.Error("expected the done channel closed")
	}

	// Sending after unsubscribe is a no-op, not a panic
	hub.SendToAccount("account:alice", Update{Type: UpdateNotification})
}

func TestUpdateHub_FullBufferDoesNotBlock(t *testing.T) {
	hub := NewUpdateHub()
	defer hub.Close()

	hub.Subscribe("account:alice", "sub-1")

	// The buffer holds 100 updates; the rest are dropped silently
	for i := 0; i < 150; i++ {
		hub.SendToAccount("account:alice", Update{Type: UpdateSessionChanged})
	}
}

func TestUpdateHub_SendToAccounts(t *testing.T) {
	hub := NewUpdateHub()
	defer hub.Close()

	alice := hub.Subscribe("account:alice", "sub-1")
	bob := hub.Subscribe("account:bob", "sub-2")

	hub.SendToAccounts([]string{"account:alice", "account:bob"}, Update{Type: UpdateMessage})

	for _, sub := range []*Subscriber{alice, bob} {
		select {
		case update := <-sub.Updates:
			if update.Type != UpdateMessage {
				t.Errorf("expected message update, got %s", update.Type)
			}
		default:
			t.Errorf("subscriber %s received nothing", sub.ID)
		}
	}
}

func TestUpdate_Format(t *testing.T) {
	update := Update{
		Type: UpdateNotification,
		Data: map[string]string{"id": "notification:1"},
	}

	wire := update.Format()
	if !strings.HasPrefix(wire, "event: notification\n") {
		t.Errorf("unexpected event line: %q", wire)
	}
	if !strings.Contains(wire, `data: {"id":"notification:1"}`) {
		t.Errorf("unexpected data line: %q", wire)
	}
	if !strings.HasSuffix(wire, "\n\n") {
		t.Error("SSE frames end with a blank line")
	}
}
