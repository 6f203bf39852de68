package service

import (
	"context"
	"testing"
	"time"

	"github.com/tablefolk/api/internal/model"
)

// mockRelationshipRepo keeps edges in memory keyed owner|other
type mockRelationshipRepo struct {
	edges map[string]*model.Relationship
}

func newMockRelationshipRepo() *mockRelationshipRepo {
	return &mockRelationshipRepo{edges: make(map[string]*model.Relationship)}
}

func relKey(ownerID, otherID string) string {
	return ownerID + "|" + otherID
}

func (m *mockRelationshipRepo) put(ownerID, otherID string, status model.RelationshipStatus) {
	m.edges[relKey(ownerID, otherID)] = &model.Relationship{
		ID:        "relationship:" + ownerID + ":" + otherID,
		OwnerID:   ownerID,
		OtherID:   otherID,
		Status:    status,
		CreatedOn: time.Now(),
		UpdatedOn: time.Now(),
	}
}

func (m *mockRelationshipRepo) Get(ctx context.Context, ownerID, otherID string) (*model.Relationship, error) {
	return m.edges[relKey(ownerID, otherID)], nil
}

func (m *mockRelationshipRepo) GetPair(ctx context.Context, accountID, otherID string) (*model.RelationshipPair, error) {
	return &model.RelationshipPair{
		Mine:   m.edges[relKey(accountID, otherID)],
		Theirs: m.edges[relKey(otherID, accountID)],
	}, nil
}

func (m *mockRelationshipRepo) ListByStatus(ctx context.Context, ownerID string, status model.RelationshipStatus) ([]*model.Relationship, error) {
	var result []*model.Relationship
	for _, edge := range m.edges {
		if edge.OwnerID == ownerID && edge.Status == status {
			result = append(result, edge)
		}
	}
	return result, nil
}

func (m *mockRelationshipRepo) CreatePair(ctx context.Context, senderID, recipientID string) error {
	m.put(senderID, recipientID, model.RelationSent)
	m.put(recipientID, senderID, model.RelationPending)
	return nil
}

func (m *mockRelationshipRepo) SetPairStatus(ctx context.Context, accountID, otherID string, status model.RelationshipStatus) error {
	m.put(accountID, otherID, status)
	m.put(otherID, accountID, status)
	return nil
}

func (m *mockRelationshipRepo) Block(ctx context.Context, blockerID, blockedID string, createMine, deleteTheirs bool) error {
	if createMine {
		m.put(blockerID, blockedID, model.RelationBlocked)
	} else {
		m.edges[relKey(blockerID, blockedID)].Status = model.RelationBlocked
	}
	if deleteTheirs {
		delete(m.edges, relKey(blockedID, blockerID))
	}
	return nil
}

func (m *mockRelationshipRepo) DeletePair(ctx context.Context, accountID, otherID string) error {
	delete(m.edges, relKey(accountID, otherID))
	delete(m.edges, relKey(otherID, accountID))
	return nil
}

func (m *mockRelationshipRepo) DeleteOne(ctx context.Context, ownerID, otherID string) error {
	delete(m.edges, relKey(ownerID, otherID))
	return nil
}

func (m *mockRelationshipRepo) CountByStatus(ctx context.Context, ownerID string, status model.RelationshipStatus) (int, error) {
	count := 0
	for _, edge := range m.edges {
		if edge.OwnerID == ownerID && edge.Status == status {
			count++
		}
	}
	return count, nil
}

// mockNotifier records delivered notifications
type mockNotifier struct {
	sent []*model.Notification
}

func (m *mockNotifier) Notify(ctx context.Context, n *model.Notification) error {
	m.sent = append(m.sent, n)
	return nil
}

func (m *mockNotifier) lastType() model.NotificationType {
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1].Type
}

func setupRelationshipService(t *testing.T) (*RelationshipService, *mockRelationshipRepo, *mockAccountRepo, *mockNotifier) {
	t.Helper()

	relRepo := newMockRelationshipRepo()
	accountRepo := newMockAccountRepo()
	notifier := &mockNotifier{}

	svc := NewRelationshipService(RelationshipServiceConfig{
		RelationshipRepo: relRepo,
		AccountRepo:      accountRepo,
		Notifier:         notifier,
	})
	return svc, relRepo, accountRepo, notifier
}

func TestRelationshipService_SendRequest(t *testing.T) {
	svc, relRepo, accountRepo, notifier := setupRelationshipService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")

	pair, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}
	if pair.MyStatus() != model.RelationSent {
		t.Errorf("expected my edge sent, got %s", pair.MyStatus())
	}
	if pair.TheirStatus() != model.RelationPending {
		t.Errorf("expected their edge pending, got %s", pair.TheirStatus())
	}
	if notifier.lastType() != model.NotifyFriendRequest {
		t.Errorf("expected friend request notification, got %s", notifier.lastType())
	}
	if notifier.sent[0].AccountID != bob.ID {
		t.Errorf("notification should go to the recipient")
	}

	// Sending again is rejected
	if _, err := svc.SendRequest(ctx, alice.ID, bob.ID); err != ErrRequestAlreadySent {
		t.Errorf("expected ErrRequestAlreadySent, got %v", err)
	}

	_ = relRepo
}

func TestRelationshipService_SendRequest_Self(t *testing.T) {
	svc, _, accountRepo, _ := setupRelationshipService(t)
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")

	if _, err := svc.SendRequest(context.Background(), alice.ID, alice.ID); err != ErrCannotRelateSelf {
		t.Errorf("expected ErrCannotRelateSelf, got %v", err)
	}
}

func TestRelationshipService_SendRequest_AutoAccept(t *testing.T) {
	svc, relRepo, accountRepo, notifier := setupRelationshipService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")

	if _, err := svc.SendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	// Bob sending back accepts instead of creating a duplicate request
	pair, err := svc.SendRequest(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("counter SendRequest failed: %v", err)
	}
	if pair.MyStatus() != model.RelationFriend || pair.TheirStatus() != model.RelationFriend {
		t.Errorf("expected both edges friend, got %s / %s", pair.MyStatus(), pair.TheirStatus())
	}
	if notifier.lastType() != model.NotifyFriendAccept {
		t.Errorf("expected accept notification, got %s", notifier.lastType())
	}
	_ = relRepo
}

func TestRelationshipService_SendRequest_Blocked(t *testing.T) {
	svc, relRepo, accountRepo, _ := setupRelationshipService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")

	// Bob blocked Alice
	relRepo.put(bob.ID, alice.ID, model.RelationBlocked)
	if _, err := svc.SendRequest(ctx, alice.ID, bob.ID); err != ErrBlockedByAccount {
		t.Errorf("expected ErrBlockedByAccount, got %v", err)
	}

	// Alice blocked Bob
	relRepo.put(alice.ID, bob.ID, model.RelationBlocked)
	if _, err := svc.SendRequest(ctx, alice.ID, bob.ID); err != ErrAccountBlocked {
		t.Errorf("expected ErrAccountBlocked, got %v", err)
	}
}

func TestRelationshipService_Accept(t *testing.T) {
	svc, _, accountRepo, _ := setupRelationshipService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")

	if _, err := svc.SendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	pair, err := svc.Accept(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if pair.MyStatus() != model.RelationFriend {
		t.Errorf("expected friend, got %s", pair.MyStatus())
	}

	// The sender has nothing pending to accept
	if _, err := svc.Accept(ctx, alice.ID, bob.ID); err != ErrNoPendingRequest {
		t.Errorf("expected ErrNoPendingRequest, got %v", err)
	}
}

func TestRelationshipService_DeclineAndCancel(t *testing.T) {
	svc, relRepo, accountRepo, _ := setupRelationshipService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")

	if _, err := svc.SendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}
	if err := svc.Decline(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("Decline failed: %v", err)
	}
	if len(relRepo.edges) != 0 {
		t.Error("expected both edges removed after decline")
	}

	if _, err := svc.SendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}
	if err := svc.Cancel(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if len(relRepo.edges) != 0 {
		t.Error("expected both edges removed after cancel")
	}

	// Cancel without a sent request
	if err := svc.Cancel(ctx, alice.ID, bob.ID); err != ErrNoPendingRequest {
		t.Errorf("expected ErrNoPendingRequest, got %v", err)
	}
}

func TestRelationshipService_Unfriend(t *testing.T) {
	svc, relRepo, accountRepo, _ := setupRelationshipService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")

	relRepo.put(alice.ID, bob.ID, model.RelationFriend)
	relRepo.put(bob.ID, alice.ID, model.RelationFriend)

	if err := svc.Unfriend(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Unfriend failed: %v", err)
	}
	if len(relRepo.edges) != 0 {
		t.Error("expected both edges removed")
	}

	if err := svc.Unfriend(ctx, alice.ID, bob.ID); err != ErrRelationshipNotFound {
		t.Errorf("expected ErrRelationshipNotFound, got %v", err)
	}
}

func TestRelationshipService_Block_RemovesCounterpartEdge(t *testing.T) {
	svc, relRepo, accountRepo, _ := setupRelationshipService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")

	relRepo.put(alice.ID, bob.ID, model.RelationFriend)
	relRepo.put(bob.ID, alice.ID, model.RelationFriend)

	if err := svc.Block(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Block failed: %v", err)
	}

	mine := relRepo.edges[relKey(alice.ID, bob.ID)]
	if mine == nil || mine.Status != model.RelationBlocked {
		t.Error("expected blocker's edge to become blocked")
	}
	if relRepo.edges[relKey(bob.ID, alice.ID)] != nil {
		t.Error("expected counterpart's edge removed")
	}

	if err := svc.Block(ctx, alice.ID, bob.ID); err != ErrAlreadyBlocked {
		t.Errorf("expected ErrAlreadyBlocked, got %v", err)
	}
}

func TestRelationshipService_Block_MutualBlocksSurvive(t *testing.T) {
	svc, relRepo, accountRepo, _ := setupRelationshipService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")

	if err := svc.Block(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("Block failed: %v", err)
	}
	if err := svc.Block(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Block failed: %v", err)
	}

	// Both blocks stand independently
	for _, key := range []string{relKey(alice.ID, bob.ID), relKey(bob.ID, alice.ID)} {
		edge := relRepo.edges[key]
		if edge == nil || edge.Status != model.RelationBlocked {
			t.Errorf("expected %s to be a block edge", key)
		}
	}

	// Unblocking one side leaves the other block in place
	if err := svc.Unblock(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Unblock failed: %v", err)
	}
	if relRepo.edges[relKey(alice.ID, bob.ID)] != nil {
		t.Error("expected alice's block removed")
	}
	theirs := relRepo.edges[relKey(bob.ID, alice.ID)]
	if theirs == nil || theirs.Status != model.RelationBlocked {
		t.Error("expected bob's block to survive")
	}
}

func TestRelationshipService_Unblock_NotBlocked(t *testing.T) {
	svc, _, accountRepo, _ := setupRelationshipService(t)
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")

	if err := svc.Unblock(context.Background(), alice.ID, bob.ID); err != ErrNotBlocked {
		t.Errorf("expected ErrNotBlocked, got %v", err)
	}
}

func TestRelationshipService_IsBlockedEither(t *testing.T) {
	svc, relRepo, accountRepo, _ := setupRelationshipService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")

	blocked, err := svc.IsBlockedEither(ctx, alice.ID, bob.ID)
	if err != nil || blocked {
		t.Errorf("expected no block, got %v %v", blocked, err)
	}

	relRepo.put(bob.ID, alice.ID, model.RelationBlocked)
	blocked, err = svc.IsBlockedEither(ctx, alice.ID, bob.ID)
	if err != nil || !blocked {
		t.Errorf("expected block detected, got %v %v", blocked, err)
	}
}

func TestRelationshipService_ListByStatus(t *testing.T) {
	svc, relRepo, accountRepo, _ := setupRelationshipService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")
	cara := accountRepo.addAccount(t, "cara", "cara@example.com", "password123")

	relRepo.put(alice.ID, bob.ID, model.RelationFriend)
	relRepo.put(bob.ID, alice.ID, model.RelationFriend)
	relRepo.put(alice.ID, cara.ID, model.RelationSent)
	relRepo.put(cara.ID, alice.ID, model.RelationPending)

	friends, err := svc.ListByStatus(ctx, alice.ID, model.RelationFriend)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	if len(friends) != 1 {
		t.Fatalf("expected 1 friend, got %d", len(friends))
	}
	if friends[0].Account.Handle != "bob" {
		t.Errorf("expected counterpart summary joined, got %q", friends[0].Account.Handle)
	}

	sent, err := svc.ListByStatus(ctx, alice.ID, model.RelationSent)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	if len(sent) != 1 || sent[0].Relationship.OtherID != cara.ID {
		t.Error("expected the sent request to cara")
	}
}
