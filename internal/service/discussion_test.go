package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/tablefolk/api/internal/model"
)

// mockDiscussionRepo keeps threads and messages in memory
type mockDiscussionRepo struct {
	discussions map[string]*model.Discussion
	messages    map[string]*model.Message
	nextID      int
}

func newMockDiscussionRepo() *mockDiscussionRepo {
	return &mockDiscussionRepo{
		discussions: make(map[string]*model.Discussion),
		messages:    make(map[string]*model.Message),
	}
}

func (m *mockDiscussionRepo) Create(ctx context.Context, d *model.Discussion) error {
	m.nextID++
	d.ID = fmt.Sprintf("discussion:%d", m.nextID)
	d.CreatedOn = time.Now()
	d.UpdatedOn = time.Now()
	m.discussions[d.ID] = d
	return nil
}

func (m *mockDiscussionRepo) GetByID(ctx context.Context, id string) (*model.Discussion, error) {
	return m.discussions[id], nil
}

func (m *mockDiscussionRepo) ListByParticipant(ctx context.Context, accountID string) ([]*model.Discussion, error) {
	var result []*model.Discussion
	for _, d := range m.discussions {
		if d.HasParticipant(accountID) {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *mockDiscussionRepo) Rename(ctx context.Context, discussionID, name string) error {
	if d, ok := m.discussions[discussionID]; ok {
		d.Name = name
		d.UpdatedOn = time.Now()
	}
	return nil
}

func (m *mockDiscussionRepo) AddParticipant(ctx context.Context, discussionID, accountID string) error {
	d, ok := m.discussions[discussionID]
	if !ok {
		return nil
	}
	if !d.HasParticipant(accountID) {
		d.Participants = append(d.Participants, accountID)
	}
	return nil
}

func (m *mockDiscussionRepo) RemoveParticipant(ctx context.Context, discussionID, accountID string) error {
	d, ok := m.discussions[discussionID]
	if !ok {
		return nil
	}
	d.Participants = removeID(d.Participants, accountID)
	return nil
}

func (m *mockDiscussionRepo) Delete(ctx context.Context, discussionID string) error {
	for id, msg := range m.messages {
		if msg.DiscussionID == discussionID {
			delete(m.messages, id)
		}
	}
	delete(m.discussions, discussionID)
	return nil
}

func (m *mockDiscussionRepo) CreateMessage(ctx context.Context, msg *model.Message, preview string) error {
	m.nextID++
	msg.ID = fmt.Sprintf("message:%d", m.nextID)
	msg.CreatedOn = time.Now()
	m.messages[msg.ID] = msg
	if d, ok := m.discussions[msg.DiscussionID]; ok {
		d.LastMessage = &preview
		d.LastAuthorID = &msg.AuthorID
		now := time.Now()
		d.MessageOn = &now
	}
	return nil
}

func (m *mockDiscussionRepo) GetMessage(ctx context.Context, id string) (*model.Message, error) {
	return m.messages[id], nil
}

func (m *mockDiscussionRepo) ListMessages(ctx context.Context, discussionID string, limit, offset int) ([]*model.Message, error) {
	var result []*model.Message
	for _, msg := range m.messages {
		if msg.DiscussionID == discussionID {
			result = append(result, msg)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID > result[j].ID
	})
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockDiscussionRepo) EditMessage(ctx context.Context, messageID, body string) error {
	if msg, ok := m.messages[messageID]; ok {
		msg.Body = body
		now := time.Now()
		msg.EditedOn = &now
	}
	return nil
}

func (m *mockDiscussionRepo) SoftDeleteMessage(ctx context.Context, messageID string) error {
	if msg, ok := m.messages[messageID]; ok {
		now := time.Now()
		msg.DeletedOn = &now
		msg.Body = ""
	}
	return nil
}

func setupDiscussionService(t *testing.T) (*DiscussionService, *mockDiscussionRepo, *mockAccountRepo, *mockRelationshipRepo, *mockNotifier, *UpdateHub) {
	t.Helper()

	repo := newMockDiscussionRepo()
	accountRepo := newMockAccountRepo()
	relRepo := newMockRelationshipRepo()
	notifier := &mockNotifier{}
	hub := NewUpdateHub()
	t.Cleanup(hub.Close)

	relService := NewRelationshipService(RelationshipServiceConfig{
		RelationshipRepo: relRepo,
		AccountRepo:      accountRepo,
	})

	svc := NewDiscussionService(DiscussionServiceConfig{
		Repo:         repo,
		AccountRepo:  accountRepo,
		Relationship: relService,
		Notifier:     notifier,
		Hub:          hub,
	})
	return svc, repo, accountRepo, relRepo, notifier, hub
}

func TestDiscussionService_Create(t *testing.T) {
	svc, _, accountRepo, _, _, _ := setupDiscussionService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")

	d, err := svc.Create(ctx, alice.ID, model.CreateDiscussionRequest{
		Name:         "Friday night wargames",
		Participants: []string{bob.ID, bob.ID, alice.ID},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if d.CreatorID != alice.ID {
		t.Errorf("expected creator %s, got %s", alice.ID, d.CreatorID)
	}
	// Duplicates and the creator collapse to two participants
	if len(d.Participants) != 2 {
		t.Errorf("expected 2 participants, got %d", len(d.Participants))
	}
}

func TestDiscussionService_Create_DropsBlockedParticipants(t *testing.T) {
	svc, _, accountRepo, relRepo, _, _ := setupDiscussionService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")
	cara := accountRepo.addAccount(t, "cara", "cara@example.com", "password123")

	relRepo.put(cara.ID, alice.ID, model.RelationBlocked)

	d, err := svc.Create(ctx, alice.ID, model.CreateDiscussionRequest{
		Name:         "Strategy talk",
		Participants: []string{bob.ID, cara.ID},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if d.HasParticipant(cara.ID) {
		t.Error("expected blocked account dropped from participants")
	}
	if !d.HasParticipant(bob.ID) {
		t.Error("expected unblocked account kept")
	}
}

func TestDiscussionService_Get_MembershipGate(t *testing.T) {
	svc, _, accountRepo, _, _, _ := setupDiscussionService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	mallory := accountRepo.addAccount(t, "mallory", "mallory@example.com", "password123")

	d, err := svc.Create(ctx, alice.ID, model.CreateDiscussionRequest{Name: "Private table"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Get(ctx, mallory.ID, d.ID); err != ErrNotParticipant {
		t.Errorf("expected ErrNotParticipant, got %v", err)
	}
	if _, err := svc.Get(ctx, alice.ID, "discussion:missing"); err != ErrDiscussionNotFound {
		t.Errorf("expected ErrDiscussionNotFound, got %v", err)
	}
}

func TestDiscussionService_SendMessage_FansOut(t *testing.T) {
	svc, repo, accountRepo, _, notifier, hub := setupDiscussionService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")

	d, err := svc.Create(ctx, alice.ID, model.CreateDiscussionRequest{
		Name:         "Table talk",
		Participants: []string{bob.ID},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	sub := hub.Subscribe(bob.ID, "sub-1")

	msg, err := svc.SendMessage(ctx, alice.ID, d.ID, model.SendMessageRequest{Body: "  Who brings snacks?  "})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if msg.Body != "Who brings snacks?" {
		t.Errorf("expected trimmed body, got %q", msg.Body)
	}
	if repo.discussions[d.ID].LastMessage == nil || *repo.discussions[d.ID].LastMessage != "Who brings snacks?" {
		t.Errorf("expected preview updated, got %v", repo.discussions[d.ID].LastMessage)
	}

	// The author gets no notification, the other participant does
	if len(notifier.sent) != 1 || notifier.sent[0].AccountID != bob.ID {
		t.Fatalf("expected one notification to bob, got %d", len(notifier.sent))
	}
	if notifier.sent[0].Type != model.NotifyMessage {
		t.Errorf("expected message notification, got %s", notifier.sent[0].Type)
	}

	select {
	case update := <-sub.Updates:
		if update.Type != UpdateMessage {
			t.Errorf("expected %s update, got %s", UpdateMessage, update.Type)
		}
	default:
		t.Error("expected a live update on bob's stream")
	}
}

func TestDiscussionService_SendMessage_NonParticipant(t *testing.T) {
	svc, _, accountRepo, _, _, _ := setupDiscussionService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	mallory := accountRepo.addAccount(t, "mallory", "mallory@example.com", "password123")

	d, err := svc.Create(ctx, alice.ID, model.CreateDiscussionRequest{Name: "Closed"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.SendMessage(ctx, mallory.ID, d.ID, model.SendMessageRequest{Body: "hi"}); err != ErrNotParticipant {
		t.Errorf("expected ErrNotParticipant, got %v", err)
	}
}

func TestDiscussionService_EditMessage(t *testing.T) {
	svc, _, accountRepo, _, _, _ := setupDiscussionService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")

	d, err := svc.Create(ctx, alice.ID, model.CreateDiscussionRequest{
		Name:         "Edits",
		Participants: []string{bob.ID},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	msg, err := svc.SendMessage(ctx, alice.ID, d.ID, model.SendMessageRequest{Body: "typo"})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	// Only the author edits
	if _, err := svc.EditMessage(ctx, bob.ID, msg.ID, model.SendMessageRequest{Body: "fixed"}); err != ErrNotMessageAuthor {
		t.Errorf("expected ErrNotMessageAuthor, got %v", err)
	}

	edited, err := svc.EditMessage(ctx, alice.ID, msg.ID, model.SendMessageRequest{Body: "fixed"})
	if err != nil {
		t.Fatalf("EditMessage failed: %v", err)
	}
	if edited.Body != "fixed" {
		t.Errorf("expected edited body, got %q", edited.Body)
	}

	// Deleted messages stay deleted
	if err := svc.DeleteMessage(ctx, alice.ID, msg.ID); err != nil {
		t.Fatalf("DeleteMessage failed: %v", err)
	}
	if _, err := svc.EditMessage(ctx, alice.ID, msg.ID, model.SendMessageRequest{Body: "again"}); err != ErrMessageDeleted {
		t.Errorf("expected ErrMessageDeleted, got %v", err)
	}
}

func TestDiscussionService_DeleteMessage_CreatorModeration(t *testing.T) {
	svc, repo, accountRepo, _, _, _ := setupDiscussionService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")
	cara := accountRepo.addAccount(t, "cara", "cara@example.com", "password123")

	d, err := svc.Create(ctx, alice.ID, model.CreateDiscussionRequest{
		Name:         "Moderated",
		Participants: []string{bob.ID, cara.ID},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	msg, err := svc.SendMessage(ctx, bob.ID, d.ID, model.SendMessageRequest{Body: "spam"})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	// A third participant cannot delete someone else's message
	if err := svc.DeleteMessage(ctx, cara.ID, msg.ID); err != ErrNotMessageAuthor {
		t.Errorf("expected ErrNotMessageAuthor, got %v", err)
	}

	// The creator can
	if err := svc.DeleteMessage(ctx, alice.ID, msg.ID); err != nil {
		t.Fatalf("creator DeleteMessage failed: %v", err)
	}
	if repo.messages[msg.ID].DeletedOn == nil {
		t.Error("expected message soft-deleted")
	}
}

func TestDiscussionService_AddParticipant(t *testing.T) {
	svc, _, accountRepo, relRepo, _, _ := setupDiscussionService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")
	cara := accountRepo.addAccount(t, "cara", "cara@example.com", "password123")

	d, err := svc.Create(ctx, alice.ID, model.CreateDiscussionRequest{
		Name:         "Growing table",
		Participants: []string{bob.ID},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Only the creator invites
	if err := svc.AddParticipant(ctx, bob.ID, d.ID, cara.ID); err != ErrNotDiscussionCreator {
		t.Errorf("expected ErrNotDiscussionCreator, got %v", err)
	}

	// Blocks prevent the invite
	relRepo.put(cara.ID, alice.ID, model.RelationBlocked)
	if err := svc.AddParticipant(ctx, alice.ID, d.ID, cara.ID); err != ErrBlockedByAccount {
		t.Errorf("expected ErrBlockedByAccount, got %v", err)
	}

	delete(relRepo.edges, relKey(cara.ID, alice.ID))
	if err := svc.AddParticipant(ctx, alice.ID, d.ID, cara.ID); err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	if err := svc.AddParticipant(ctx, alice.ID, d.ID, cara.ID); err != ErrAlreadyParticipant {
		t.Errorf("expected ErrAlreadyParticipant, got %v", err)
	}
}

func TestDiscussionService_Rename(t *testing.T) {
	svc, _, accountRepo, _, _, _ := setupDiscussionService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")

	d, err := svc.Create(ctx, alice.ID, model.CreateDiscussionRequest{
		Name:         "Tuesday table",
		Participants: []string{bob.ID},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Rename(ctx, bob.ID, d.ID, model.RenameDiscussionRequest{Name: "Bob's table"}); err != ErrNotDiscussionCreator {
		t.Errorf("expected ErrNotDiscussionCreator, got %v", err)
	}

	renamed, err := svc.Rename(ctx, alice.ID, d.ID, model.RenameDiscussionRequest{Name: "  Wednesday table  "})
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if renamed.Name != "Wednesday table" {
		t.Errorf("expected trimmed name, got %q", renamed.Name)
	}
}

func TestDiscussionService_RemoveParticipant(t *testing.T) {
	svc, _, accountRepo, _, _, _ := setupDiscussionService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")
	cara := accountRepo.addAccount(t, "cara", "cara@example.com", "password123")

	d, err := svc.Create(ctx, alice.ID, model.CreateDiscussionRequest{
		Name:         "Moderated table",
		Participants: []string{bob.ID, cara.ID},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.RemoveParticipant(ctx, bob.ID, d.ID, cara.ID); err != ErrNotDiscussionCreator {
		t.Errorf("expected ErrNotDiscussionCreator, got %v", err)
	}
	if err := svc.RemoveParticipant(ctx, alice.ID, d.ID, alice.ID); err != ErrCreatorCannotLeave {
		t.Errorf("expected ErrCreatorCannotLeave, got %v", err)
	}
	if err := svc.RemoveParticipant(ctx, alice.ID, d.ID, bob.ID); err != nil {
		t.Fatalf("RemoveParticipant failed: %v", err)
	}
	if d.HasParticipant(bob.ID) {
		t.Error("expected participant removed")
	}
	if err := svc.RemoveParticipant(ctx, alice.ID, d.ID, bob.ID); err != ErrNotParticipant {
		t.Errorf("expected ErrNotParticipant, got %v", err)
	}
}

func TestDiscussionService_LeaveAndDelete(t *testing.T) {
	svc, repo, accountRepo, _, _, _ := setupDiscussionService(t)
	ctx := context.Background()
	alice := accountRepo.addAccount(t, "alice", "alice@example.com", "password123")
	bob := accountRepo.addAccount(t, "bob", "bob@example.com", "password123")

	d, err := svc.Create(ctx, alice.ID, model.CreateDiscussionRequest{
		Name:         "Short-lived",
		Participants: []string{bob.ID},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Leave(ctx, alice.ID, d.ID); err != ErrCreatorCannotLeave {
		t.Errorf("expected ErrCreatorCannotLeave, got %v", err)
	}
	if err := svc.Leave(ctx, bob.ID, d.ID); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}

	if err := svc.Delete(ctx, alice.ID, d.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := repo.discussions[d.ID]; ok {
		t.Error("expected discussion removed")
	}
}
