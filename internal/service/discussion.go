package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tablefolk/api/internal/model"
)

// DiscussionRepository defines the interface for discussion storage
type DiscussionRepository interface {
	Create(ctx context.Context, d *model.Discussion) error
	GetByID(ctx context.Context, id string) (*model.Discussion, error)
	ListByParticipant(ctx context.Context, accountID string) ([]*model.Discussion, error)
	Rename(ctx context.Context, discussionID, name string) error
	AddParticipant(ctx context.Context, discussionID, accountID string) error
	RemoveParticipant(ctx context.Context, discussionID, accountID string) error
	Delete(ctx context.Context, discussionID string) error
	CreateMessage(ctx context.Context, m *model.Message, preview string) error
	GetMessage(ctx context.Context, id string) (*model.Message, error)
	ListMessages(ctx context.Context, discussionID string, limit, offset int) ([]*model.Message, error)
	EditMessage(ctx context.Context, messageID, body string) error
	SoftDeleteMessage(ctx context.Context, messageID string) error
}

// DiscussionService handles chat threads and messages. Membership gates
// every read and write; the last-message preview and the message log are
// kept consistent by the repository's atomic batch.
type DiscussionService struct {
	repo        DiscussionRepository
	accountRepo AccountRepository
	relService  *RelationshipService
	notifier    Notifier
	hub         *UpdateHub
}

// DiscussionServiceConfig holds configuration for the discussion service
type DiscussionServiceConfig struct {
	Repo         DiscussionRepository
	AccountRepo  AccountRepository
	Relationship *RelationshipService
	Notifier     Notifier
	Hub          *UpdateHub
}

// NewDiscussionService creates a new discussion service
func NewDiscussionService(cfg DiscussionServiceConfig) *DiscussionService {
	return &DiscussionService{
		repo:        cfg.Repo,
		accountRepo: cfg.AccountRepo,
		relService:  cfg.Relationship,
		notifier:    cfg.Notifier,
		hub:         cfg.Hub,
	}
}

// Create opens a new discussion. The creator is always a participant;
// accounts that blocked the creator (or are blocked by them) are dropped
// from the initial list.
func (s *DiscussionService) Create(ctx context.Context, creatorID string, req model.CreateDiscussionRequest) (*model.Discussion, error) {
	participants := []string{creatorID}
	seen := map[string]bool{creatorID: true}

	for _, id := range req.Participants {
		if seen[id] {
			continue
		}
		seen[id] = true

		account, err := s.accountRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}

		if s.relService != nil {
			blocked, err := s.relService.IsBlockedEither(ctx, creatorID, id)
			if err != nil {
				return nil, err
			}
			if blocked {
				continue
			}
		}
		participants = append(participants, id)
	}

	if len(participants) > model.MaxDiscussionParticipants {
		return nil, ErrParticipantLimit
	}

	d := &model.Discussion{
		Name:         strings.TrimSpace(req.Name),
		CreatorID:    creatorID,
		Participants: participants,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Get retrieves a discussion the account takes part in
func (s *DiscussionService) Get(ctx context.Context, accountID, discussionID string) (*model.Discussion, error) {
	d, err := s.repo.GetByID(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDiscussionNotFound
	}
	if !d.HasParticipant(accountID) {
		return nil, ErrNotParticipant
	}
	return d, nil
}

// List retrieves the account's discussions, most recently active first
func (s *DiscussionService) List(ctx context.Context, accountID string) ([]*model.Discussion, error) {
	return s.repo.ListByParticipant(ctx, accountID)
}

// Rename changes a discussion's name. Creator only.
func (s *DiscussionService) Rename(ctx context.Context, accountID, discussionID string, req model.RenameDiscussionRequest) (*model.Discussion, error) {
	d, err := s.Get(ctx, accountID, discussionID)
	if err != nil {
		return nil, err
	}
	if d.CreatorID != accountID {
		return nil, ErrNotDiscussionCreator
	}

	name := strings.TrimSpace(req.Name)
	if err := s.repo.Rename(ctx, discussionID, name); err != nil {
		return nil, err
	}
	d.Name = name
	return d, nil
}

// SendMessage posts a message and fans it out to the other participants
func (s *DiscussionService) SendMessage(ctx context.Context, accountID, discussionID string, req model.SendMessageRequest) (*model.Message, error) {
	d, err := s.Get(ctx, accountID, discussionID)
	if err != nil {
		return nil, err
	}

	body := strings.TrimSpace(req.Body)
	m := &model.Message{
		DiscussionID: discussionID,
		AuthorID:     accountID,
		Body:         body,
	}
	if err := s.repo.CreateMessage(ctx, m, model.MessagePreview(body)); err != nil {
		return nil, err
	}

	s.fanOutMessage(ctx, d, accountID, m)
	return m, nil
}

// fanOutMessage notifies the other participants best-effort
func (s *DiscussionService) fanOutMessage(ctx context.Context, d *model.Discussion, authorID string, m *model.Message) {
	recipients := make([]string, 0, len(d.Participants))
	for _, id := range d.Participants {
		if id != authorID {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return
	}

	if s.hub != nil {
		s.hub.SendToAccounts(recipients, Update{
			Type: UpdateMessage,
			Data: m,
		})
	}

	if s.notifier != nil {
		title := fmt.Sprintf("New message in %s", d.Name)
		notifications := make([]*model.Notification, 0, len(recipients))
		for _, id := range recipients {
			notifications = append(notifications, &model.Notification{
				AccountID: id,
				Type:      model.NotifyMessage,
				Title:     title,
				Body:      model.MessagePreview(m.Body),
				Data: map[string]string{
					"discussion_id": d.ID,
					"message_id":    m.ID,
				},
			})
		}
		for _, n := range notifications {
			_ = s.notifier.Notify(ctx, n)
		}
	}
}

// ListMessages retrieves a page of a discussion's messages, newest first
func (s *DiscussionService) ListMessages(ctx context.Context, accountID, discussionID string, limit, offset int) ([]*model.Message, error) {
	if _, err := s.Get(ctx, accountID, discussionID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > model.DefaultMessagePageSize {
		limit = model.DefaultMessagePageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListMessages(ctx, discussionID, limit, offset)
}

// EditMessage replaces a message's body. Only the author can edit, and
// deleted messages stay deleted.
func (s *DiscussionService) EditMessage(ctx context.Context, accountID, messageID string, req model.SendMessageRequest) (*model.Message, error) {
	m, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMessageNotFound
	}
	if m.AuthorID != accountID {
		return nil, ErrNotMessageAuthor
	}
	if m.DeletedOn != nil {
		return nil, ErrMessageDeleted
	}

	body := strings.TrimSpace(req.Body)
	if err := s.repo.EditMessage(ctx, messageID, body); err != nil {
		return nil, err
	}
	m.Body = body
	return m, nil
}

// DeleteMessage soft-deletes a message. The author or the discussion
// creator may delete.
func (s *DiscussionService) DeleteMessage(ctx context.Context, accountID, messageID string) error {
	m, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMessageNotFound
	}

	if m.AuthorID != accountID {
		d, err := s.repo.GetByID(ctx, m.DiscussionID)
		if err != nil {
			return err
		}
		if d == nil || d.CreatorID != accountID {
			return ErrNotMessageAuthor
		}
	}

	return s.repo.SoftDeleteMessage(ctx, messageID)
}

// AddParticipant adds an account to the discussion. Only the creator can
// invite, and blocks between the pair prevent it.
func (s *DiscussionService) AddParticipant(ctx context.Context, accountID, discussionID, newID string) error {
	d, err := s.Get(ctx, accountID, discussionID)
	if err != nil {
		return err
	}
	if d.CreatorID != accountID {
		return ErrNotDiscussionCreator
	}
	if d.HasParticipant(newID) {
		return ErrAlreadyParticipant
	}
	if len(d.Participants) >= model.MaxDiscussionParticipants {
		return ErrParticipantLimit
	}

	account, err := s.accountRepo.GetByID(ctx, newID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}

	if s.relService != nil {
		blocked, err := s.relService.IsBlockedEither(ctx, accountID, newID)
		if err != nil {
			return err
		}
		if blocked {
			return ErrBlockedByAccount
		}
	}

	return s.repo.AddParticipant(ctx, discussionID, newID)
}

// RemoveParticipant removes another account from the discussion. Creator
// only; the creator removes themselves by deleting the discussion.
func (s *DiscussionService) RemoveParticipant(ctx context.Context, accountID, discussionID, targetID string) error {
	d, err := s.Get(ctx, accountID, discussionID)
	if err != nil {
		return err
	}
	if d.CreatorID != accountID {
		return ErrNotDiscussionCreator
	}
	if targetID == d.CreatorID {
		return ErrCreatorCannotLeave
	}
	if !d.HasParticipant(targetID) {
		return ErrNotParticipant
	}
	return s.repo.RemoveParticipant(ctx, discussionID, targetID)
}

// Leave removes the calling account from the discussion. The creator
// cannot leave; they delete the discussion instead.
func (s *DiscussionService) Leave(ctx context.Context, accountID, discussionID string) error {
	d, err := s.Get(ctx, accountID, discussionID)
	if err != nil {
		return err
	}
	if d.CreatorID == accountID {
		return ErrCreatorCannotLeave
	}
	return s.repo.RemoveParticipant(ctx, discussionID, accountID)
}

// Delete removes a discussion and its messages. Creator only.
func (s *DiscussionService) Delete(ctx context.Context, accountID, discussionID string) error {
	d, err := s.Get(ctx, accountID, discussionID)
	if err != nil {
		return err
	}
	if d.CreatorID != accountID {
		return ErrNotDiscussionCreator
	}
	return s.repo.Delete(ctx, discussionID)
}
