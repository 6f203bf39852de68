package service

import (
	"context"
	"fmt"

	"github.com/tablefolk/api/internal/model"
)

// RelationshipRepository defines the interface for relationship edge storage
type RelationshipRepository interface {
	Get(ctx context.Context, ownerID, otherID string) (*model.Relationship, error)
	GetPair(ctx context.Context, accountID, otherID string) (*model.RelationshipPair, error)
	ListByStatus(ctx context.Context, ownerID string, status model.RelationshipStatus) ([]*model.Relationship, error)
	CreatePair(ctx context.Context, senderID, recipientID string) error
	SetPairStatus(ctx context.Context, accountID, otherID string, status model.RelationshipStatus) error
	Block(ctx context.Context, blockerID, blockedID string, createMine, deleteTheirs bool) error
	DeletePair(ctx context.Context, accountID, otherID string) error
	DeleteOne(ctx context.Context, ownerID, otherID string) error
	CountByStatus(ctx context.Context, ownerID string, status model.RelationshipStatus) (int, error)
}

// Notifier delivers a notification best-effort. Failures never abort the
// operation that triggered them.
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification) error
}

// RelationshipService implements the friend/block state machine.
// Both directions of a pair are always changed atomically by the
// repository; the service decides which transition applies.
type RelationshipService struct {
	relRepo     RelationshipRepository
	accountRepo AccountRepository
	notifier    Notifier
}

// RelationshipServiceConfig holds configuration for the relationship service
type RelationshipServiceConfig struct {
	RelationshipRepo RelationshipRepository
	AccountRepo      AccountRepository
	Notifier         Notifier
}

// NewRelationshipService creates a new relationship service
func NewRelationshipService(cfg RelationshipServiceConfig) *RelationshipService {
	return &RelationshipService{
		relRepo:     cfg.RelationshipRepo,
		accountRepo: cfg.AccountRepo,
		notifier:    cfg.Notifier,
	}
}

// SendRequest sends a friend request. Sending to an account that already
// sent one to you accepts it instead.
func (s *RelationshipService) SendRequest(ctx context.Context, accountID, otherID string) (*model.RelationshipPair, error) {
	if accountID == otherID {
		return nil, ErrCannotRelateSelf
	}

	other, err := s.accountRepo.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, ErrAccountNotFound
	}

	pair, err := s.relRepo.GetPair(ctx, accountID, otherID)
	if err != nil {
		return nil, err
	}

	switch pair.MyStatus() {
	case model.RelationBlocked:
		return nil, ErrAccountBlocked
	case model.RelationFriend:
		return nil, ErrAlreadyFriends
	case model.RelationSent:
		return nil, ErrRequestAlreadySent
	case model.RelationPending:
		// Counterpart already asked; treat as acceptance
		return s.Accept(ctx, accountID, otherID)
	}

	if pair.TheirStatus() == model.RelationBlocked {
		return nil, ErrBlockedByAccount
	}

	if err := s.relRepo.CreatePair(ctx, accountID, otherID); err != nil {
		return nil, err
	}

	s.notify(ctx, otherID, model.NotifyFriendRequest, accountID, "sent you a friend request")

	return s.relRepo.GetPair(ctx, accountID, otherID)
}

// Accept accepts a pending friend request
func (s *RelationshipService) Accept(ctx context.Context, accountID, otherID string) (*model.RelationshipPair, error) {
	pair, err := s.relRepo.GetPair(ctx, accountID, otherID)
	if err != nil {
		return nil, err
	}
	if pair.MyStatus() != model.RelationPending {
		return nil, ErrNoPendingRequest
	}

	if err := s.relRepo.SetPairStatus(ctx, accountID, otherID, model.RelationFriend); err != nil {
		return nil, err
	}

	s.notify(ctx, otherID, model.NotifyFriendAccept, accountID, "accepted your friend request")

	return s.relRepo.GetPair(ctx, accountID, otherID)
}

// Decline declines a pending friend request; both edges are removed
func (s *RelationshipService) Decline(ctx context.Context, accountID, otherID string) error {
	pair, err := s.relRepo.GetPair(ctx, accountID, otherID)
	if err != nil {
		return err
	}
	if pair.MyStatus() != model.RelationPending {
		return ErrNoPendingRequest
	}
	return s.relRepo.DeletePair(ctx, accountID, otherID)
}

// Cancel withdraws a sent friend request; both edges are removed
func (s *RelationshipService) Cancel(ctx context.Context, accountID, otherID string) error {
	pair, err := s.relRepo.GetPair(ctx, accountID, otherID)
	if err != nil {
		return err
	}
	if pair.MyStatus() != model.RelationSent {
		return ErrNoPendingRequest
	}
	return s.relRepo.DeletePair(ctx, accountID, otherID)
}

// Unfriend removes an existing friendship in both directions
func (s *RelationshipService) Unfriend(ctx context.Context, accountID, otherID string) error {
	pair, err := s.relRepo.GetPair(ctx, accountID, otherID)
	if err != nil {
		return err
	}
	if pair.MyStatus() != model.RelationFriend {
		return ErrRelationshipNotFound
	}
	return s.relRepo.DeletePair(ctx, accountID, otherID)
}

// Block marks the counterpart as blocked. Whatever edge existed on this
// side becomes "blocked"; the counterpart's edge is removed unless it is
// a block of their own, which survives.
func (s *RelationshipService) Block(ctx context.Context, accountID, otherID string) error {
	if accountID == otherID {
		return ErrCannotBlockSelf
	}

	other, err := s.accountRepo.GetByID(ctx, otherID)
	if err != nil {
		return err
	}
	if other == nil {
		return ErrAccountNotFound
	}

	pair, err := s.relRepo.GetPair(ctx, accountID, otherID)
	if err != nil {
		return err
	}
	if pair.MyStatus() == model.RelationBlocked {
		return ErrAlreadyBlocked
	}

	createMine := pair.Mine == nil
	deleteTheirs := pair.Theirs != nil && pair.TheirStatus() != model.RelationBlocked
	return s.relRepo.Block(ctx, accountID, otherID, createMine, deleteTheirs)
}

// Unblock removes this side's block. The counterpart's edge, if any, is
// untouched.
func (s *RelationshipService) Unblock(ctx context.Context, accountID, otherID string) error {
	rel, err := s.relRepo.Get(ctx, accountID, otherID)
	if err != nil {
		return err
	}
	if rel == nil || rel.Status != model.RelationBlocked {
		return ErrNotBlocked
	}
	return s.relRepo.DeleteOne(ctx, accountID, otherID)
}

// GetPair returns this account's view of the pair with another account
func (s *RelationshipService) GetPair(ctx context.Context, accountID, otherID string) (*model.RelationshipPair, error) {
	return s.relRepo.GetPair(ctx, accountID, otherID)
}

// IsBlockedEither reports whether either side has blocked the other
func (s *RelationshipService) IsBlockedEither(ctx context.Context, accountID, otherID string) (bool, error) {
	pair, err := s.relRepo.GetPair(ctx, accountID, otherID)
	if err != nil {
		return false, err
	}
	return pair.MyStatus() == model.RelationBlocked || pair.TheirStatus() == model.RelationBlocked, nil
}

// AreFriends reports whether the two accounts are friends
func (s *RelationshipService) AreFriends(ctx context.Context, accountID, otherID string) (bool, error) {
	if accountID == otherID {
		return false, nil
	}
	rel, err := s.relRepo.Get(ctx, accountID, otherID)
	if err != nil {
		return false, err
	}
	return rel != nil && rel.Status == model.RelationFriend, nil
}

// ListByStatus lists this account's edges with the given status, joined
// with the counterpart account summaries.
func (s *RelationshipService) ListByStatus(ctx context.Context, accountID string, status model.RelationshipStatus) ([]*model.RelationshipWithAccount, error) {
	if !status.IsValid() {
		return nil, ErrRelationshipNotFound
	}

	rels, err := s.relRepo.ListByStatus(ctx, accountID, status)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rels))
	for _, rel := range rels {
		ids = append(ids, rel.OtherID)
	}
	summaries, err := s.accountRepo.GetSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*model.RelationshipWithAccount, 0, len(rels))
	for _, rel := range rels {
		entry := &model.RelationshipWithAccount{Relationship: *rel}
		if summary, ok := summaries[rel.OtherID]; ok {
			entry.Account = summary
		}
		out = append(out, entry)
	}
	return out, nil
}

// notify sends a best-effort relationship notification
func (s *RelationshipService) notify(ctx context.Context, toID string, typ model.NotificationType, fromID, verb string) {
	if s.notifier == nil {
		return
	}

	title := verb
	summaries, err := s.accountRepo.GetSummaries(ctx, []string{fromID})
	if err == nil {
		if from, ok := summaries[fromID]; ok {
			title = fmt.Sprintf("@%s %s", from.Handle, verb)
		}
	}

	_ = s.notifier.Notify(ctx, &model.Notification{
		AccountID: toID,
		Type:      typ,
		Title:     title,
		Data:      map[string]string{"account_id": fromID},
	})
}
