package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tablefolk/api/internal/model"
)

// NotificationRepository defines the interface for notification storage
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	CreateMany(ctx context.Context, notifications []*model.Notification) error
	ListByAccount(ctx context.Context, accountID string, unreadOnly bool, limit, offset int) ([]*model.Notification, error)
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, accountID string) error
	Delete(ctx context.Context, id string) error
	DeleteAllRead(ctx context.Context, accountID string) error
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) error
	CountUnread(ctx context.Context, accountID string) (int, error)
}

// NotificationService stores notifications and fans them out to live
// update streams and push devices. Delivery beyond the stored record is
// best-effort: stream and push failures are logged, never returned.
type NotificationService struct {
	repo   NotificationRepository
	hub    *UpdateHub
	push   *PushService
	logger *slog.Logger
}

// NotificationServiceConfig holds configuration for the notification service
type NotificationServiceConfig struct {
	Repo   NotificationRepository
	Hub    *UpdateHub
	Push   *PushService
	Logger *slog.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(cfg NotificationServiceConfig) *NotificationService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		repo:   cfg.Repo,
		hub:    cfg.Hub,
		push:   cfg.Push,
		logger: logger,
	}
}

// Notify stores a notification and delivers it to live streams and push
// devices.
func (s *NotificationService) Notify(ctx context.Context, n *model.Notification) error {
	if !n.Type.IsValid() {
		n.Type = model.NotifyMessage
	}
	n.Title = model.TruncateRunesafe(n.Title, model.MaxNotificationTitleLength)
	n.Body = model.TruncateRunesafe(n.Body, model.MaxNotificationBodyLength)

	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	s.deliver(ctx, n)
	return nil
}

// NotifyMany stores a batch of notifications atomically, then delivers
// each one.
func (s *NotificationService) NotifyMany(ctx context.Context, notifications []*model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	if err := s.repo.CreateMany(ctx, notifications); err != nil {
		return err
	}

	for _, n := range notifications {
		s.deliver(ctx, n)
	}
	return nil
}

// deliver pushes the stored notification out-of-band
func (s *NotificationService) deliver(ctx context.Context, n *model.Notification) {
	if s.hub != nil {
		s.hub.SendToAccount(n.AccountID, Update{
			Type: UpdateNotification,
			Data: n,
		})
	}

	if s.push != nil && s.push.IsEnabled() {
		if _, err := s.push.SendToAccount(ctx, n.AccountID, &PushNotification{
			Title: n.Title,
			Body:  n.Body,
			Data:  n.Data,
		}); err != nil && err != ErrNoDeviceTokens {
			s.logger.Warn("push delivery failed",
				"account_id", n.AccountID,
				"type", n.Type,
				"error", err)
		}
	}
}

// List retrieves an account's notifications, newest first
func (s *NotificationService) List(ctx context.Context, accountID string, unreadOnly bool, limit, offset int) ([]*model.Notification, error) {
	if limit <= 0 || limit > model.DefaultNotificationPage {
		limit = model.DefaultNotificationPage
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByAccount(ctx, accountID, unreadOnly, limit, offset)
}

// MarkRead marks one of the account's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, accountID, notificationID string) error {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotificationNotFound
	}
	if n.AccountID != accountID {
		return ErrNotNotificationOwner
	}
	return s.repo.MarkRead(ctx, notificationID)
}

// MarkAllRead marks all of an account's notifications as read
func (s *NotificationService) MarkAllRead(ctx context.Context, accountID string) error {
	return s.repo.MarkAllRead(ctx, accountID)
}

// Delete removes one of the account's notifications
func (s *NotificationService) Delete(ctx context.Context, accountID, notificationID string) error {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotificationNotFound
	}
	if n.AccountID != accountID {
		return ErrNotNotificationOwner
	}
	return s.repo.Delete(ctx, notificationID)
}

// DeleteAllRead removes all of the account's read notifications
func (s *NotificationService) DeleteAllRead(ctx context.Context, accountID string) error {
	return s.repo.DeleteAllRead(ctx, accountID)
}

// CountUnread counts an account's unread notifications
func (s *NotificationService) CountUnread(ctx context.Context, accountID string) (int, error) {
	return s.repo.CountUnread(ctx, accountID)
}

// CleanupRead removes read notifications older than the retention window.
// Called by the cleanup job.
func (s *NotificationService) CleanupRead(ctx context.Context, retention time.Duration) error {
	return s.repo.DeleteReadOlderThan(ctx, time.Now().Add(-retention))
}
