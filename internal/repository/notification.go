package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tablefolk/api/internal/database"
	"github.com/tablefolk/api/internal/model"
)

// NotificationRepository handles notification data access
type NotificationRepository struct {
	db database.Database
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db database.Database) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create creates a single notification
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		CREATE notification CONTENT {
			account_id: $account_id,
			type: $type,
			title: $title,
			body: IF $body IS NOT NULL THEN $body ELSE NONE END,
			data: IF $data IS NOT NULL THEN $data ELSE NONE END,
			read: false,
			created_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"account_id": n.AccountID,
		"type":       n.Type,
		"title":      n.Title,
		"body":       nilIfEmpty(n.Body),
		"data":       dataVar(n.Data),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}
	n.ID = created.ID
	n.CreatedOn = created.CreatedOn
	return nil
}

// CreateMany creates a set of notifications in one atomic batch. Used for
// fan-out to session participants.
func (r *NotificationRepository) CreateMany(ctx context.Context, notifications []*model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	batch := database.NewAtomicBatch()
	for _, n := range notifications {
		batch.Add(`
			CREATE notification CONTENT {
				account_id: $account_id,
				type: $type,
				title: $title,
				body: IF $body IS NOT NULL THEN $body ELSE NONE END,
				data: IF $data IS NOT NULL THEN $data ELSE NONE END,
				read: false,
				created_on: time::now()
			}
		`, map[string]interface{}{
			"account_id": n.AccountID,
			"type":       n.Type,
			"title":      n.Title,
			"body":       nilIfEmpty(n.Body),
			"data":       dataVar(n.Data),
		})
	}
	return batch.Execute(ctx, r.db)
}

// ListByAccount retrieves an account's notifications newest first.
// When unreadOnly is set, read notifications are filtered out.
func (r *NotificationRepository) ListByAccount(ctx context.Context, accountID string, unreadOnly bool, limit, offset int) ([]*model.Notification, error) {
	query := `
		SELECT * FROM notification
		WHERE account_id = $account_id AND (read = false OR $unread_only = false)
		ORDER BY created_on DESC
		LIMIT $limit START $offset
	`
	vars := map[string]interface{}{
		"account_id":  accountID,
		"unread_only": unreadOnly,
		"limit":       limit,
		"offset":      offset,
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	notifications := make([]*model.Notification, 0)
	for _, data := range unwrapList(results) {
		var n model.Notification
		if err := decodeRecord(data, &n); err == nil && n.ID != "" {
			item := n
			notifications = append(notifications, &item)
		}
	}
	return notifications, nil
}

// GetByID retrieves a notification by ID
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	data, err := unwrapOne(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var n model.Notification
	if err := decodeRecord(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkRead marks one notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	query := `UPDATE type::record($id) SET read = true`
	return r.db.Execute(ctx, query, map[string]interface{}{"id": id})
}

// MarkAllRead marks all of an account's notifications as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, accountID string) error {
	query := `UPDATE notification SET read = true WHERE account_id = $account_id AND read = false`
	return r.db.Execute(ctx, query, map[string]interface{}{"account_id": accountID})
}

// Delete removes a notification
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE type::record($id)`
	return r.db.Execute(ctx, query, map[string]interface{}{"id": id})
}

// DeleteAllRead removes all of an account's read notifications
func (r *NotificationRepository) DeleteAllRead(ctx context.Context, accountID string) error {
	query := `DELETE notification WHERE account_id = $account_id AND read = true`
	return r.db.Execute(ctx, query, map[string]interface{}{"account_id": accountID})
}

// DeleteReadOlderThan removes read notifications created before the cutoff.
// Called by the cleanup job.
func (r *NotificationRepository) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) error {
	query := `DELETE notification WHERE read = true AND created_on < <datetime>$cutoff`
	vars := map[string]interface{}{"cutoff": cutoff.Format(time.RFC3339)}
	return r.db.Execute(ctx, query, vars)
}

// CountUnread counts an account's unread notifications
func (r *NotificationRepository) CountUnread(ctx context.Context, accountID string) (int, error) {
	query := `
		SELECT count() AS count FROM notification
		WHERE account_id = $account_id AND read = false
		GROUP ALL
	`
	vars := map[string]interface{}{"account_id": accountID}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return extractCount(result), nil
}

// dataVar converts a notification's data map into a query variable
func dataVar(data map[string]string) interface{} {
	if len(data) == 0 {
		return nil
	}
	m := make(map[string]interface{}, len(data))
	for k, v := range data {
		m[k] = v
	}
	return m
}
