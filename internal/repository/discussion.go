package repository

import (
	"context"
	"errors"

	"github.com/tablefolk/api/internal/database"
	"github.com/tablefolk/api/internal/model"
)

// DiscussionRepository handles discussion and message data access
type DiscussionRepository struct {
	db database.Database
}

// NewDiscussionRepository creates a new discussion repository
func NewDiscussionRepository(db database.Database) *DiscussionRepository {
	return &DiscussionRepository{db: db}
}

// Create creates a new discussion thread
func (r *DiscussionRepository) Create(ctx context.Context, d *model.Discussion) error {
	query := `
		CREATE discussion CONTENT {
			name: $name,
			creator_id: $creator_id,
			participants: $participants,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"name":         d.Name,
		"creator_id":   d.CreatorID,
		"participants": d.Participants,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}
	d.ID = created.ID
	d.CreatedOn = created.CreatedOn
	d.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByID retrieves a discussion by ID
func (r *DiscussionRepository) GetByID(ctx context.Context, id string) (*model.Discussion, error) {
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

	var d model.Discussion
	if err := decodeRecord(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByParticipant retrieves the discussions an account takes part in,
// most recently active first.
func (r *DiscussionRepository) ListByParticipant(ctx context.Context, accountID string) ([]*model.Discussion, error) {
	query := `
		SELECT * FROM discussion
		WHERE $account_id IN participants
		ORDER BY updated_on DESC
	`
	vars := map[string]interface{}{"account_id": accountID}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	discussions := make([]*model.Discussion, 0)
	for _, data := range unwrapList(results) {
		var d model.Discussion
		if err := decodeRecord(data, &d); err == nil && d.ID != "" {
			item := d
			discussions = append(discussions, &item)
		}
	}
	return discussions, nil
}

// Rename updates a discussion's name
func (r *DiscussionRepository) Rename(ctx context.Context, discussionID, name string) error {
	query := `
		UPDATE type::record($id) SET
			name = $name,
			updated_on = time::now()
	`
	vars := map[string]interface{}{
		"id":   discussionID,
		"name": name,
	}
	return r.db.Execute(ctx, query, vars)
}

// AddParticipant adds an account to a discussion's participant list
func (r *DiscussionRepository) AddParticipant(ctx context.Context, discussionID, accountID string) error {
	query := `
		UPDATE type::record($id) SET
			participants = array::union(participants, [$account_id]),
			updated_on = time::now()
	`
	vars := map[string]interface{}{
		"id":         discussionID,
		"account_id": accountID,
	}
	return r.db.Execute(ctx, query, vars)
}

// RemoveParticipant removes an account from a discussion's participant list
func (r *DiscussionRepository) RemoveParticipant(ctx context.Context, discussionID, accountID string) error {
	query := `
		UPDATE type::record($id) SET
			participants = array::remove(participants, array::find_index(participants, $account_id)),
			updated_on = time::now()
		WHERE array::find_index(participants, $account_id) IS NOT NULL
	`
	vars := map[string]interface{}{
		"id":         discussionID,
		"account_id": accountID,
	}
	return r.db.Execute(ctx, query, vars)
}

// Delete removes a discussion and its messages atomically
func (r *DiscussionRepository) Delete(ctx context.Context, discussionID string) error {
	batch := database.NewAtomicBatch()
	vars := map[string]interface{}{"id": discussionID}
	batch.Add(`DELETE message WHERE discussion_id = $id`, vars)
	batch.Add(`DELETE type::record($id)`, vars)
	return batch.Execute(ctx, r.db)
}

// CreateMessage stores a message and updates the thread's last-message
// preview in the same atomic batch, so the preview can never drift from
// the message log.
func (r *DiscussionRepository) CreateMessage(ctx context.Context, m *model.Message, preview string) error {
	batch := database.NewAtomicBatch()
	batch.Add(`
		CREATE message CONTENT {
			discussion_id: $discussion_id,
			author_id: $author_id,
			body: $body,
			created_on: time::now()
		}
	`, map[string]interface{}{
		"discussion_id": m.DiscussionID,
		"author_id":     m.AuthorID,
		"body":          m.Body,
	})
	batch.Add(`
		UPDATE type::record($discussion_id) SET
			last_message = $preview,
			last_author_id = $author_id,
			message_on = time::now(),
			updated_on = time::now()
	`, map[string]interface{}{
		"discussion_id": m.DiscussionID,
		"author_id":     m.AuthorID,
		"preview":       preview,
	})
	return batch.Execute(ctx, r.db)
}

// GetMessage retrieves a message by ID
func (r *DiscussionRepository) GetMessage(ctx context.Context, id string) (*model.Message, error) {
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

	var m model.Message
	if err := decodeRecord(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMessages retrieves a page of a discussion's messages, newest first.
// An empty before means "from the latest".
func (r *DiscussionRepository) ListMessages(ctx context.Context, discussionID string, limit, offset int) ([]*model.Message, error) {
	query := `
		SELECT * FROM message
		WHERE discussion_id = $discussion_id
		ORDER BY created_on DESC
		LIMIT $limit START $offset
	`
	vars := map[string]interface{}{
		"discussion_id": discussionID,
		"limit":         limit,
		"offset":        offset,
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	messages := make([]*model.Message, 0)
	for _, data := range unwrapList(results) {
		var m model.Message
		if err := decodeRecord(data, &m); err == nil && m.ID != "" {
			item := m
			messages = append(messages, &item)
		}
	}
	return messages, nil
}

// EditMessage replaces a message body and stamps edited_on
func (r *DiscussionRepository) EditMessage(ctx context.Context, messageID, body string) error {
	query := `UPDATE type::record($id) SET body = $body, edited_on = time::now()`
	vars := map[string]interface{}{
		"id":   messageID,
		"body": body,
	}
	return r.db.Execute(ctx, query, vars)
}

// SoftDeleteMessage blanks a message body and stamps deleted_on. The record
// stays so thread history keeps its shape.
func (r *DiscussionRepository) SoftDeleteMessage(ctx context.Context, messageID string) error {
	query := `UPDATE type::record($id) SET body = "", deleted_on = time::now()`
	vars := map[string]interface{}{"id": messageID}
	return r.db.Execute(ctx, query, vars)
}
