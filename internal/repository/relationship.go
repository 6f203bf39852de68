package repository

import (
	"context"
	"errors"

	"github.com/tablefolk/api/internal/database"
	"github.com/tablefolk/api/internal/model"
)

// RelationshipRepository handles relationship edge data access. Edges are
// stored per direction; every change touching both directions goes through
// an atomic batch so the pair can never be observed half-updated.
type RelationshipRepository struct {
	db database.Database
}

// NewRelationshipRepository creates a new relationship repository
func NewRelationshipRepository(db database.Database) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

// Get retrieves the edge owned by ownerID pointing at otherID, nil if none
func (r *RelationshipRepository) Get(ctx context.Context, ownerID, otherID string) (*model.Relationship, error) {
	query := `
		SELECT * FROM relationship
		WHERE owner_id = $owner AND other_id = $other
		LIMIT 1
	`
	vars := map[string]interface{}{
		"owner": ownerID,
		"other": otherID,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	rel, err := parseRelationshipResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rel, nil
}

// GetPair retrieves both directions between two accounts in one query
func (r *RelationshipRepository) GetPair(ctx context.Context, accountID, otherID string) (*model.RelationshipPair, error) {
	query := `
		SELECT * FROM relationship
		WHERE (owner_id = $a AND other_id = $b) OR (owner_id = $b AND other_id = $a)
	`
	vars := map[string]interface{}{
		"a": accountID,
		"b": otherID,
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	pair := &model.RelationshipPair{}
	for _, data := range unwrapList(results) {
		var rel model.Relationship
		if err := decodeRecord(data, &rel); err != nil {
			continue
		}
		switch rel.OwnerID {
		case accountID:
			edge := rel
			pair.Mine = &edge
		case otherID:
			edge := rel
			pair.Theirs = &edge
		}
	}
	return pair, nil
}

// ListByStatus retrieves all edges owned by an account with the given status
func (r *RelationshipRepository) ListByStatus(ctx context.Context, ownerID string, status model.RelationshipStatus) ([]*model.Relationship, error) {
	query := `
		SELECT * FROM relationship
		WHERE owner_id = $owner AND status = $status
		ORDER BY updated_on DESC
	`
	vars := map[string]interface{}{
		"owner":  ownerID,
		"status": status,
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	rels := make([]*model.Relationship, 0)
	for _, data := range unwrapList(results) {
		var rel model.Relationship
		if err := decodeRecord(data, &rel); err == nil && rel.ID != "" {
			edge := rel
			rels = append(rels, &edge)
		}
	}
	return rels, nil
}

// CreatePair records a new friend request: a "sent" edge for the sender and
// a "pending" edge for the recipient, created atomically.
func (r *RelationshipRepository) CreatePair(ctx context.Context, senderID, recipientID string) error {
	batch := database.NewAtomicBatch()
	batch.Add(`
		CREATE relationship CONTENT {
			owner_id: $owner,
			other_id: $other,
			status: $status,
			created_on: time::now(),
			updated_on: time::now()
		}
	`, map[string]interface{}{
		"owner":  senderID,
		"other":  recipientID,
		"status": model.RelationSent,
	})
	batch.Add(`
		CREATE relationship CONTENT {
			owner_id: $owner,
			other_id: $other,
			status: $status,
			created_on: time::now(),
			updated_on: time::now()
		}
	`, map[string]interface{}{
		"owner":  recipientID,
		"other":  senderID,
		"status": model.RelationPending,
	})
	return batch.Execute(ctx, r.db)
}

// SetPairStatus moves both directions between two accounts to the given
// status in one atomic batch. Used to accept a request (both sides become
// "friend").
func (r *RelationshipRepository) SetPairStatus(ctx context.Context, accountID, otherID string, status model.RelationshipStatus) error {
	batch := database.NewAtomicBatch()
	batch.Add(`
		UPDATE relationship SET status = $status, updated_on = time::now()
		WHERE owner_id = $owner AND other_id = $other
	`, map[string]interface{}{
		"owner":  accountID,
		"other":  otherID,
		"status": status,
	})
	batch.Add(`
		UPDATE relationship SET status = $status, updated_on = time::now()
		WHERE owner_id = $owner AND other_id = $other
	`, map[string]interface{}{
		"owner":  otherID,
		"other":  accountID,
		"status": status,
	})
	return batch.Execute(ctx, r.db)
}

// Block writes the blocker's edge as "blocked" and optionally removes the
// counterpart's edge, all in one atomic batch. createMine is true when the
// blocker had no edge yet; deleteTheirs is false when the counterpart has
// a block of their own, which must survive.
func (r *RelationshipRepository) Block(ctx context.Context, blockerID, blockedID string, createMine, deleteTheirs bool) error {
	batch := database.NewAtomicBatch()

	if createMine {
		batch.Add(`
			CREATE relationship CONTENT {
				owner_id: $owner,
				other_id: $other,
				status: $status,
				created_on: time::now(),
				updated_on: time::now()
			}
		`, map[string]interface{}{
			"owner":  blockerID,
			"other":  blockedID,
			"status": model.RelationBlocked,
		})
	} else {
		batch.Add(`
			UPDATE relationship SET status = $status, updated_on = time::now()
			WHERE owner_id = $owner AND other_id = $other
		`, map[string]interface{}{
			"owner":  blockerID,
			"other":  blockedID,
			"status": model.RelationBlocked,
		})
	}

	if deleteTheirs {
		batch.Add(`
			DELETE relationship WHERE owner_id = $owner AND other_id = $other
		`, map[string]interface{}{
			"owner": blockedID,
			"other": blockerID,
		})
	}

	return batch.Execute(ctx, r.db)
}

// DeletePair removes both directions between two accounts atomically.
// Used for unfriending and for declining or cancelling a request.
func (r *RelationshipRepository) DeletePair(ctx context.Context, accountID, otherID string) error {
	batch := database.NewAtomicBatch()
	batch.Add(`
		DELETE relationship WHERE owner_id = $owner AND other_id = $other
	`, map[string]interface{}{
		"owner": accountID,
		"other": otherID,
	})
	batch.Add(`
		DELETE relationship WHERE owner_id = $owner AND other_id = $other
	`, map[string]interface{}{
		"owner": otherID,
		"other": accountID,
	})
	return batch.Execute(ctx, r.db)
}

// DeleteOne removes a single direction. Used for unblocking when the
// counterpart's edge must be preserved.
func (r *RelationshipRepository) DeleteOne(ctx context.Context, ownerID, otherID string) error {
	query := `DELETE relationship WHERE owner_id = $owner AND other_id = $other`
	vars := map[string]interface{}{
		"owner": ownerID,
		"other": otherID,
	}
	return r.db.Execute(ctx, query, vars)
}

// CountByStatus counts an account's edges with the given status
func (r *RelationshipRepository) CountByStatus(ctx context.Context, ownerID string, status model.RelationshipStatus) (int, error) {
	query := `
		SELECT count() AS count FROM relationship
		WHERE owner_id = $owner AND status = $status
		GROUP ALL
	`
	vars := map[string]interface{}{
		"owner":  ownerID,
		"status": status,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return extractCount(result), nil
}

func parseRelationshipResult(result interface{}) (*model.Relationship, error) {
	data, err := unwrapOne(result)
	if err != nil {
		return nil, err
	}

	var rel model.Relationship
	if err := decodeRecord(data, &rel); err != nil {
		return nil, err
	}
	return &rel, nil
}
