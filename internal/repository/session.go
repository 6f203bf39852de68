package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tablefolk/api/internal/database"
	"github.com/tablefolk/api/internal/model"
)

// SessionRepository handles game session data access
type SessionRepository struct {
	db database.Database
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.Database) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session. The host is the first participant.
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	query := `
		CREATE session CONTENT {
			title: $title,
			game: IF $game IS NOT NULL THEN $game ELSE NONE END,
			host_id: $host_id,
			location: IF $location IS NOT NULL THEN $location ELSE NONE END,
			scheduled_on: <datetime>$scheduled_on,
			max_players: $max_players,
			participants: $participants,
			waitlist: [],
			visibility: $visibility,
			status: $status,
			discussion_id: IF $discussion_id IS NOT NULL THEN $discussion_id ELSE NONE END,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"title":         s.Title,
		"game":          nilIfEmpty(s.Game),
		"host_id":       s.HostID,
		"location":      locationVar(s.Location),
		"scheduled_on":  s.ScheduledOn.UTC().Format(time.RFC3339),
		"max_players":   s.MaxPlayers,
		"participants":  s.Participants,
		"visibility":    s.Visibility,
		"status":        s.Status,
		"discussion_id": ptrOrNil(s.DiscussionID),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}
	s.ID = created.ID
	s.CreatedOn = created.CreatedOn
	s.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByID retrieves a session by ID
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*model.Session, error) {
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

	return decodeSession(data)
}

// Update replaces a session's mutable detail fields
func (r *SessionRepository) Update(ctx context.Context, s *model.Session) error {
	query := `
		UPDATE type::record($id) SET
			title = $title,
			game = $game,
			location = $location,
			scheduled_on = <datetime>$scheduled_on,
			max_players = $max_players,
			visibility = $visibility,
			updated_on = time::now()
	`
	vars := map[string]interface{}{
		"id":           s.ID,
		"title":        s.Title,
		"game":         nilIfEmpty(s.Game),
		"location":     locationVar(s.Location),
		"scheduled_on": s.ScheduledOn.UTC().Format(time.RFC3339),
		"max_players":  s.MaxPlayers,
		"visibility":   s.Visibility,
	}
	return r.db.Execute(ctx, query, vars)
}

// SetStatus moves a session to a new lifecycle status
func (r *SessionRepository) SetStatus(ctx context.Context, sessionID string, status model.SessionStatus) error {
	query := `UPDATE type::record($id) SET status = $status, updated_on = time::now()`
	vars := map[string]interface{}{
		"id":     sessionID,
		"status": status,
	}
	return r.db.Execute(ctx, query, vars)
}

// SetDiscussion links the session's discussion thread
func (r *SessionRepository) SetDiscussion(ctx context.Context, sessionID, discussionID string) error {
	query := `UPDATE type::record($id) SET discussion_id = $discussion_id, updated_on = time::now()`
	vars := map[string]interface{}{
		"id":            sessionID,
		"discussion_id": discussionID,
	}
	return r.db.Execute(ctx, query, vars)
}

// SetRoster replaces the participant and waitlist arrays in one statement.
// The service computes the new roster from a fresh read; capacity rules and
// waitlist promotion live there.
func (r *SessionRepository) SetRoster(ctx context.Context, sessionID string, participants, waitlist []string) error {
	query := `
		UPDATE type::record($id) SET
			participants = $participants,
			waitlist = $waitlist,
			updated_on = time::now()
	`
	vars := map[string]interface{}{
		"id":           sessionID,
		"participants": participants,
		"waitlist":     waitlist,
	}
	return r.db.Execute(ctx, query, vars)
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	query := `DELETE type::record($id)`
	return r.db.Execute(ctx, query, map[string]interface{}{"id": sessionID})
}

// ListByParticipant retrieves the sessions an account takes part in,
// soonest first. Cancelled sessions are excluded.
func (r *SessionRepository) ListByParticipant(ctx context.Context, accountID string) ([]*model.Session, error) {
	query := `
		SELECT * FROM session
		WHERE ($account_id IN participants OR $account_id IN waitlist) AND status != $cancelled
		ORDER BY scheduled_on ASC
	`
	vars := map[string]interface{}{
		"account_id": accountID,
		"cancelled":  model.SessionCancelled,
	}
	return r.querySessions(ctx, query, vars)
}

// ListByHost retrieves the sessions hosted by an account, soonest first
func (r *SessionRepository) ListByHost(ctx context.Context, accountID string) ([]*model.Session, error) {
	query := `
		SELECT * FROM session
		WHERE host_id = $account_id
		ORDER BY scheduled_on ASC
	`
	vars := map[string]interface{}{"account_id": accountID}
	return r.querySessions(ctx, query, vars)
}

// ListPublicInBox retrieves upcoming public sessions whose location falls
// inside a latitude/longitude bounding box. The service computes the box
// from a center and radius and post-filters by exact distance.
func (r *SessionRepository) ListPublicInBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64, from time.Time, limit int) ([]*model.Session, error) {
	query := `
		SELECT * FROM session
		WHERE visibility = $public
			AND status = $scheduled
			AND scheduled_on >= <datetime>$from
			AND location IS NOT NULL
			AND location.lat >= $min_lat AND location.lat <= $max_lat
			AND location.lng >= $min_lng AND location.lng <= $max_lng
		ORDER BY scheduled_on ASC
		LIMIT $limit
	`
	vars := map[string]interface{}{
		"public":    model.SessionPublic,
		"scheduled": model.SessionScheduled,
		"from":      from.UTC().Format(time.RFC3339),
		"min_lat":   minLat,
		"max_lat":   maxLat,
		"min_lng":   minLng,
		"max_lng":   maxLng,
		"limit":     limit,
	}
	return r.querySessions(ctx, query, vars)
}

// ListDueForReminder retrieves scheduled sessions starting inside the
// window that have not been reminded yet.
func (r *SessionRepository) ListDueForReminder(ctx context.Context, from, to time.Time) ([]*model.Session, error) {
	query := `
		SELECT * FROM session
		WHERE status = $scheduled
			AND reminded_on IS NONE
			AND scheduled_on >= <datetime>$from
			AND scheduled_on <= <datetime>$to
	`
	vars := map[string]interface{}{
		"scheduled": model.SessionScheduled,
		"from":      from.UTC().Format(time.RFC3339),
		"to":        to.UTC().Format(time.RFC3339),
	}
	return r.querySessions(ctx, query, vars)
}

// MarkReminded stamps reminded_on so the reminder fires once per session
func (r *SessionRepository) MarkReminded(ctx context.Context, sessionID string) error {
	query := `UPDATE type::record($id) SET reminded_on = time::now()`
	return r.db.Execute(ctx, query, map[string]interface{}{"id": sessionID})
}

func (r *SessionRepository) querySessions(ctx context.Context, query string, vars map[string]interface{}) ([]*model.Session, error) {
	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	sessions := make([]*model.Session, 0)
	for _, data := range unwrapList(results) {
		s, err := decodeSession(data)
		if err == nil && s.ID != "" {
			sessions = append(sessions, s)
		}
	}
	return sessions, nil
}

func decodeSession(data map[string]interface{}) (*model.Session, error) {
	// The driver may hand datetimes back as CustomDateTime, which the JSON
	// roundtrip cannot carry. Normalize them to RFC3339 strings first.
	for _, key := range []string{"scheduled_on", "reminded_on", "created_on", "updated_on"} {
		if v, ok := data[key]; ok && v != nil {
			if t := parseTimeValue(v); !t.IsZero() {
				data[key] = t.Format(time.RFC3339Nano)
			}
		}
	}

	var s model.Session
	if err := decodeRecord(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
