package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tablefolk/api/internal/model"
)

// SessionRepository defines the interface for session storage
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	Update(ctx context.Context, s *model.Session) error
	SetStatus(ctx context.Context, sessionID string, status model.SessionStatus) error
	SetDiscussion(ctx context.Context, sessionID, discussionID string) error
	SetRoster(ctx context.Context, sessionID string, participants, waitlist []string) error
	Delete(ctx context.Context, sessionID string) error
	ListByParticipant(ctx context.Context, accountID string) ([]*model.Session, error)
	ListByHost(ctx context.Context, accountID string) ([]*model.Session, error)
	ListPublicInBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64, from time.Time, limit int) ([]*model.Session, error)
	ListDueForReminder(ctx context.Context, from, to time.Time) ([]*model.Session, error)
	MarkReminded(ctx context.Context, sessionID string) error
}

// SessionService handles game session lifecycle, rosters and discovery
type SessionService struct {
	repo       SessionRepository
	discussion *DiscussionService
	relService *RelationshipService
	notifier   Notifier
	hub        *UpdateHub
	geo        *GeoService
}

// SessionServiceConfig holds configuration for the session service
type SessionServiceConfig struct {
	Repo         SessionRepository
	Discussion   *DiscussionService
	Relationship *RelationshipService
	Notifier     Notifier
	Hub          *UpdateHub
	Geo          *GeoService
}

// NewSessionService creates a new session service
func NewSessionService(cfg SessionServiceConfig) *SessionService {
	geo := cfg.Geo
	if geo == nil {
		geo = NewGeoService()
	}
	return &SessionService{
		repo:       cfg.Repo,
		discussion: cfg.Discussion,
		relService: cfg.Relationship,
		notifier:   cfg.Notifier,
		hub:        cfg.Hub,
		geo:        geo,
	}
}

// Create schedules a new session hosted by the account. A discussion
// thread is opened alongside so the table can talk before the game.
func (s *SessionService) Create(ctx context.Context, hostID string, req model.CreateSessionRequest) (*model.Session, error) {
	if !req.ScheduledOn.After(time.Now()) {
		return nil, ErrSessionInPast
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = model.SessionPublic
	}

	session := &model.Session{
		Title:        strings.TrimSpace(req.Title),
		Game:         strings.TrimSpace(req.Game),
		HostID:       hostID,
		Location:     req.Location,
		ScheduledOn:  req.ScheduledOn,
		MaxPlayers:   req.MaxPlayers,
		Participants: []string{hostID},
		Waitlist:     []string{},
		Visibility:   visibility,
		Status:       model.SessionScheduled,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	if s.discussion != nil {
		d, err := s.discussion.Create(ctx, hostID, model.CreateDiscussionRequest{
			Name: session.Title,
		})
		if err == nil {
			if err := s.repo.SetDiscussion(ctx, session.ID, d.ID); err == nil {
				session.DiscussionID = &d.ID
			}
		}
	}

	return session, nil
}

// Get retrieves a session. Private sessions are visible to their
// participants and waitlisted accounts only.
func (s *SessionService) Get(ctx context.Context, accountID, sessionID string) (*model.Session, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Visibility == model.SessionPrivate &&
		!session.HasParticipant(accountID) && !session.IsWaitlisted(accountID) {
		return nil, ErrSessionNotVisible
	}
	return session, nil
}

// Update changes a session's details. Host only, and only while the
// session is still scheduled.
func (s *SessionService) Update(ctx context.Context, accountID, sessionID string, req model.UpdateSessionRequest) (*model.Session, error) {
	session, err := s.hostSession(ctx, accountID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionScheduled {
		return nil, ErrSessionNotJoinable
	}

	if req.Title != nil {
		session.Title = strings.TrimSpace(*req.Title)
	}
	if req.Game != nil {
		session.Game = strings.TrimSpace(*req.Game)
	}
	if req.Location != nil {
		loc := *req.Location
		session.Location = &loc
	}
	if req.ScheduledOn != nil {
		if !req.ScheduledOn.After(time.Now()) {
			return nil, ErrSessionInPast
		}
		session.ScheduledOn = *req.ScheduledOn
	}
	if req.MaxPlayers != nil {
		session.MaxPlayers = *req.MaxPlayers
	}
	if req.Visibility != nil {
		session.Visibility = *req.Visibility
	}

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, err
	}

	// Shrinking capacity below the current roster moves the overflow,
	// newest joiners first, onto the waitlist.
	if session.MaxPlayers > 0 && len(session.Participants) > session.MaxPlayers {
		overflow := session.Participants[session.MaxPlayers:]
		session.Participants = session.Participants[:session.MaxPlayers]
		session.Waitlist = append(overflow, session.Waitlist...)
		if err := s.repo.SetRoster(ctx, session.ID, session.Participants, session.Waitlist); err != nil {
			return nil, err
		}
	}

	s.broadcast(ctx, session, "Session updated")
	return session, nil
}

// Cancel cancels a scheduled session and tells everyone on the roster
func (s *SessionService) Cancel(ctx context.Context, accountID, sessionID string) error {
	session, err := s.hostSession(ctx, accountID, sessionID)
	if err != nil {
		return err
	}
	if session.Status == model.SessionCancelled || session.Status == model.SessionCompleted {
		return ErrSessionNotJoinable
	}

	if err := s.repo.SetStatus(ctx, sessionID, model.SessionCancelled); err != nil {
		return err
	}
	session.Status = model.SessionCancelled

	s.broadcast(ctx, session, "Session cancelled")
	return nil
}

// SetStatus moves a session through its lifecycle (host only)
func (s *SessionService) SetStatus(ctx context.Context, accountID, sessionID string, status model.SessionStatus) error {
	session, err := s.hostSession(ctx, accountID, sessionID)
	if err != nil {
		return err
	}

	switch status {
	case model.SessionOngoing:
		if session.Status != model.SessionScheduled {
			return ErrBadStatusChange
		}
	case model.SessionCompleted:
		if session.Status != model.SessionOngoing {
			return ErrBadStatusChange
		}
	case model.SessionCancelled:
		return s.Cancel(ctx, accountID, sessionID)
	default:
		return ErrBadStatusChange
	}

	if err := s.repo.SetStatus(ctx, sessionID, status); err != nil {
		return err
	}
	session.Status = status
	s.broadcast(ctx, session, "Session "+string(status))
	return nil
}

// Join adds the account to the session, or to the waitlist when full.
// Blocks between the joiner and the host prevent joining.
func (s *SessionService) Join(ctx context.Context, accountID, sessionID string) (*model.Session, error) {
	session, err := s.Get(ctx, accountID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionScheduled {
		return nil, ErrSessionNotJoinable
	}
	if session.HasParticipant(accountID) || session.IsWaitlisted(accountID) {
		return nil, ErrAlreadyJoined
	}

	if s.relService != nil && accountID != session.HostID {
		blocked, err := s.relService.IsBlockedEither(ctx, accountID, session.HostID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, ErrBlockedByAccount
		}
	}

	if session.IsFull() {
		session.Waitlist = append(session.Waitlist, accountID)
	} else {
		session.Participants = append(session.Participants, accountID)
	}
	if err := s.repo.SetRoster(ctx, sessionID, session.Participants, session.Waitlist); err != nil {
		return nil, err
	}

	if session.DiscussionID != nil && s.discussion != nil && session.HasParticipant(accountID) {
		_ = s.discussion.repo.AddParticipant(ctx, *session.DiscussionID, accountID)
	}

	s.notifyHost(ctx, session, accountID)
	return session, nil
}

// Leave removes the account from the roster or waitlist. Freed seats go
// to the first waitlisted account, which gets told about its promotion.
func (s *SessionService) Leave(ctx context.Context, accountID, sessionID string) error {
	session, err := s.Get(ctx, accountID, sessionID)
	if err != nil {
		return err
	}
	if session.HostID == accountID {
		return ErrHostCannotLeave
	}
	if !session.HasParticipant(accountID) && !session.IsWaitlisted(accountID) {
		return ErrNotSessionMember
	}

	return s.removeFromRoster(ctx, session, accountID)
}

// Kick removes another account from the session (host only)
func (s *SessionService) Kick(ctx context.Context, accountID, sessionID, targetID string) error {
	session, err := s.hostSession(ctx, accountID, sessionID)
	if err != nil {
		return err
	}
	if targetID == session.HostID {
		return ErrHostCannotLeave
	}
	if !session.HasParticipant(targetID) && !session.IsWaitlisted(targetID) {
		return ErrNotSessionMember
	}

	return s.removeFromRoster(ctx, session, targetID)
}

func (s *SessionService) removeFromRoster(ctx context.Context, session *model.Session, accountID string) error {
	wasParticipant := session.HasParticipant(accountID)
	session.Participants = removeID(session.Participants, accountID)
	session.Waitlist = removeID(session.Waitlist, accountID)

	var promoted string
	if wasParticipant && !session.IsFull() && len(session.Waitlist) > 0 {
		promoted = session.Waitlist[0]
		session.Waitlist = session.Waitlist[1:]
		session.Participants = append(session.Participants, promoted)
	}

	if err := s.repo.SetRoster(ctx, session.ID, session.Participants, session.Waitlist); err != nil {
		return err
	}

	if session.DiscussionID != nil && s.discussion != nil {
		_ = s.discussion.repo.RemoveParticipant(ctx, *session.DiscussionID, accountID)
		if promoted != "" {
			_ = s.discussion.repo.AddParticipant(ctx, *session.DiscussionID, promoted)
		}
	}

	if promoted != "" && s.notifier != nil {
		_ = s.notifier.Notify(ctx, &model.Notification{
			AccountID: promoted,
			Type:      model.NotifySessionUpdate,
			Title:     fmt.Sprintf("A seat opened up in %s", session.Title),
			Data:      map[string]string{"session_id": session.ID},
		})
	}
	return nil
}

// Invite notifies a friend about the session
func (s *SessionService) Invite(ctx context.Context, accountID, sessionID, inviteeID string) error {
	session, err := s.Get(ctx, accountID, sessionID)
	if err != nil {
		return err
	}
	if !session.HasParticipant(accountID) {
		return ErrNotSessionMember
	}
	if session.HasParticipant(inviteeID) || session.IsWaitlisted(inviteeID) {
		return ErrAlreadyJoined
	}

	if s.relService != nil {
		friends, err := s.relService.AreFriends(ctx, accountID, inviteeID)
		if err != nil {
			return err
		}
		if !friends {
			return ErrRelationshipNotFound
		}
	}

	if s.notifier != nil {
		_ = s.notifier.Notify(ctx, &model.Notification{
			AccountID: inviteeID,
			Type:      model.NotifySessionInvite,
			Title:     fmt.Sprintf("You're invited to %s", session.Title),
			Data: map[string]string{
				"session_id": session.ID,
				"account_id": accountID,
			},
		})
	}
	return nil
}

// ListMine retrieves the sessions the account takes part in
func (s *SessionService) ListMine(ctx context.Context, accountID string) ([]*model.Session, error) {
	return s.repo.ListByParticipant(ctx, accountID)
}

// NearbyResult pairs a session with its distance from the search center
type NearbyResult struct {
	Session    *model.Session `json:"session"`
	DistanceKm float64        `json:"distance_km"`
}

// Nearby finds upcoming public sessions around a point. The database
// filters by bounding box; exact distances come from the haversine
// formula and order the results.
func (s *SessionService) Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]NearbyResult, error) {
	if radiusKm <= 0 {
		radiusKm = DefaultSearchRadiusKm
	}
	if radiusKm > MaxSearchRadiusKm {
		radiusKm = MaxSearchRadiusKm
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	box := s.geo.GetBoundingBox(lat, lng, radiusKm)
	sessions, err := s.repo.ListPublicInBox(ctx, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng, time.Now(), limit*2)
	if err != nil {
		return nil, err
	}

	results := make([]NearbyResult, 0, len(sessions))
	for _, session := range sessions {
		if session.Location == nil {
			continue
		}
		dist := s.geo.HaversineDistance(lat, lng, session.Location.Lat, session.Location.Lng)
		if dist > radiusKm {
			continue
		}
		results = append(results, NearbyResult{Session: session, DistanceKm: dist})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// RemindUpcoming finds sessions starting inside the window, notifies
// their rosters and marks them reminded. Called by the reminder job.
func (s *SessionService) RemindUpcoming(ctx context.Context, window time.Duration) (int, error) {
	now := time.Now()
	sessions, err := s.repo.ListDueForReminder(ctx, now, now.Add(window))
	if err != nil {
		return 0, err
	}

	reminded := 0
	for _, session := range sessions {
		if s.notifier != nil {
			for _, accountID := range session.Participants {
				_ = s.notifier.Notify(ctx, &model.Notification{
					AccountID: accountID,
					Type:      model.NotifySessionUpdate,
					Title:     fmt.Sprintf("%s starts soon", session.Title),
					Data:      map[string]string{"session_id": session.ID},
				})
			}
		}
		if err := s.repo.MarkReminded(ctx, session.ID); err != nil {
			continue
		}
		reminded++
	}
	return reminded, nil
}

// hostSession loads a session and checks the caller is its host
func (s *SessionService) hostSession(ctx context.Context, accountID, sessionID string) (*model.Session, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.HostID != accountID {
		return nil, ErrNotSessionHost
	}
	return session, nil
}

// broadcast tells the roster about a session-level change
func (s *SessionService) broadcast(ctx context.Context, session *model.Session, title string) {
	recipients := make([]string, 0, len(session.Participants)+len(session.Waitlist))
	for _, id := range append(append([]string{}, session.Participants...), session.Waitlist...) {
		if id != session.HostID {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return
	}

	if s.hub != nil {
		s.hub.SendToAccounts(recipients, Update{
			Type: UpdateSessionChanged,
			Data: session,
		})
	}
	if s.notifier != nil {
		for _, id := range recipients {
			_ = s.notifier.Notify(ctx, &model.Notification{
				AccountID: id,
				Type:      model.NotifySessionUpdate,
				Title:     fmt.Sprintf("%s: %s", title, session.Title),
				Data:      map[string]string{"session_id": session.ID},
			})
		}
	}
}

// notifyHost tells the host somebody joined
func (s *SessionService) notifyHost(ctx context.Context, session *model.Session, joinerID string) {
	if s.notifier == nil || joinerID == session.HostID {
		return
	}
	_ = s.notifier.Notify(ctx, &model.Notification{
		AccountID: session.HostID,
		Type:      model.NotifySessionUpdate,
		Title:     fmt.Sprintf("Someone joined %s", session.Title),
		Data: map[string]string{
			"session_id": session.ID,
			"account_id": joinerID,
		},
	})
}

// removeID drops an ID from a roster slice
func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
