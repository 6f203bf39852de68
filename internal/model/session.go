package model

import (
	"strings"
	"time"
)

// SessionStatus tracks a session through its lifecycle
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionOngoing   SessionStatus = "ongoing"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// IsValid returns true for a known status
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionScheduled, SessionOngoing, SessionCompleted, SessionCancelled:
		return true
	}
	return false
}

// SessionVisibility controls who can discover a session
type SessionVisibility string

const (
	SessionPublic  SessionVisibility = "public"
	SessionPrivate SessionVisibility = "private"
)

// IsValid returns true for a known visibility
func (v SessionVisibility) IsValid() bool {
	return v == SessionPublic || v == SessionPrivate
}

// Session represents a scheduled game meetup.
type Session struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Game         string            `json:"game,omitempty"`
	HostID       string            `json:"host_id"`
	Location     *Location         `json:"location,omitempty"`
	ScheduledOn  time.Time         `json:"scheduled_on"`
	MaxPlayers   int               `json:"max_players"`
	Participants []string          `json:"participants"` // Account IDs, host included
	Waitlist     []string          `json:"waitlist,omitempty"`
	Visibility   SessionVisibility `json:"visibility"`
	Status       SessionStatus     `json:"status"`
	DiscussionID *string           `json:"discussion_id,omitempty"`
	RemindedOn   *time.Time        `json:"reminded_on,omitempty"` // Set once the reminder job has fired
	CreatedOn    time.Time         `json:"created_on"`
	UpdatedOn    time.Time         `json:"updated_on"`
}

// HasParticipant reports whether an account takes part in the session
func (s *Session) HasParticipant(accountID string) bool {
	for _, p := range s.Participants {
		if p == accountID {
			return true
		}
	}
	return false
}

// IsWaitlisted reports whether an account sits on the waitlist
func (s *Session) IsWaitlisted(accountID string) bool {
	for _, p := range s.Waitlist {
		if p == accountID {
			return true
		}
	}
	return false
}

// IsFull reports whether the session is at capacity
func (s *Session) IsFull() bool {
	return s.MaxPlayers > 0 && len(s.Participants) >= s.MaxPlayers
}

// Session constraints
const (
	MaxSessionTitleLength = 120
	MaxSessionGameLength  = 120
	MinSessionPlayers     = 2
	MaxSessionPlayers     = 64
)

// CreateSessionRequest represents a request to create a session
type CreateSessionRequest struct {
	Title       string            `json:"title"`
	Game        string            `json:"game,omitempty"`
	Location    *Location         `json:"location,omitempty"`
	ScheduledOn time.Time         `json:"scheduled_on"`
	MaxPlayers  int               `json:"max_players"`
	Visibility  SessionVisibility `json:"visibility,omitempty"`
}

// Validate validates the create request
func (r *CreateSessionRequest) Validate() []FieldError {
	var errs []FieldError

	title := strings.TrimSpace(r.Title)
	if title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	} else if len(title) > MaxSessionTitleLength {
		errs = append(errs, FieldError{Field: "title", Message: "title exceeds maximum length"})
	}
	if len(r.Game) > MaxSessionGameLength {
		errs = append(errs, FieldError{Field: "game", Message: "game exceeds maximum length"})
	}
	if r.ScheduledOn.IsZero() {
		errs = append(errs, FieldError{Field: "scheduled_on", Message: "scheduled_on is required"})
	}
	if r.MaxPlayers < MinSessionPlayers || r.MaxPlayers > MaxSessionPlayers {
		errs = append(errs, FieldError{Field: "max_players", Message: "max_players must be between 2 and 64"})
	}
	if r.Visibility != "" && !r.Visibility.IsValid() {
		errs = append(errs, FieldError{Field: "visibility", Message: "visibility must be public or private"})
	}
	if r.Location != nil {
		if fe := r.Location.Validate(); fe != nil {
			errs = append(errs, *fe)
		}
	}

	return errs
}

// UpdateSessionRequest represents a partial session update by the host
type UpdateSessionRequest struct {
	Title       *string            `json:"title,omitempty"`
	Game        *string            `json:"game,omitempty"`
	Location    *Location          `json:"location,omitempty"`
	ScheduledOn *time.Time         `json:"scheduled_on,omitempty"`
	MaxPlayers  *int               `json:"max_players,omitempty"`
	Visibility  *SessionVisibility `json:"visibility,omitempty"`
}

// Validate validates the update request
func (r *UpdateSessionRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" {
			errs = append(errs, FieldError{Field: "title", Message: "title must not be empty"})
		} else if len(title) > MaxSessionTitleLength {
			errs = append(errs, FieldError{Field: "title", Message: "title exceeds maximum length"})
		}
	}
	if r.Game != nil && len(*r.Game) > MaxSessionGameLength {
		errs = append(errs, FieldError{Field: "game", Message: "game exceeds maximum length"})
	}
	if r.MaxPlayers != nil && (*r.MaxPlayers < MinSessionPlayers || *r.MaxPlayers > MaxSessionPlayers) {
		errs = append(errs, FieldError{Field: "max_players", Message: "max_players must be between 2 and 64"})
	}
	if r.Visibility != nil && !r.Visibility.IsValid() {
		errs = append(errs, FieldError{Field: "visibility", Message: "visibility must be public or private"})
	}
	if r.Location != nil {
		if fe := r.Location.Validate(); fe != nil {
			errs = append(errs, *fe)
		}
	}

	return errs
}
