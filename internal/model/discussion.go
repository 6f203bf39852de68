package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Discussion represents a chat thread between a set of accounts.
type Discussion struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CreatorID    string    `json:"creator_id"`
	Participants []string  `json:"participants"` // Account IDs, creator included
	LastMessage  *string   `json:"last_message,omitempty"`
	LastAuthorID *string   `json:"last_author_id,omitempty"`
	MessageOn    *time.Time `json:"message_on,omitempty"` // Time of the last message
	CreatedOn    time.Time `json:"created_on"`
	UpdatedOn    time.Time `json:"updated_on"`
}

// HasParticipant reports whether an account belongs to the discussion
func (d *Discussion) HasParticipant(accountID string) bool {
	for _, p := range d.Participants {
		if p == accountID {
			return true
		}
	}
	return false
}

// Message represents a single message in a discussion.
type Message struct {
	ID           string     `json:"id"`
	DiscussionID string     `json:"discussion_id"`
	AuthorID     string     `json:"author_id"`
	Body         string     `json:"body"`
	CreatedOn    time.Time  `json:"created_on"`
	EditedOn     *time.Time `json:"edited_on,omitempty"`
	DeletedOn    *time.Time `json:"deleted_on,omitempty"` // Soft delete
}

// MessageWithAuthor pairs a message with its author's summary
type MessageWithAuthor struct {
	Message Message        `json:"message"`
	Author  AccountSummary `json:"author"`
}

// Discussion constraints
const (
	MaxDiscussionNameLength     = 100
	MaxDiscussionParticipants   = 50
	MaxMessageLength            = 4000
	MaxLastMessagePreviewLength = 120
	DefaultMessagePageSize      = 50
)

// CreateDiscussionRequest represents a request to create a discussion
type CreateDiscussionRequest struct {
	Name         string   `json:"name"`
	Participants []string `json:"participants,omitempty"` // Creator added implicitly
}

// Validate validates the create request
func (r *CreateDiscussionRequest) Validate() []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(r.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > MaxDiscussionNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "name exceeds maximum length"})
	}
	if len(r.Participants) > MaxDiscussionParticipants-1 {
		errs = append(errs, FieldError{Field: "participants", Message: "too many participants"})
	}

	return errs
}

// RenameDiscussionRequest represents a request to rename a discussion
type RenameDiscussionRequest struct {
	Name string `json:"name"`
}

// Validate validates the rename request
func (r *RenameDiscussionRequest) Validate() []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(r.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > MaxDiscussionNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "name exceeds maximum length"})
	}

	return errs
}

// SendMessageRequest represents a request to post a message
type SendMessageRequest struct {
	Body string `json:"body"`
}

// Validate validates the message request
func (r *SendMessageRequest) Validate() []FieldError {
	var errs []FieldError

	if strings.TrimSpace(r.Body) == "" {
		errs = append(errs, FieldError{Field: "body", Message: "body is required"})
	} else if len(r.Body) > MaxMessageLength {
		errs = append(errs, FieldError{Field: "body", Message: "body exceeds maximum length"})
	}

	return errs
}

// MessagePreview returns the truncated body used for the discussion's
// last-message preview. Truncation lands on a rune boundary so the
// preview stays valid UTF-8.
func MessagePreview(body string) string {
	body = strings.TrimSpace(body)
	return TruncateRunesafe(body, MaxLastMessagePreviewLength)
}

// TruncateRunesafe cuts s to at most max bytes without splitting a rune
func TruncateRunesafe(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
