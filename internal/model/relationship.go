package model

import "time"

// RelationshipStatus is the per-direction status of the edge between two
// accounts. The absence of an edge means "none". One status is stored per
// direction, so a pair of accounts is described by up to two documents.
type RelationshipStatus string

const (
	RelationSent    RelationshipStatus = "sent"    // This account sent a friend request
	RelationPending RelationshipStatus = "pending" // This account received a friend request
	RelationFriend  RelationshipStatus = "friend"  // Mutual friendship
	RelationBlocked RelationshipStatus = "blocked" // This account blocked the other
)

// IsValid returns true for a known status
func (s RelationshipStatus) IsValid() bool {
	switch s {
	case RelationSent, RelationPending, RelationFriend, RelationBlocked:
		return true
	default:
		return false
	}
}

// Relationship is one direction of the edge between two accounts.
// OwnerID is the account the status belongs to, OtherID the counterpart.
type Relationship struct {
	ID        string             `json:"id"`
	OwnerID   string             `json:"owner_id"`
	OtherID   string             `json:"other_id"`
	Status    RelationshipStatus `json:"status"`
	CreatedOn time.Time          `json:"created_on"`
	UpdatedOn time.Time          `json:"updated_on"`
}

// RelationshipPair is the view of both directions between two accounts.
// A nil side means no edge exists in that direction.
type RelationshipPair struct {
	Mine   *Relationship `json:"mine,omitempty"`
	Theirs *Relationship `json:"theirs,omitempty"`
}

// MyStatus returns this side's status, or empty when no edge exists.
func (p *RelationshipPair) MyStatus() RelationshipStatus {
	if p.Mine == nil {
		return ""
	}
	return p.Mine.Status
}

// TheirStatus returns the counterpart's status, or empty when no edge exists.
func (p *RelationshipPair) TheirStatus() RelationshipStatus {
	if p.Theirs == nil {
		return ""
	}
	return p.Theirs.Status
}

// RelationshipWithAccount pairs an edge with the counterpart's summary for
// friend and request listings.
type RelationshipWithAccount struct {
	Relationship Relationship   `json:"relationship"`
	Account      AccountSummary `json:"account"`
}
