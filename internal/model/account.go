package model

import (
	"regexp"
	"strings"
	"time"
)

// AccountRole represents the role of an account in the system
type AccountRole string

const (
	RolePlayer      AccountRole = "player"      // Default role
	RoleShopOwner   AccountRole = "shopowner"   // Owns one or more shops
	RoleSpaceRenter AccountRole = "spacerenter" // Rents out playing space
	RoleAdmin       AccountRole = "admin"       // Full access
)

// IsValid returns true if the role is a known role
func (r AccountRole) IsValid() bool {
	switch r {
	case RolePlayer, RoleShopOwner, RoleSpaceRenter, RoleAdmin:
		return true
	default:
		return false
	}
}

// Account represents a user account
type Account struct {
	ID            string      `json:"id"`
	Handle        string      `json:"handle"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Hash          *string     `json:"-"` // Never expose password hash
	Bio           *string     `json:"bio,omitempty"`
	Role          AccountRole `json:"role"`
	HomeLocation  *Location   `json:"home_location,omitempty"`
	EmailVerified bool        `json:"email_verified"`
	CreatedOn     time.Time   `json:"created_on"`
	UpdatedOn     time.Time   `json:"updated_on"`
	LoginOn       *time.Time  `json:"login_on,omitempty"`
}

// IsAdmin returns true if the account has admin role
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// AccountSummary provides minimal account info for display in lists,
// messages and session rosters.
type AccountSummary struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Name   string `json:"name"`
}

// Summary returns the display summary of an account
func (a *Account) Summary() AccountSummary {
	return AccountSummary{ID: a.ID, Handle: a.Handle, Name: a.Name}
}

// Identity represents a linked federated sign-in provider
type Identity struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"account_id"`
	Provider       string    `json:"provider"` // "google"
	ProviderUserID string    `json:"provider_user_id"`
	ProviderEmail  *string   `json:"provider_email,omitempty"`
	CreatedOn      time.Time `json:"created_on"`
}

// TokenClaims represents extracted JWT claims
type TokenClaims struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Handle    string `json:"handle,omitempty"`
}

// Handle constraints
const (
	MinHandleLength = 3
	MaxHandleLength = 32
	MaxNameLength   = 80
	MaxBioLength    = 500
)

var handlePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// ValidateHandle checks a handle against the naming rules. The handle must
// already be lowercased by the caller.
func ValidateHandle(handle string) *FieldError {
	if len(handle) < MinHandleLength {
		return &FieldError{Field: "handle", Message: "handle must be at least 3 characters"}
	}
	if len(handle) > MaxHandleLength {
		return &FieldError{Field: "handle", Message: "handle must be at most 32 characters"}
	}
	if !handlePattern.MatchString(handle) {
		return &FieldError{Field: "handle", Message: "handle may only contain lowercase letters, digits and underscores"}
	}
	return nil
}

// UpdateAccountRequest represents a profile update. Nil fields are left
// untouched; document fields are otherwise replaced wholesale.
type UpdateAccountRequest struct {
	Handle       *string   `json:"handle,omitempty"`
	Name         *string   `json:"name,omitempty"`
	Bio          *string   `json:"bio,omitempty"`
	HomeLocation *Location `json:"home_location,omitempty"`
}

// Validate validates the update request
func (r *UpdateAccountRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Handle != nil {
		if fe := ValidateHandle(strings.ToLower(strings.TrimSpace(*r.Handle))); fe != nil {
			errs = append(errs, *fe)
		}
	}
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			errs = append(errs, FieldError{Field: "name", Message: "name must not be empty"})
		} else if len(name) > MaxNameLength {
			errs = append(errs, FieldError{Field: "name", Message: "name exceeds maximum length"})
		}
	}
	if r.Bio != nil && len(*r.Bio) > MaxBioLength {
		errs = append(errs, FieldError{Field: "bio", Message: "bio exceeds maximum length"})
	}
	if r.HomeLocation != nil {
		if fe := r.HomeLocation.Validate(); fe != nil {
			errs = append(errs, *fe)
		}
	}

	return errs
}
