package model

import (
	"strings"
	"time"
)

// Space is one rentable playing area offered by a space renter
type Space struct {
	Label       string  `json:"label"`
	Capacity    int     `json:"capacity"`
	HourlyPrice float64 `json:"hourly_price"`
}

// SpaceRenter represents an account offering playing space for rent.
type SpaceRenter struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Location  *Location `json:"location,omitempty"`
	Spaces    []Space   `json:"spaces,omitempty"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// Space renter constraints
const (
	MaxSpacesPerRenter = 50
)

// CreateSpaceRenterRequest represents a request to create or replace a
// space-renter listing.
type CreateSpaceRenterRequest struct {
	Name     string    `json:"name"`
	Address  string    `json:"address,omitempty"`
	Location *Location `json:"location,omitempty"`
	Spaces   []Space   `json:"spaces,omitempty"`
}

// Validate validates the space renter request
func (r *CreateSpaceRenterRequest) Validate() []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(r.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > MaxShopNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "name exceeds maximum length"})
	}
	if len(r.Address) > MaxShopAddressLength {
		errs = append(errs, FieldError{Field: "address", Message: "address exceeds maximum length"})
	}
	if len(r.Spaces) > MaxSpacesPerRenter {
		errs = append(errs, FieldError{Field: "spaces", Message: "too many spaces"})
	}
	for _, s := range r.Spaces {
		if strings.TrimSpace(s.Label) == "" || s.Capacity <= 0 || s.HourlyPrice < 0 {
			errs = append(errs, FieldError{Field: "spaces", Message: "spaces need a label, a positive capacity and a non-negative price"})
			break
		}
	}
	if r.Location != nil {
		if fe := r.Location.Validate(); fe != nil {
			errs = append(errs, *fe)
		}
	}

	return errs
}
