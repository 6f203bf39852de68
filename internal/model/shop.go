package model

import (
	"strings"
	"time"
)

// OpeningHours is one day's opening window in minutes from midnight.
// Open == Close means closed all day.
type OpeningHours struct {
	Open  int `json:"open"`
	Close int `json:"close"`
}

// GameEntry is one game in a shop's catalog
type GameEntry struct {
	Name   string `json:"name"`
	Copies int    `json:"copies"`
}

// Shop represents a game shop run by an account.
type Shop struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Name      string          `json:"name"`
	Address   string          `json:"address,omitempty"`
	Location  *Location       `json:"location,omitempty"`
	Hours     [7]OpeningHours `json:"hours"` // Monday first
	Catalog   []GameEntry     `json:"catalog,omitempty"`
	CreatedOn time.Time       `json:"created_on"`
	UpdatedOn time.Time       `json:"updated_on"`
}

// Shop constraints
const (
	MaxShopNameLength    = 100
	MaxShopAddressLength = 200
	MaxCatalogEntries    = 500
	minutesPerDay        = 24 * 60
)

// CreateShopRequest represents a request to create or replace shop content
type CreateShopRequest struct {
	Name     string          `json:"name"`
	Address  string          `json:"address,omitempty"`
	Location *Location       `json:"location,omitempty"`
	Hours    [7]OpeningHours `json:"hours"`
	Catalog  []GameEntry     `json:"catalog,omitempty"`
}

// Validate validates the shop request
func (r *CreateShopRequest) Validate() []FieldError {
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
	if len(r.Catalog) > MaxCatalogEntries {
		errs = append(errs, FieldError{Field: "catalog", Message: "too many catalog entries"})
	}
	for i, h := range r.Hours {
		if h.Open < 0 || h.Open >= minutesPerDay || h.Close < 0 || h.Close > minutesPerDay || h.Close < h.Open {
			errs = append(errs, FieldError{Field: "hours", Message: "invalid opening window for day " + dayName(i)})
			break
		}
	}
	for _, g := range r.Catalog {
		if strings.TrimSpace(g.Name) == "" || g.Copies < 0 {
			errs = append(errs, FieldError{Field: "catalog", Message: "catalog entries need a name and a non-negative copy count"})
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

func dayName(i int) string {
	days := [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	if i >= 0 && i < 7 {
		return days[i]
	}
	return "unknown"
}
