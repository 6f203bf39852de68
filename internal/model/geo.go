package model

// Location is a geographic point with an optional human-readable label.
type Location struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label,omitempty"`
}

// Validate checks coordinate ranges
func (l *Location) Validate() *FieldError {
	if l.Lat < -90 || l.Lat > 90 {
		return &FieldError{Field: "location.lat", Message: "latitude must be between -90 and 90"}
	}
	if l.Lng < -180 || l.Lng > 180 {
		return &FieldError{Field: "location.lng", Message: "longitude must be between -180 and 180"}
	}
	return nil
}

// GeocodeResult is one candidate returned by the geocoding provider.
type GeocodeResult struct {
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}
