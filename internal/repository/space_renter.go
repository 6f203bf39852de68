package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tablefolk/api/internal/database"
	"github.com/tablefolk/api/internal/model"
)

// SpaceRenterRepository handles space-renter listing data access
type SpaceRenterRepository struct {
	db database.Database
}

// NewSpaceRenterRepository creates a new space renter repository
func NewSpaceRenterRepository(db database.Database) *SpaceRenterRepository {
	return &SpaceRenterRepository{db: db}
}

// Create creates a new space-renter listing
func (r *SpaceRenterRepository) Create(ctx context.Context, sr *model.SpaceRenter) error {
	query := `
		CREATE space_renter CONTENT {
			owner_id: $owner_id,
			name: $name,
			address: IF $address IS NOT NULL THEN $address ELSE NONE END,
			location: IF $location IS NOT NULL THEN $location ELSE NONE END,
			spaces: $spaces,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"owner_id": sr.OwnerID,
		"name":     sr.Name,
		"address":  nilIfEmpty(sr.Address),
		"location": locationVar(sr.Location),
		"spaces":   spacesVar(sr.Spaces),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: listing already exists", database.ErrDuplicate)
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}
	sr.ID = created.ID
	sr.CreatedOn = created.CreatedOn
	sr.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByID retrieves a listing by ID
func (r *SpaceRenterRepository) GetByID(ctx context.Context, id string) (*model.SpaceRenter, error) {
	query := `SELECT * FROM type::record($id)`
	return r.queryRenter(ctx, query, map[string]interface{}{"id": id})
}

// GetByOwner retrieves the listing owned by an account, nil if none
func (r *SpaceRenterRepository) GetByOwner(ctx context.Context, ownerID string) (*model.SpaceRenter, error) {
	query := `SELECT * FROM space_renter WHERE owner_id = $owner_id LIMIT 1`
	return r.queryRenter(ctx, query, map[string]interface{}{"owner_id": ownerID})
}

func (r *SpaceRenterRepository) queryRenter(ctx context.Context, query string, vars map[string]interface{}) (*model.SpaceRenter, error) {
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

	var sr model.SpaceRenter
	if err := decodeRecord(data, &sr); err != nil {
		return nil, err
	}
	return &sr, nil
}

// Update replaces a listing's content
func (r *SpaceRenterRepository) Update(ctx context.Context, sr *model.SpaceRenter) error {
	query := `
		UPDATE type::record($id) SET
			name = $name,
			address = $address,
			location = $location,
			spaces = $spaces,
			updated_on = time::now()
	`
	vars := map[string]interface{}{
		"id":       sr.ID,
		"name":     sr.Name,
		"address":  nilIfEmpty(sr.Address),
		"location": locationVar(sr.Location),
		"spaces":   spacesVar(sr.Spaces),
	}
	return r.db.Execute(ctx, query, vars)
}

// Delete removes a listing
func (r *SpaceRenterRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE type::record($id)`
	return r.db.Execute(ctx, query, map[string]interface{}{"id": id})
}

// ListInBox retrieves listings inside a latitude/longitude bounding box
func (r *SpaceRenterRepository) ListInBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64, limit int) ([]*model.SpaceRenter, error) {
	query := `
		SELECT * FROM space_renter
		WHERE location IS NOT NULL
			AND location.lat >= $min_lat AND location.lat <= $max_lat
			AND location.lng >= $min_lng AND location.lng <= $max_lng
		ORDER BY name ASC
		LIMIT $limit
	`
	vars := map[string]interface{}{
		"min_lat": minLat,
		"max_lat": maxLat,
		"min_lng": minLng,
		"max_lng": maxLng,
		"limit":   limit,
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	renters := make([]*model.SpaceRenter, 0)
	for _, data := range unwrapList(results) {
		var sr model.SpaceRenter
		if err := decodeRecord(data, &sr); err == nil && sr.ID != "" {
			item := sr
			renters = append(renters, &item)
		}
	}
	return renters, nil
}

// Search finds listings by name or by a space label
func (r *SpaceRenterRepository) Search(ctx context.Context, q string, limit int) ([]*model.SpaceRenter, error) {
	query := `
		SELECT * FROM space_renter
		WHERE string::lowercase(name) CONTAINS $q
			OR array::any(spaces, |$s| string::lowercase($s.label) CONTAINS $q)
		ORDER BY name ASC
		LIMIT $limit
	`
	vars := map[string]interface{}{
		"q":     q,
		"limit": limit,
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	renters := make([]*model.SpaceRenter, 0)
	for _, data := range unwrapList(results) {
		var sr model.SpaceRenter
		if err := decodeRecord(data, &sr); err == nil && sr.ID != "" {
			item := sr
			renters = append(renters, &item)
		}
	}
	return renters, nil
}

// spacesVar converts a listing's spaces into a query variable
func spacesVar(spaces []model.Space) interface{} {
	out := make([]interface{}, 0, len(spaces))
	for _, s := range spaces {
		out = append(out, map[string]interface{}{
			"label":        s.Label,
			"capacity":     s.Capacity,
			"hourly_price": s.HourlyPrice,
		})
	}
	return out
}
