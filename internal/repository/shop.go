package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tablefolk/api/internal/database"
	"github.com/tablefolk/api/internal/model"
)

// ShopRepository handles shop data access
type ShopRepository struct {
	db database.Database
}

// NewShopRepository creates a new shop repository
func NewShopRepository(db database.Database) *ShopRepository {
	return &ShopRepository{db: db}
}

// Create creates a new shop
func (r *ShopRepository) Create(ctx context.Context, s *model.Shop) error {
	query := `
		CREATE shop CONTENT {
			owner_id: $owner_id,
			name: $name,
			address: IF $address IS NOT NULL THEN $address ELSE NONE END,
			location: IF $location IS NOT NULL THEN $location ELSE NONE END,
			hours: $hours,
			catalog: $catalog,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"owner_id": s.OwnerID,
		"name":     s.Name,
		"address":  nilIfEmpty(s.Address),
		"location": locationVar(s.Location),
		"hours":    hoursVar(s.Hours),
		"catalog":  catalogVar(s.Catalog),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: shop already exists", database.ErrDuplicate)
		}
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

// GetByID retrieves a shop by ID
func (r *ShopRepository) GetByID(ctx context.Context, id string) (*model.Shop, error) {
	query := `SELECT * FROM type::record($id)`
	return r.queryShop(ctx, query, map[string]interface{}{"id": id})
}

// GetByOwner retrieves the shop owned by an account, nil if none
func (r *ShopRepository) GetByOwner(ctx context.Context, ownerID string) (*model.Shop, error) {
	query := `SELECT * FROM shop WHERE owner_id = $owner_id LIMIT 1`
	return r.queryShop(ctx, query, map[string]interface{}{"owner_id": ownerID})
}

func (r *ShopRepository) queryShop(ctx context.Context, query string, vars map[string]interface{}) (*model.Shop, error) {
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

	var s model.Shop
	if err := decodeRecord(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Update replaces a shop's content
func (r *ShopRepository) Update(ctx context.Context, s *model.Shop) error {
	query := `
		UPDATE type::record($id) SET
			name = $name,
			address = $address,
			location = $location,
			hours = $hours,
			catalog = $catalog,
			updated_on = time::now()
	`
	vars := map[string]interface{}{
		"id":       s.ID,
		"name":     s.Name,
		"address":  nilIfEmpty(s.Address),
		"location": locationVar(s.Location),
		"hours":    hoursVar(s.Hours),
		"catalog":  catalogVar(s.Catalog),
	}
	return r.db.Execute(ctx, query, vars)
}

// Delete removes a shop
func (r *ShopRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE type::record($id)`
	return r.db.Execute(ctx, query, map[string]interface{}{"id": id})
}

// ListInBox retrieves shops inside a latitude/longitude bounding box
func (r *ShopRepository) ListInBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64, limit int) ([]*model.Shop, error) {
	query := `
		SELECT * FROM shop
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
	return r.queryShops(ctx, query, vars)
}

// Search finds shops by name or by a game in their catalog
func (r *ShopRepository) Search(ctx context.Context, q string, limit int) ([]*model.Shop, error) {
	query := `
		SELECT * FROM shop
		WHERE string::lowercase(name) CONTAINS $q
			OR array::any(catalog, |$g| string::lowercase($g.name) CONTAINS $q)
		ORDER BY name ASC
		LIMIT $limit
	`
	vars := map[string]interface{}{
		"q":     q,
		"limit": limit,
	}
	return r.queryShops(ctx, query, vars)
}

func (r *ShopRepository) queryShops(ctx context.Context, query string, vars map[string]interface{}) ([]*model.Shop, error) {
	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	shops := make([]*model.Shop, 0)
	for _, data := range unwrapList(results) {
		var s model.Shop
		if err := decodeRecord(data, &s); err == nil && s.ID != "" {
			item := s
			shops = append(shops, &item)
		}
	}
	return shops, nil
}

// hoursVar converts opening hours into a query variable
func hoursVar(hours [7]model.OpeningHours) interface{} {
	out := make([]interface{}, 0, len(hours))
	for _, h := range hours {
		out = append(out, map[string]interface{}{
			"open":  h.Open,
			"close": h.Close,
		})
	}
	return out
}

// catalogVar converts a game catalog into a query variable
func catalogVar(catalog []model.GameEntry) interface{} {
	out := make([]interface{}, 0, len(catalog))
	for _, g := range catalog {
		out = append(out, map[string]interface{}{
			"name":   g.Name,
			"copies": g.Copies,
		})
	}
	return out
}
