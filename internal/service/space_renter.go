package service

import (
	"context"
	"sort"
	"strings"

	"github.com/tablefolk/api/internal/model"
)

// SpaceRenterRepository defines the interface for space-renter storage
type SpaceRenterRepository interface {
	Create(ctx context.Context, sr *model.SpaceRenter) error
	GetByID(ctx context.Context, id string) (*model.SpaceRenter, error)
	GetByOwner(ctx context.Context, ownerID string) (*model.SpaceRenter, error)
	Update(ctx context.Context, sr *model.SpaceRenter) error
	Delete(ctx context.Context, id string) error
	ListInBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64, limit int) ([]*model.SpaceRenter, error)
	Search(ctx context.Context, q string, limit int) ([]*model.SpaceRenter, error)
}

// SpaceRenterService handles rentable-space listings. Creating one
// upgrades a player account to spacerenter; one listing per account.
type SpaceRenterService struct {
	repo        SpaceRenterRepository
	accountRepo AccountRepository
	geo         *GeoService
}

// SpaceRenterServiceConfig holds configuration for the space renter service
type SpaceRenterServiceConfig struct {
	Repo        SpaceRenterRepository
	AccountRepo AccountRepository
	Geo         *GeoService
}

// NewSpaceRenterService creates a new space renter service
func NewSpaceRenterService(cfg SpaceRenterServiceConfig) *SpaceRenterService {
	geo := cfg.Geo
	if geo == nil {
		geo = NewGeoService()
	}
	return &SpaceRenterService{
		repo:        cfg.Repo,
		accountRepo: cfg.AccountRepo,
		geo:         geo,
	}
}

// Create publishes a listing for the account and upgrades its role
func (s *SpaceRenterService) Create(ctx context.Context, ownerID string, req model.CreateSpaceRenterRequest) (*model.SpaceRenter, error) {
	account, err := s.accountRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	existing, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrListingExists
	}

	listing := &model.SpaceRenter{
		OwnerID:  ownerID,
		Name:     strings.TrimSpace(req.Name),
		Address:  strings.TrimSpace(req.Address),
		Location: req.Location,
		Spaces:   req.Spaces,
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, err
	}

	if account.Role == model.RolePlayer {
		_ = s.accountRepo.SetRole(ctx, ownerID, model.RoleSpaceRenter)
	}
	return listing, nil
}

// Get retrieves a listing by ID
func (s *SpaceRenterService) Get(ctx context.Context, listingID string) (*model.SpaceRenter, error) {
	listing, err := s.repo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

// GetMine retrieves the caller's listing
func (s *SpaceRenterService) GetMine(ctx context.Context, ownerID string) (*model.SpaceRenter, error) {
	listing, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

// Update replaces the listing's content (owner or admin)
func (s *SpaceRenterService) Update(ctx context.Context, accountID, listingID string, req model.CreateSpaceRenterRequest) (*model.SpaceRenter, error) {
	listing, err := s.ownedListing(ctx, accountID, listingID)
	if err != nil {
		return nil, err
	}

	listing.Name = strings.TrimSpace(req.Name)
	listing.Address = strings.TrimSpace(req.Address)
	listing.Location = req.Location
	listing.Spaces = req.Spaces

	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Delete removes the listing (owner or admin)
func (s *SpaceRenterService) Delete(ctx context.Context, accountID, listingID string) error {
	if _, err := s.ownedListing(ctx, accountID, listingID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, listingID)
}

// ListingWithDistance pairs a listing with its distance from a search center
type ListingWithDistance struct {
	Listing    *model.SpaceRenter `json:"listing"`
	DistanceKm float64            `json:"distance_km"`
}

// Nearby finds listings around a point, nearest first
func (s *SpaceRenterService) Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]ListingWithDistance, error) {
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
	listings, err := s.repo.ListInBox(ctx, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng, limit*2)
	if err != nil {
		return nil, err
	}

	results := make([]ListingWithDistance, 0, len(listings))
	for _, listing := range listings {
		if listing.Location == nil {
			continue
		}
		dist := s.geo.HaversineDistance(lat, lng, listing.Location.Lat, listing.Location.Lng)
		if dist > radiusKm {
			continue
		}
		results = append(results, ListingWithDistance{Listing: listing, DistanceKm: dist})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Search finds listings by name or space label
func (s *SpaceRenterService) Search(ctx context.Context, q string, limit int) ([]*model.SpaceRenter, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if len(q) < 2 {
		return []*model.SpaceRenter{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.repo.Search(ctx, q, limit)
}

// ownedListing loads a listing and checks the caller owns it or is admin
func (s *SpaceRenterService) ownedListing(ctx context.Context, accountID, listingID string) (*model.SpaceRenter, error) {
	listing, err := s.repo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	if listing.OwnerID != accountID {
		account, err := s.accountRepo.GetByID(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if account == nil || !account.IsAdmin() {
			return nil, ErrNotListingOwner
		}
	}
	return listing, nil
}
