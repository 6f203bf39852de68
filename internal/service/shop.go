package service

import (
	"context"
	"sort"
	"strings"

	"github.com/tablefolk/api/internal/model"
)

// ShopRepository defines the interface for shop storage
type ShopRepository interface {
	Create(ctx context.Context, s *model.Shop) error
	GetByID(ctx context.Context, id string) (*model.Shop, error)
	GetByOwner(ctx context.Context, ownerID string) (*model.Shop, error)
	Update(ctx context.Context, s *model.Shop) error
	Delete(ctx context.Context, id string) error
	ListInBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64, limit int) ([]*model.Shop, error)
	Search(ctx context.Context, q string, limit int) ([]*model.Shop, error)
}

// ShopService handles shop listings. Creating a shop upgrades a player
// account to shopowner; one shop per account.
type ShopService struct {
	repo        ShopRepository
	accountRepo AccountRepository
	geo         *GeoService
}

// ShopServiceConfig holds configuration for the shop service
type ShopServiceConfig struct {
	Repo        ShopRepository
	AccountRepo AccountRepository
	Geo         *GeoService
}

// NewShopService creates a new shop service
func NewShopService(cfg ShopServiceConfig) *ShopService {
	geo := cfg.Geo
	if geo == nil {
		geo = NewGeoService()
	}
	return &ShopService{
		repo:        cfg.Repo,
		accountRepo: cfg.AccountRepo,
		geo:         geo,
	}
}

// Create opens a shop for the account and upgrades its role
func (s *ShopService) Create(ctx context.Context, ownerID string, req model.CreateShopRequest) (*model.Shop, error) {
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
		return nil, ErrShopExists
	}

	shop := &model.Shop{
		OwnerID:  ownerID,
		Name:     strings.TrimSpace(req.Name),
		Address:  strings.TrimSpace(req.Address),
		Location: req.Location,
		Hours:    req.Hours,
		Catalog:  req.Catalog,
	}
	if err := s.repo.Create(ctx, shop); err != nil {
		return nil, err
	}

	if account.Role == model.RolePlayer {
		_ = s.accountRepo.SetRole(ctx, ownerID, model.RoleShopOwner)
	}
	return shop, nil
}

// Get retrieves a shop by ID
func (s *ShopService) Get(ctx context.Context, shopID string) (*model.Shop, error) {
	shop, err := s.repo.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	return shop, nil
}

// GetMine retrieves the caller's shop
func (s *ShopService) GetMine(ctx context.Context, ownerID string) (*model.Shop, error) {
	shop, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	return shop, nil
}

// Update replaces the shop's content (owner or admin)
func (s *ShopService) Update(ctx context.Context, accountID, shopID string, req model.CreateShopRequest) (*model.Shop, error) {
	shop, err := s.ownedShop(ctx, accountID, shopID)
	if err != nil {
		return nil, err
	}

	shop.Name = strings.TrimSpace(req.Name)
	shop.Address = strings.TrimSpace(req.Address)
	shop.Location = req.Location
	shop.Hours = req.Hours
	shop.Catalog = req.Catalog

	if err := s.repo.Update(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}

// Delete closes the shop (owner or admin)
func (s *ShopService) Delete(ctx context.Context, accountID, shopID string) error {
	if _, err := s.ownedShop(ctx, accountID, shopID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, shopID)
}

// ShopWithDistance pairs a shop with its distance from a search center
type ShopWithDistance struct {
	Shop       *model.Shop `json:"shop"`
	DistanceKm float64     `json:"distance_km"`
}

// Nearby finds shops around a point, nearest first
func (s *ShopService) Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]ShopWithDistance, error) {
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
	shops, err := s.repo.ListInBox(ctx, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng, limit*2)
	if err != nil {
		return nil, err
	}

	results := make([]ShopWithDistance, 0, len(shops))
	for _, shop := range shops {
		if shop.Location == nil {
			continue
		}
		dist := s.geo.HaversineDistance(lat, lng, shop.Location.Lat, shop.Location.Lng)
		if dist > radiusKm {
			continue
		}
		results = append(results, ShopWithDistance{Shop: shop, DistanceKm: dist})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Search finds shops by name or catalog game
func (s *ShopService) Search(ctx context.Context, q string, limit int) ([]*model.Shop, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if len(q) < 2 {
		return []*model.Shop{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.repo.Search(ctx, q, limit)
}

// ownedShop loads a shop and checks the caller owns it or is an admin
func (s *ShopService) ownedShop(ctx context.Context, accountID, shopID string) (*model.Shop, error) {
	shop, err := s.repo.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	if shop.OwnerID != accountID {
		account, err := s.accountRepo.GetByID(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if account == nil || !account.IsAdmin() {
			return nil, ErrNotShopOwner
		}
	}
	return shop, nil
}
