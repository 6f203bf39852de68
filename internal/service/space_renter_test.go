package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tablefolk/api/internal/model"
)

// mockSpaceRenterRepo keeps listings in memory
type mockSpaceRenterRepo struct {
	listings map[string]*model.SpaceRenter
	nextID   int
}

func newMockSpaceRenterRepo() *mockSpaceRenterRepo {
	return &mockSpaceRenterRepo{listings: make(map[string]*model.SpaceRenter)}
}

func (m *mockSpaceRenterRepo) Create(ctx context.Context, sr *model.SpaceRenter) error {
	m.nextID++
	sr.ID = fmt.Sprintf("space_renter:%d", m.nextID)
	sr.CreatedOn = time.Now()
	sr.UpdatedOn = time.Now()
	m.listings[sr.ID] = sr
	return nil
}

func (m *mockSpaceRenterRepo) GetByID(ctx context.Context, id string) (*model.SpaceRenter, error) {
	return m.listings[id], nil
}

func (m *mockSpaceRenterRepo) GetByOwner(ctx context.Context, ownerID string) (*model.SpaceRenter, error) {
	for _, sr := range m.listings {
		if sr.OwnerID == ownerID {
			return sr, nil
		}
	}
	return nil, nil
}

func (m *mockSpaceRenterRepo) Update(ctx context.Context, sr *model.SpaceRenter) error {
	m.listings[sr.ID] = sr
	return nil
}

func (m *mockSpaceRenterRepo) Delete(ctx context.Context, id string) error {
	delete(m.listings, id)
	return nil
}

func (m *mockSpaceRenterRepo) ListInBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64, limit int) ([]*model.SpaceRenter, error) {
	var result []*model.SpaceRenter
	for _, sr := range m.listings {
		if sr.Location == nil {
			continue
		}
		if sr.Location.Lat < minLat || sr.Location.Lat > maxLat || sr.Location.Lng < minLng || sr.Location.Lng > maxLng {
			continue
		}
		result = append(result, sr)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *mockSpaceRenterRepo) Search(ctx context.Context, q string, limit int) ([]*model.SpaceRenter, error) {
	var result []*model.SpaceRenter
	for _, sr := range m.listings {
		match := strings.Contains(strings.ToLower(sr.Name), q)
		for _, space := range sr.Spaces {
			if strings.Contains(strings.ToLower(space.Label), q) {
				match = true
			}
		}
		if match {
			result = append(result, sr)
		}
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func setupSpaceRenterService(t *testing.T) (*SpaceRenterService, *mockSpaceRenterRepo, *mockAccountRepo) {
	t.Helper()
	repo := newMockSpaceRenterRepo()
	accountRepo := newMockAccountRepo()
	svc := NewSpaceRenterService(SpaceRenterServiceConfig{
		Repo:        repo,
		AccountRepo: accountRepo,
	})
	return svc, repo, accountRepo
}

func TestSpaceRenterService_Create_UpgradesRole(t *testing.T) {
	svc, _, accountRepo := setupSpaceRenterService(t)
	ctx := context.Background()
	owner := accountRepo.addAccount(t, "backroom", "backroom@example.com", "password123")

	listing, err := svc.Create(ctx, owner.ID, model.CreateSpaceRenterRequest{
		Name:    "  The Back Room  ",
		Address: "Canal Street 12",
		Spaces:  []model.Space{{Label: "Main hall", Capacity: 12, HourlyPrice: 15}},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if listing.Name != "The Back Room" {
		t.Errorf("expected trimmed name, got %q", listing.Name)
	}
	if accountRepo.accounts[owner.ID].Role != model.RoleSpaceRenter {
		t.Errorf("expected role upgraded to spacerenter, got %s", accountRepo.accounts[owner.ID].Role)
	}
}

func TestSpaceRenterService_Create_OnePerOwner(t *testing.T) {
	svc, _, accountRepo := setupSpaceRenterService(t)
	ctx := context.Background()
	owner := accountRepo.addAccount(t, "backroom", "backroom@example.com", "password123")

	if _, err := svc.Create(ctx, owner.ID, model.CreateSpaceRenterRequest{Name: "First"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, owner.ID, model.CreateSpaceRenterRequest{Name: "Second"}); err != ErrListingExists {
		t.Errorf("expected ErrListingExists, got %v", err)
	}
}

func TestSpaceRenterService_Update_OwnerGate(t *testing.T) {
	svc, _, accountRepo := setupSpaceRenterService(t)
	ctx := context.Background()
	owner := accountRepo.addAccount(t, "backroom", "backroom@example.com", "password123")
	stranger := accountRepo.addAccount(t, "stranger", "stranger@example.com", "password123")
	admin := accountRepo.addAccount(t, "admin", "admin@example.com", "password123")
	admin.Role = model.RoleAdmin

	listing, err := svc.Create(ctx, owner.ID, model.CreateSpaceRenterRequest{Name: "The Back Room"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Update(ctx, stranger.ID, listing.ID, model.CreateSpaceRenterRequest{Name: "Taken Over"}); err != ErrNotListingOwner {
		t.Errorf("expected ErrNotListingOwner, got %v", err)
	}

	updated, err := svc.Update(ctx, owner.ID, listing.ID, model.CreateSpaceRenterRequest{Name: "Renamed"})
	if err != nil {
		t.Fatalf("owner Update failed: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("expected renamed listing, got %q", updated.Name)
	}

	// Admins can edit any listing
	if _, err := svc.Update(ctx, admin.ID, listing.ID, model.CreateSpaceRenterRequest{Name: "Admin Edit"}); err != nil {
		t.Errorf("admin Update failed: %v", err)
	}
}

func TestSpaceRenterService_Delete(t *testing.T) {
	svc, repo, accountRepo := setupSpaceRenterService(t)
	ctx := context.Background()
	owner := accountRepo.addAccount(t, "backroom", "backroom@example.com", "password123")

	listing, err := svc.Create(ctx, owner.ID, model.CreateSpaceRenterRequest{Name: "Closing Down"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Delete(ctx, owner.ID, listing.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(repo.listings) != 0 {
		t.Error("expected listing removed")
	}
	if _, err := svc.Get(ctx, listing.ID); err != ErrListingNotFound {
		t.Errorf("expected ErrListingNotFound, got %v", err)
	}
}

func TestSpaceRenterService_Nearby(t *testing.T) {
	svc, _, accountRepo := setupSpaceRenterService(t)
	ctx := context.Background()
	near := accountRepo.addAccount(t, "near", "near@example.com", "password123")
	far := accountRepo.addAccount(t, "far", "far@example.com", "password123")

	if _, err := svc.Create(ctx, near.ID, model.CreateSpaceRenterRequest{
		Name:     "Near Space",
		Location: &model.Location{Lat: 52.37, Lng: 4.89},
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, far.ID, model.CreateSpaceRenterRequest{
		Name:     "Far Space",
		Location: &model.Location{Lat: 48.86, Lng: 2.35},
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	results, err := svc.Nearby(ctx, 52.36, 4.90, 25, 10)
	if err != nil {
		t.Fatalf("Nearby failed: %v", err)
	}
	if len(results) != 1 || results[0].Listing.Name != "Near Space" {
		t.Fatalf("expected only the near listing, got %d results", len(results))
	}
}

func TestSpaceRenterService_Search(t *testing.T) {
	svc, _, accountRepo := setupSpaceRenterService(t)
	ctx := context.Background()
	owner := accountRepo.addAccount(t, "backroom", "backroom@example.com", "password123")

	if _, err := svc.Create(ctx, owner.ID, model.CreateSpaceRenterRequest{
		Name:   "The Back Room",
		Spaces: []model.Space{{Label: "Tournament hall", Capacity: 24, HourlyPrice: 30}},
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Space labels are searchable
	results, err := svc.Search(ctx, "TOURNAMENT", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	// Too-short queries return nothing instead of everything
	results, err = svc.Search(ctx, "t", 10)
	if err != nil || len(results) != 0 {
		t.Errorf("expected empty result for short query, got %d %v", len(results), err)
	}
}
