package handler

import (
	"net/http"
	"strconv"

	"github.com/tablefolk/api/internal/middleware"
	"github.com/tablefolk/api/internal/model"
	"github.com/tablefolk/api/internal/service"
)

// ShopHandler handles game shop endpoints
type ShopHandler struct {
	shopService *service.ShopService
}

// NewShopHandler creates a new shop handler
func NewShopHandler(shopService *service.ShopService) *ShopHandler {
	return &ShopHandler{
		shopService: shopService,
	}
}

// Create handles POST /v1/shops
func (h *ShopHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.CreateShopRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	shop, err := h.shopService.Create(r.Context(), accountID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, shop, map[string]string{
		"self": "/v1/shops/" + shop.ID,
	})
}

// Get handles GET /v1/shops/{id}
func (h *ShopHandler) Get(w http.ResponseWriter, r *http.Request) {
	shop, err := h.shopService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, shop, nil)
}

// GetMine handles GET /v1/shops/mine
func (h *ShopHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	shop, err := h.shopService.GetMine(r.Context(), accountID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, shop, map[string]string{
		"self": "/v1/shops/" + shop.ID,
	})
}

// Update handles PUT /v1/shops/{id}
func (h *ShopHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.CreateShopRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	shop, err := h.shopService.Update(r.Context(), accountID, r.PathValue("id"), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, shop, nil)
}

// Delete handles DELETE /v1/shops/{id}
func (h *ShopHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.shopService.Delete(r.Context(), accountID, r.PathValue("id")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// Nearby handles GET /v1/shops/nearby?lat=..&lng=..&radius_km=..
func (h *ShopHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	lat, lng, radiusKm, limit, problem := parseGeoQuery(r)
	if problem != nil {
		WriteError(w, problem)
		return
	}

	results, err := h.shopService.Nearby(r.Context(), lat, lng, radiusKm, limit)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, results, nil, nil)
}

// Search handles GET /v1/shops/search?q=...
func (h *ShopHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	shops, err := h.shopService.Search(r.Context(), q, limit)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, shops, nil, nil)
}
