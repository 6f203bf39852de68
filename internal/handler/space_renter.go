package handler

import (
	"net/http"
	"strconv"

	"github.com/tablefolk/api/internal/middleware"
	"github.com/tablefolk/api/internal/model"
	"github.com/tablefolk/api/internal/service"
)

// SpaceRenterHandler handles space-renter listing endpoints
type SpaceRenterHandler struct {
	spaceRenterService *service.SpaceRenterService
}

// NewSpaceRenterHandler creates a new space renter handler
func NewSpaceRenterHandler(spaceRenterService *service.SpaceRenterService) *SpaceRenterHandler {
	return &SpaceRenterHandler{
		spaceRenterService: spaceRenterService,
	}
}

// Create handles POST /v1/spaces
func (h *SpaceRenterHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.CreateSpaceRenterRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	listing, err := h.spaceRenterService.Create(r.Context(), accountID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, listing, map[string]string{
		"self": "/v1/spaces/" + listing.ID,
	})
}

// Get handles GET /v1/spaces/{id}
func (h *SpaceRenterHandler) Get(w http.ResponseWriter, r *http.Request) {
	listing, err := h.spaceRenterService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, listing, nil)
}

// GetMine handles GET /v1/spaces/mine
func (h *SpaceRenterHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	listing, err := h.spaceRenterService.GetMine(r.Context(), accountID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, listing, map[string]string{
		"self": "/v1/spaces/" + listing.ID,
	})
}

// Update handles PUT /v1/spaces/{id}
func (h *SpaceRenterHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.CreateSpaceRenterRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	listing, err := h.spaceRenterService.Update(r.Context(), accountID, r.PathValue("id"), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, listing, nil)
}

// Delete handles DELETE /v1/spaces/{id}
func (h *SpaceRenterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.spaceRenterService.Delete(r.Context(), accountID, r.PathValue("id")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// Nearby handles GET /v1/spaces/nearby?lat=..&lng=..&radius_km=..
func (h *SpaceRenterHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	lat, lng, radiusKm, limit, problem := parseGeoQuery(r)
	if problem != nil {
		WriteError(w, problem)
		return
	}

	results, err := h.spaceRenterService.Nearby(r.Context(), lat, lng, radiusKm, limit)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, results, nil, nil)
}

// Search handles GET /v1/spaces/search?q=...
func (h *SpaceRenterHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	listings, err := h.spaceRenterService.Search(r.Context(), q, limit)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, listings, nil, nil)
}
