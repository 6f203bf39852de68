package handler

import (
	"net/http"
	"strconv"

	"github.com/tablefolk/api/internal/middleware"
	"github.com/tablefolk/api/internal/model"
	"github.com/tablefolk/api/internal/service"
)

// GeocodeHandler handles forward and reverse geocoding lookups
type GeocodeHandler struct {
	geocodeService *service.GeocodeService
}

// NewGeocodeHandler creates a new geocode handler
func NewGeocodeHandler(geocodeService *service.GeocodeService) *GeocodeHandler {
	return &GeocodeHandler{
		geocodeService: geocodeService,
	}
}

// Search handles GET /v1/geocode?q=...
func (h *GeocodeHandler) Search(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	q := r.URL.Query().Get("q")
	if q == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "q", Message: "q is required"},
		}))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.geocodeService.Search(r.Context(), q, limit)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, results, nil, nil)
}

// Reverse handles GET /v1/geocode/reverse?lat=..&lng=..
func (h *GeocodeHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	lat, lng, _, _, problem := parseGeoQuery(r)
	if problem != nil {
		WriteError(w, problem)
		return
	}

	result, err := h.geocodeService.Reverse(r.Context(), lat, lng)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}
