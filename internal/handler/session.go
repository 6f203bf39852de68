package handler

import (
	"net/http"
	"strconv"

	"github.com/tablefolk/api/internal/middleware"
	"github.com/tablefolk/api/internal/model"
	"github.com/tablefolk/api/internal/service"
)

// SessionHandler handles game session endpoints
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

// SetStatusRequest represents the set-status request body
type SetStatusRequest struct {
	Status string `json:"status"`
}

// InviteRequest represents the invite request body
type InviteRequest struct {
	AccountID string `json:"account_id"`
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.CreateSessionRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	session, err := h.sessionService.Create(r.Context(), accountID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, session, map[string]string{
		"self": "/v1/sessions/" + session.ID,
	})
}

// Get handles GET /v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	session, err := h.sessionService.Get(r.Context(), accountID, r.PathValue("id"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, session, nil)
}

// Update handles PATCH /v1/sessions/{id}
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.UpdateSessionRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	session, err := h.sessionService.Update(r.Context(), accountID, r.PathValue("id"), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, session, nil)
}

// Cancel handles POST /v1/sessions/{id}/cancel
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.sessionService.Cancel(r.Context(), accountID, r.PathValue("id")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// SetStatus handles POST /v1/sessions/{id}/status
func (h *SessionHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req SetStatusRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	status := model.SessionStatus(req.Status)
	if !status.IsValid() {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "status", Message: "unknown session status"},
		}))
		return
	}

	if err := h.sessionService.SetStatus(r.Context(), accountID, r.PathValue("id"), status); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// Join handles POST /v1/sessions/{id}/join
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	session, err := h.sessionService.Join(r.Context(), accountID, r.PathValue("id"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, session, nil)
}

// Leave handles POST /v1/sessions/{id}/leave
func (h *SessionHandler) Leave(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.sessionService.Leave(r.Context(), accountID, r.PathValue("id")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// Kick handles DELETE /v1/sessions/{id}/participants/{accountID}
func (h *SessionHandler) Kick(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.sessionService.Kick(r.Context(), accountID, r.PathValue("id"), r.PathValue("accountID")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// Invite handles POST /v1/sessions/{id}/invite
func (h *SessionHandler) Invite(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req InviteRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if req.AccountID == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "account_id", Message: "account_id is required"},
		}))
		return
	}

	if err := h.sessionService.Invite(r.Context(), accountID, r.PathValue("id"), req.AccountID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// ListMine handles GET /v1/sessions/mine
func (h *SessionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	sessions, err := h.sessionService.ListMine(r.Context(), accountID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, sessions, nil, nil)
}

// Nearby handles GET /v1/sessions/nearby?lat=..&lng=..&radius_km=..&limit=..
func (h *SessionHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	lat, lng, radiusKm, limit, problem := parseGeoQuery(r)
	if problem != nil {
		WriteError(w, problem)
		return
	}

	results, err := h.sessionService.Nearby(r.Context(), lat, lng, radiusKm, limit)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, results, nil, nil)
}

// parseGeoQuery extracts lat/lng/radius_km/limit from a discovery query.
// lat and lng are required.
func parseGeoQuery(r *http.Request) (lat, lng, radiusKm float64, limit int, problem *model.ProblemDetails) {
	q := r.URL.Query()

	var errs []model.FieldError
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		errs = append(errs, model.FieldError{Field: "lat", Message: "lat must be a number between -90 and 90"})
	}
	lng, err = strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		errs = append(errs, model.FieldError{Field: "lng", Message: "lng must be a number between -180 and 180"})
	}
	if len(errs) > 0 {
		return 0, 0, 0, 0, model.NewValidationError(errs)
	}

	radiusKm, _ = strconv.ParseFloat(q.Get("radius_km"), 64)
	limit, _ = strconv.Atoi(q.Get("limit"))
	return lat, lng, radiusKm, limit, nil
}
