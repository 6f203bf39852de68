package handler

import (
	"net/http"

	"github.com/tablefolk/api/internal/middleware"
	"github.com/tablefolk/api/internal/model"
	"github.com/tablefolk/api/internal/service"
)

// RelationshipHandler handles friend and block endpoints
type RelationshipHandler struct {
	relationshipService *service.RelationshipService
}

// NewRelationshipHandler creates a new relationship handler
func NewRelationshipHandler(relationshipService *service.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{
		relationshipService: relationshipService,
	}
}

// ListFriends handles GET /v1/friends
func (h *RelationshipHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, model.RelationFriend)
}

// ListIncoming handles GET /v1/friends/requests
func (h *RelationshipHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, model.RelationPending)
}

// ListOutgoing handles GET /v1/friends/requests/sent
func (h *RelationshipHandler) ListOutgoing(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, model.RelationSent)
}

// ListBlocked handles GET /v1/blocked
func (h *RelationshipHandler) ListBlocked(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, model.RelationBlocked)
}

func (h *RelationshipHandler) listByStatus(w http.ResponseWriter, r *http.Request, status model.RelationshipStatus) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	entries, err := h.relationshipService.ListByStatus(r.Context(), accountID, status)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, entries, nil, nil)
}

// SendRequest handles POST /v1/friends/requests/{accountID}
func (h *RelationshipHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	pair, err := h.relationshipService.SendRequest(r.Context(), accountID, r.PathValue("accountID"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, pair, nil)
}

// Accept handles POST /v1/friends/requests/{accountID}/accept
func (h *RelationshipHandler) Accept(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	pair, err := h.relationshipService.Accept(r.Context(), accountID, r.PathValue("accountID"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, pair, nil)
}

// Decline handles POST /v1/friends/requests/{accountID}/decline
func (h *RelationshipHandler) Decline(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.relationshipService.Decline(r.Context(), accountID, r.PathValue("accountID")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// Cancel handles DELETE /v1/friends/requests/{accountID}
func (h *RelationshipHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.relationshipService.Cancel(r.Context(), accountID, r.PathValue("accountID")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// Unfriend handles DELETE /v1/friends/{accountID}
func (h *RelationshipHandler) Unfriend(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.relationshipService.Unfriend(r.Context(), accountID, r.PathValue("accountID")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// Block handles POST /v1/blocked/{accountID}
func (h *RelationshipHandler) Block(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.relationshipService.Block(r.Context(), accountID, r.PathValue("accountID")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// Unblock handles DELETE /v1/blocked/{accountID}
func (h *RelationshipHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.relationshipService.Unblock(r.Context(), accountID, r.PathValue("accountID")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// GetPair handles GET /v1/relationships/{accountID}
func (h *RelationshipHandler) GetPair(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	pair, err := h.relationshipService.GetPair(r.Context(), accountID, r.PathValue("accountID"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, pair, nil)
}
