package handler

import (
	"net/http"
	"strconv"

	"github.com/tablefolk/api/internal/middleware"
	"github.com/tablefolk/api/internal/model"
	"github.com/tablefolk/api/internal/service"
)

// DiscussionHandler handles discussion and message endpoints
type DiscussionHandler struct {
	discussionService *service.DiscussionService
}

// NewDiscussionHandler creates a new discussion handler
func NewDiscussionHandler(discussionService *service.DiscussionService) *DiscussionHandler {
	return &DiscussionHandler{
		discussionService: discussionService,
	}
}

// AddParticipantRequest represents the add-participant request body
type AddParticipantRequest struct {
	AccountID string `json:"account_id"`
}

// Create handles POST /v1/discussions
func (h *DiscussionHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.CreateDiscussionRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	discussion, err := h.discussionService.Create(r.Context(), accountID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, discussion, map[string]string{
		"self":     "/v1/discussions/" + discussion.ID,
		"messages": "/v1/discussions/" + discussion.ID + "/messages",
	})
}

// List handles GET /v1/discussions
func (h *DiscussionHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	discussions, err := h.discussionService.List(r.Context(), accountID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, discussions, nil, nil)
}

// Get handles GET /v1/discussions/{id}
func (h *DiscussionHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	discussion, err := h.discussionService.Get(r.Context(), accountID, r.PathValue("id"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, discussion, map[string]string{
		"messages": "/v1/discussions/" + discussion.ID + "/messages",
	})
}

// Rename handles PATCH /v1/discussions/{id}
func (h *DiscussionHandler) Rename(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.RenameDiscussionRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	discussion, err := h.discussionService.Rename(r.Context(), accountID, r.PathValue("id"), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, discussion, map[string]string{
		"messages": "/v1/discussions/" + discussion.ID + "/messages",
	})
}

// SendMessage handles POST /v1/discussions/{id}/messages
func (h *DiscussionHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.SendMessageRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	message, err := h.discussionService.SendMessage(r.Context(), accountID, r.PathValue("id"), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, message, nil)
}

// ListMessages handles GET /v1/discussions/{id}/messages?limit=50&offset=0
func (h *DiscussionHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	messages, err := h.discussionService.ListMessages(r.Context(), accountID, r.PathValue("id"), limit, offset)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	pagination := &PaginationInfo{
		HasMore: limit > 0 && len(messages) == limit,
	}
	WriteCollection(w, http.StatusOK, messages, pagination, nil)
}

// EditMessage handles PATCH /v1/messages/{id}
func (h *DiscussionHandler) EditMessage(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.SendMessageRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	message, err := h.discussionService.EditMessage(r.Context(), accountID, r.PathValue("id"), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, message, nil)
}

// DeleteMessage handles DELETE /v1/messages/{id}
func (h *DiscussionHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.discussionService.DeleteMessage(r.Context(), accountID, r.PathValue("id")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// AddParticipant handles POST /v1/discussions/{id}/participants
func (h *DiscussionHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req AddParticipantRequest
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

	if err := h.discussionService.AddParticipant(r.Context(), accountID, r.PathValue("id"), req.AccountID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// RemoveParticipant handles DELETE /v1/discussions/{id}/participants/{accountID}
func (h *DiscussionHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.discussionService.RemoveParticipant(r.Context(), accountID, r.PathValue("id"), r.PathValue("accountID")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// Leave handles POST /v1/discussions/{id}/leave
func (h *DiscussionHandler) Leave(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.discussionService.Leave(r.Context(), accountID, r.PathValue("id")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// Delete handles DELETE /v1/discussions/{id}
func (h *DiscussionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.discussionService.Delete(r.Context(), accountID, r.PathValue("id")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
