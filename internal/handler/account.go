package handler

import (
	"net/http"
	"strconv"

	"github.com/tablefolk/api/internal/middleware"
	"github.com/tablefolk/api/internal/model"
	"github.com/tablefolk/api/internal/service"
)

// AccountHandler handles profile and account directory endpoints
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// GetProfile handles GET /v1/profile
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	account, err := h.accountService.GetProfile(r.Context(), accountID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, toAccountResponse(account, true), map[string]string{
		"self": "/v1/profile",
	})
}

// UpdateProfile handles PATCH /v1/profile
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.UpdateAccountRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	account, err := h.accountService.UpdateProfile(r.Context(), accountID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, toAccountResponse(account, true), map[string]string{
		"self": "/v1/profile",
	})
}

// GetByHandle handles GET /v1/accounts/{handle}
func (h *AccountHandler) GetByHandle(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetAccountID(r.Context())
	if viewerID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	handle := r.PathValue("handle")
	account, err := h.accountService.GetByHandle(r.Context(), handle)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	// Email stays private unless you are looking at yourself
	WriteData(w, http.StatusOK, toAccountResponse(account, account.ID == viewerID), nil)
}

// Search handles GET /v1/accounts/search?q=...
func (h *AccountHandler) Search(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.accountService.Search(r.Context(), q, limit)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, results, nil, nil)
}
