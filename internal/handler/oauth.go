package handler

import (
	"net/http"

	"github.com/tablefolk/api/internal/model"
	"github.com/tablefolk/api/internal/service"
)

// OAuthHandler handles federated sign-in endpoints
type OAuthHandler struct {
	oauthService *service.OAuthService
}

// NewOAuthHandler creates a new OAuth handler
func NewOAuthHandler(oauthService *service.OAuthService) *OAuthHandler {
	return &OAuthHandler{
		oauthService: oauthService,
	}
}

// GoogleSignInRequest carries the ID token the mobile client obtained
type GoogleSignInRequest struct {
	IDToken string `json:"id_token"`
}

// OAuthSuccessResponse represents a successful federated sign-in
type OAuthSuccessResponse struct {
	Account      AccountResponse `json:"account"`
	Token        TokenResponse   `json:"token"`
	IsNewAccount bool            `json:"is_new_account"`
}

// Google handles POST /v1/auth/oauth/google
func (h *OAuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req GoogleSignInRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if req.IDToken == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "id_token", Message: "id_token is required"},
		}))
		return
	}

	result, err := h.oauthService.SignInWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	status := http.StatusOK
	if result.IsNewAccount {
		status = http.StatusCreated
	}

	WriteData(w, status, OAuthSuccessResponse{
		Account:      toAccountResponse(result.Account, true),
		Token:        toTokenResponse(result.TokenPair),
		IsNewAccount: result.IsNewAccount,
	}, map[string]string{
		"self": "/v1/auth/me",
	})
}
