package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tablefolk/api/pkg/jwt"
)

func setupOAuthService(t *testing.T, info *GoogleTokenInfo, status int) (*OAuthService, *mockAccountRepo) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id_token") == "" {
			t.Error("expected id_token query parameter")
		}
		w.WriteHeader(status)
		if info != nil {
			json.NewEncoder(w).Encode(info)
		}
	}))
	t.Cleanup(server.Close)

	accountRepo := newMockAccountRepo()
	tokenRepo := newMockTokenRepo()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate test RSA key: %v", err)
	}
	tokenService := NewTokenService(TokenServiceConfig{
		JWTService: jwt.NewTestService(privateKey, "test-issuer", 15*time.Minute),
		TokenRepo:  tokenRepo,
	})

	svc := NewOAuthService(OAuthServiceConfig{
		Google:       GoogleConfig{ClientID: "client-123"},
		AccountRepo:  accountRepo,
		TokenService: tokenService,
		TokenInfoURL: server.URL,
	})
	return svc, accountRepo
}

func googleInfo() *GoogleTokenInfo {
	return &GoogleTokenInfo{
		Subject:       "google-sub-1",
		Audience:      "client-123",
		Email:         "Player@Example.com",
		EmailVerified: "true",
		Name:          "Sam Player",
	}
}

func TestOAuthService_SignInWithGoogle_NewAccount(t *testing.T) {
	svc, accountRepo := setupOAuthService(t, googleInfo(), http.StatusOK)

	result, err := svc.SignInWithGoogle(context.Background(), "valid-token")
	if err != nil {
		t.Fatalf("SignInWithGoogle failed: %v", err)
	}
	if !result.IsNewAccount {
		t.Error("expected a new account")
	}
	if result.Account.Email != "player@example.com" {
		t.Errorf("expected lowercased email, got %s", result.Account.Email)
	}
	if result.Account.Handle != "player" {
		t.Errorf("expected handle derived from the email, got %s", result.Account.Handle)
	}
	if !result.Account.EmailVerified {
		t.Error("expected verified email on federated signup")
	}
	if result.TokenPair.AccessToken == "" {
		t.Error("expected tokens issued")
	}

	identity, _ := accountRepo.GetIdentity(context.Background(), ProviderGoogle, "google-sub-1")
	if identity == nil {
		t.Fatal("expected a linked identity")
	}
	if identity.AccountID != result.Account.ID {
		t.Error("identity should link to the created account")
	}
}

func TestOAuthService_SignInWithGoogle_ExistingIdentity(t *testing.T) {
	svc, accountRepo := setupOAuthService(t, googleInfo(), http.StatusOK)

	first, err := svc.SignInWithGoogle(context.Background(), "valid-token")
	if err != nil {
		t.Fatalf("first sign-in failed: %v", err)
	}

	second, err := svc.SignInWithGoogle(context.Background(), "valid-token")
	if err != nil {
		t.Fatalf("second sign-in failed: %v", err)
	}
	if second.IsNewAccount {
		t.Error("expected an existing account on repeat sign-in")
	}
	if second.Account.ID != first.Account.ID {
		t.Error("expected the same account")
	}
	if len(accountRepo.accounts) != 1 {
		t.Errorf("expected 1 account, got %d", len(accountRepo.accounts))
	}
}

func TestOAuthService_SignInWithGoogle_LinksByEmail(t *testing.T) {
	svc, accountRepo := setupOAuthService(t, googleInfo(), http.StatusOK)
	existing := accountRepo.addAccount(t, "player", "player@example.com", "password123")

	result, err := svc.SignInWithGoogle(context.Background(), "valid-token")
	if err != nil {
		t.Fatalf("SignInWithGoogle failed: %v", err)
	}
	if result.IsNewAccount {
		t.Error("expected the existing account, not a new one")
	}
	if result.Account.ID != existing.ID {
		t.Error("expected sign-in into the email-matched account")
	}
	identity, _ := accountRepo.GetIdentity(context.Background(), ProviderGoogle, "google-sub-1")
	if identity == nil || identity.AccountID != existing.ID {
		t.Error("expected the identity linked to the existing account")
	}
}

func TestOAuthService_SignInWithGoogle_UnverifiedEmail(t *testing.T) {
	info := googleInfo()
	info.EmailVerified = "false"
	svc, _ := setupOAuthService(t, info, http.StatusOK)

	if _, err := svc.SignInWithGoogle(context.Background(), "valid-token"); err != ErrEmailNotVerified {
		t.Errorf("expected ErrEmailNotVerified, got %v", err)
	}
}

func TestOAuthService_SignInWithGoogle_WrongAudience(t *testing.T) {
	info := googleInfo()
	info.Audience = "some-other-client"
	svc, _ := setupOAuthService(t, info, http.StatusOK)

	if _, err := svc.SignInWithGoogle(context.Background(), "valid-token"); err != ErrInvalidIDToken {
		t.Errorf("expected ErrInvalidIDToken, got %v", err)
	}
}

func TestOAuthService_SignInWithGoogle_RejectedToken(t *testing.T) {
	svc, _ := setupOAuthService(t, nil, http.StatusBadRequest)

	if _, err := svc.SignInWithGoogle(context.Background(), "expired-token"); err != ErrInvalidIDToken {
		t.Errorf("expected ErrInvalidIDToken, got %v", err)
	}
	if _, err := svc.SignInWithGoogle(context.Background(), ""); err != ErrInvalidIDToken {
		t.Errorf("expected ErrInvalidIDToken for empty token, got %v", err)
	}
}

func TestOAuthService_DeriveHandle_Collision(t *testing.T) {
	svc, accountRepo := setupOAuthService(t, googleInfo(), http.StatusOK)
	accountRepo.addAccount(t, "player", "other@example.com", "password123")

	result, err := svc.SignInWithGoogle(context.Background(), "valid-token")
	if err != nil {
		t.Fatalf("SignInWithGoogle failed: %v", err)
	}
	if result.Account.Handle != "player1" {
		t.Errorf("expected collision-suffixed handle player1, got %s", result.Account.Handle)
	}
}
