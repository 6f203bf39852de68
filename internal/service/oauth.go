package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tablefolk/api/internal/model"
)

// Provider names for linked identities
const ProviderGoogle = "google"

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleConfig holds Google sign-in settings
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
}

// OAuthService verifies Google ID tokens and signs accounts in or up.
// The mobile client obtains the ID token itself; the server only checks
// it against Google's tokeninfo endpoint and matches the audience.
type OAuthService struct {
	config       GoogleConfig
	accountRepo  AccountRepository
	tokenService *TokenService
	httpClient   *http.Client
	tokenInfoURL string
}

// OAuthServiceConfig holds configuration for the OAuth service
type OAuthServiceConfig struct {
	Google       GoogleConfig
	AccountRepo  AccountRepository
	TokenService *TokenService
	TokenInfoURL string // Defaults to Google's tokeninfo endpoint
}

// NewOAuthService creates a new OAuth service
func NewOAuthService(cfg OAuthServiceConfig) *OAuthService {
	infoURL := cfg.TokenInfoURL
	if infoURL == "" {
		infoURL = googleTokenInfoURL
	}
	return &OAuthService{
		config:       cfg.Google,
		accountRepo:  cfg.AccountRepo,
		tokenService: cfg.TokenService,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokenInfoURL: infoURL,
	}
}

// GoogleTokenInfo is the tokeninfo endpoint's view of an ID token
type GoogleTokenInfo struct {
	Subject       string `json:"sub"`
	Audience      string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"` // "true"/"false" as strings
	Name          string `json:"name"`
	Expiry        string `json:"exp"`
}

// OAuthResult represents a successful federated sign-in
type OAuthResult struct {
	Account      *model.Account
	TokenPair    *TokenPair
	IsNewAccount bool
}

// SignInWithGoogle validates a Google ID token and signs the matching
// account in, creating one on first sign-in.
func (s *OAuthService) SignInWithGoogle(ctx context.Context, idToken string) (*OAuthResult, error) {
	info, err := s.verifyGoogleIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	if info.EmailVerified != "true" {
		return nil, ErrEmailNotVerified
	}

	// Existing linked identity: straight login
	identity, err := s.accountRepo.GetIdentity(ctx, ProviderGoogle, info.Subject)
	if err != nil {
		return nil, err
	}
	if identity != nil {
		account, err := s.accountRepo.GetByID(ctx, identity.AccountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}
		tokenPair, err := s.tokenService.GenerateTokenPair(ctx, account)
		if err != nil {
			return nil, err
		}
		_ = s.accountRepo.SetLoginOn(ctx, account.ID)
		return &OAuthResult{Account: account, TokenPair: tokenPair}, nil
	}

	// Same email already registered: link the identity to that account
	email := strings.ToLower(info.Email)
	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	isNew := false
	if account == nil {
		handle, err := s.deriveHandle(ctx, email)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(info.Name)
		if name == "" {
			name = handle
		}
		account = &model.Account{
			Handle:        handle,
			Name:          name,
			Email:         email,
			Role:          model.RolePlayer,
			EmailVerified: true,
		}
		if err := s.accountRepo.Create(ctx, account); err != nil {
			return nil, err
		}
		isNew = true
	}

	if err := s.accountRepo.CreateIdentity(ctx, &model.Identity{
		AccountID:      account.ID,
		Provider:       ProviderGoogle,
		ProviderUserID: info.Subject,
		ProviderEmail:  stringPtr(email),
	}); err != nil {
		return nil, err
	}

	tokenPair, err := s.tokenService.GenerateTokenPair(ctx, account)
	if err != nil {
		return nil, err
	}
	_ = s.accountRepo.SetLoginOn(ctx, account.ID)

	return &OAuthResult{
		Account:      account,
		TokenPair:    tokenPair,
		IsNewAccount: isNew,
	}, nil
}

// verifyGoogleIDToken checks the token with Google and matches the audience
func (s *OAuthService) verifyGoogleIDToken(ctx context.Context, idToken string) (*GoogleTokenInfo, error) {
	if idToken == "" {
		return nil, ErrInvalidIDToken
	}

	reqURL := s.tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderError, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidIDToken
	}

	var info GoogleTokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, ErrInvalidIDToken
	}

	if s.config.ClientID != "" && info.Audience != s.config.ClientID {
		return nil, ErrInvalidIDToken
	}
	if info.Subject == "" || info.Email == "" {
		return nil, ErrInvalidIDToken
	}

	return &info, nil
}

// deriveHandle builds a free handle from the email's local part
func (s *OAuthService) deriveHandle(ctx context.Context, email string) (string, error) {
	base := email
	if at := strings.Index(email, "@"); at > 0 {
		base = email[:at]
	}

	cleaned := make([]rune, 0, len(base))
	for _, r := range strings.ToLower(base) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			cleaned = append(cleaned, r)
		}
	}
	candidate := string(cleaned)
	if len(candidate) < model.MinHandleLength {
		candidate = candidate + "player"
	}
	if len(candidate) > model.MaxHandleLength {
		candidate = candidate[:model.MaxHandleLength]
	}

	// Probe for a free handle, suffixing a counter on collision
	for i := 0; i < 50; i++ {
		probe := candidate
		if i > 0 {
			suffix := fmt.Sprintf("%d", i)
			if len(probe)+len(suffix) > model.MaxHandleLength {
				probe = probe[:model.MaxHandleLength-len(suffix)]
			}
			probe += suffix
		}
		existing, err := s.accountRepo.GetByHandle(ctx, probe)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return probe, nil
		}
	}
	return "", ErrHandleTaken
}
