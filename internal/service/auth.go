package service

import (
	"context"
	"strings"

	"github.com/tablefolk/api/internal/model"
	"golang.org/x/crypto/bcrypt"
)

const (
	// bcrypt cost factor (10-14 recommended for production)
	bcryptCost = 12

	// Password constraints
	minPasswordLength = 8
	maxPasswordLength = 128
)

// AccountRepository defines the interface for account storage
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByHandle(ctx context.Context, handle string) (*model.Account, error)
	Update(ctx context.Context, account *model.Account) error
	UpdatePassword(ctx context.Context, accountID, hash string) error
	SetRole(ctx context.Context, accountID string, role model.AccountRole) error
	SetLoginOn(ctx context.Context, accountID string) error
	Delete(ctx context.Context, accountID string) error
	Search(ctx context.Context, q string, limit int) ([]*model.AccountSummary, error)
	GetSummaries(ctx context.Context, ids []string) (map[string]model.AccountSummary, error)
	CreateIdentity(ctx context.Context, identity *model.Identity) error
	GetIdentity(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// AuthService handles registration, login and credential management
type AuthService struct {
	accountRepo  AccountRepository
	tokenService *TokenService
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	AccountRepo  AccountRepository
	TokenService *TokenService
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	return &AuthService{
		accountRepo:  cfg.AccountRepo,
		tokenService: cfg.TokenService,
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Handle   string
	Name     string
	Email    string
	Password string
}

// RegisterResult represents a successful registration
type RegisterResult struct {
	Account   *model.Account
	TokenPair *TokenPair
}

// Register creates a new account with email/password
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	// Handles are stored lowercase
	handle := strings.ToLower(strings.TrimSpace(req.Handle))
	if fe := model.ValidateHandle(handle); fe != nil {
		return nil, ErrInvalidHandle
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = handle
	}

	existing, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	taken, err := s.accountRepo.GetByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, ErrHandleTaken
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Handle:        handle,
		Name:          name,
		Email:         email,
		Hash:          &hash,
		Role:          model.RolePlayer,
		EmailVerified: false,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	tokenPair, err := s.tokenService.GenerateTokenPair(ctx, account)
	if err != nil {
		return nil, err
	}

	return &RegisterResult{
		Account:   account,
		TokenPair: tokenPair,
	}, nil
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResult represents a successful login
type LoginResult struct {
	Account   *model.Account
	TokenPair *TokenPair
}

// Login authenticates an account with email/password
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidCredentials
	}

	// Federated-only accounts have no password
	if account.Hash == nil || *account.Hash == "" {
		return nil, ErrInvalidCredentials
	}

	if !checkPassword(req.Password, *account.Hash) {
		return nil, ErrInvalidCredentials
	}

	tokenPair, err := s.tokenService.GenerateTokenPair(ctx, account)
	if err != nil {
		return nil, err
	}

	_ = s.accountRepo.SetLoginOn(ctx, account.ID)

	return &LoginResult{
		Account:   account,
		TokenPair: tokenPair,
	}, nil
}

// GetAccountByID retrieves an account by ID
func (s *AuthService) GetAccountByID(ctx context.Context, accountID string) (*model.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// RefreshTokens validates a refresh token and issues new tokens
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	tokenHash := hashToken(refreshToken)
	storedToken, err := s.tokenService.tokenRepo.GetRefreshTokenByHash(ctx, tokenHash)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if storedToken == nil {
		return nil, ErrInvalidRefreshToken
	}

	account, err := s.accountRepo.GetByID(ctx, storedToken.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	return s.tokenService.RefreshTokens(ctx, refreshToken, account)
}

// Logout revokes all of an account's refresh tokens
func (s *AuthService) Logout(ctx context.Context, accountID string) error {
	return s.tokenService.RevokeAllAccountTokens(ctx, accountID)
}

// ValidateAccessToken validates an access token and returns the claims
func (s *AuthService) ValidateAccessToken(token string) (*model.TokenClaims, error) {
	claims, err := s.tokenService.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	return &model.TokenClaims{
		AccountID: claims.UserID,
		Email:     claims.Email,
		Handle:    claims.Handle,
	}, nil
}

// ChangePassword changes an account's password and revokes all sessions
func (s *AuthService) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}

	if account.Hash != nil && *account.Hash != "" {
		if !checkPassword(oldPassword, *account.Hash) {
			return ErrInvalidCredentials
		}
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.accountRepo.UpdatePassword(ctx, accountID, hash); err != nil {
		return err
	}

	return s.tokenService.RevokeAllAccountTokens(ctx, accountID)
}

// DeleteAccount removes an account after verifying the password.
// Federated-only accounts skip the password check.
func (s *AuthService) DeleteAccount(ctx context.Context, accountID, password string) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}

	if account.Hash != nil && *account.Hash != "" {
		if !checkPassword(password, *account.Hash) {
			return ErrInvalidCredentials
		}
	}

	return s.accountRepo.Delete(ctx, accountID)
}

// Helper functions

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > maxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

func isValidEmail(email string) bool {
	if email == "" {
		return false
	}
	if len(email) > 254 {
		return false
	}
	atIndex := strings.Index(email, "@")
	if atIndex < 1 {
		return false
	}
	dotIndex := strings.LastIndex(email, ".")
	if dotIndex < atIndex+2 {
		return false
	}
	if dotIndex >= len(email)-1 {
		return false
	}
	return true
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
