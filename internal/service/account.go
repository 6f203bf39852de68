package service

import (
	"context"
	"strings"

	"github.com/tablefolk/api/internal/model"
)

// AccountService handles profile and account directory operations
type AccountService struct {
	accountRepo AccountRepository
}

// AccountServiceConfig holds configuration for the account service
type AccountServiceConfig struct {
	AccountRepo AccountRepository
}

// NewAccountService creates a new account service
func NewAccountService(cfg AccountServiceConfig) *AccountService {
	return &AccountService{accountRepo: cfg.AccountRepo}
}

// GetProfile retrieves an account's full profile
func (s *AccountService) GetProfile(ctx context.Context, accountID string) (*model.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// GetByHandle retrieves an account by its handle
func (s *AccountService) GetByHandle(ctx context.Context, handle string) (*model.Account, error) {
	account, err := s.accountRepo.GetByHandle(ctx, strings.ToLower(strings.TrimSpace(handle)))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// UpdateProfile applies a partial profile update. A changed handle must
// still be free.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID string, req model.UpdateAccountRequest) (*model.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	if req.Handle != nil {
		handle := strings.ToLower(strings.TrimSpace(*req.Handle))
		if handle != account.Handle {
			if fe := model.ValidateHandle(handle); fe != nil {
				return nil, ErrInvalidHandle
			}
			taken, err := s.accountRepo.GetByHandle(ctx, handle)
			if err != nil {
				return nil, err
			}
			if taken != nil {
				return nil, ErrHandleTaken
			}
			account.Handle = handle
		}
	}
	if req.Name != nil {
		account.Name = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		bio := *req.Bio
		if bio == "" {
			account.Bio = nil
		} else {
			account.Bio = &bio
		}
	}
	if req.HomeLocation != nil {
		loc := *req.HomeLocation
		account.HomeLocation = &loc
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Search finds accounts by handle or name fragment. The query is
// normalized to lowercase; short queries return nothing.
func (s *AccountService) Search(ctx context.Context, q string, limit int) ([]*model.AccountSummary, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if len(q) < 2 {
		return []*model.AccountSummary{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.accountRepo.Search(ctx, q, limit)
}

// SetRole changes an account's role. Caller authorization (admin, or a
// self-service upgrade to shopowner/spacerenter) is checked by handlers.
func (s *AccountService) SetRole(ctx context.Context, accountID string, role model.AccountRole) error {
	if !role.IsValid() {
		return ErrRoleNotPermitted
	}
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotFound
	}
	return s.accountRepo.SetRole(ctx, accountID, role)
}

// Summaries resolves display summaries for a set of account IDs
func (s *AccountService) Summaries(ctx context.Context, ids []string) (map[string]model.AccountSummary, error) {
	return s.accountRepo.GetSummaries(ctx, ids)
}
