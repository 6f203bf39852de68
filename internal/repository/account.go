package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tablefolk/api/internal/database"
	"github.com/tablefolk/api/internal/model"
)

// AccountRepository handles account data access
type AccountRepository struct {
	db database.Database
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db database.Database) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	role := account.Role
	if role == "" {
		role = model.RolePlayer
	}

	query := `
		CREATE account CONTENT {
			handle: $handle,
			name: $name,
			email: $email,
			hash: IF $hash IS NOT NULL THEN $hash ELSE NONE END,
			bio: IF $bio IS NOT NULL THEN $bio ELSE NONE END,
			role: $role,
			home_location: IF $home_location IS NOT NULL THEN $home_location ELSE NONE END,
			email_verified: $email_verified,
			created_on: time::now(),
			updated_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"handle":         account.Handle,
		"name":           account.Name,
		"email":          account.Email,
		"hash":           ptrOrNil(account.Hash),
		"bio":            ptrOrNil(account.Bio),
		"role":           role,
		"home_location":  locationVar(account.HomeLocation),
		"email_verified": account.EmailVerified,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: handle or email already exists", database.ErrDuplicate)
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	account.ID = created.ID
	account.Role = role
	account.CreatedOn = created.CreatedOn
	account.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	query := `SELECT * FROM type::record($id)`
	return r.queryAccount(ctx, query, map[string]interface{}{"id": id})
}

// GetByEmail retrieves an account by email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `SELECT * FROM account WHERE email = $email LIMIT 1`
	return r.queryAccount(ctx, query, map[string]interface{}{"email": email})
}

// GetByHandle retrieves an account by its handle
func (r *AccountRepository) GetByHandle(ctx context.Context, handle string) (*model.Account, error) {
	query := `SELECT * FROM account WHERE handle = $handle LIMIT 1`
	return r.queryAccount(ctx, query, map[string]interface{}{"handle": handle})
}

func (r *AccountRepository) queryAccount(ctx context.Context, query string, vars map[string]interface{}) (*model.Account, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	account, err := parseAccountResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

// Update replaces the mutable profile fields of an account
func (r *AccountRepository) Update(ctx context.Context, account *model.Account) error {
	query := `
		UPDATE type::record($id) SET
			handle = $handle,
			name = $name,
			bio = $bio,
			home_location = $home_location,
			email_verified = $email_verified,
			updated_on = time::now()
	`

	vars := map[string]interface{}{
		"id":             account.ID,
		"handle":         account.Handle,
		"name":           account.Name,
		"bio":            ptrOrNil(account.Bio),
		"home_location":  locationVar(account.HomeLocation),
		"email_verified": account.EmailVerified,
	}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: handle already exists", database.ErrDuplicate)
		}
		return err
	}
	return nil
}

// UpdatePassword updates an account's password hash
func (r *AccountRepository) UpdatePassword(ctx context.Context, accountID, hash string) error {
	query := `UPDATE type::record($id) SET hash = $hash, updated_on = time::now()`
	vars := map[string]interface{}{
		"id":   accountID,
		"hash": hash,
	}
	return r.db.Execute(ctx, query, vars)
}

// SetRole updates an account's role
func (r *AccountRepository) SetRole(ctx context.Context, accountID string, role model.AccountRole) error {
	query := `UPDATE type::record($id) SET role = $role, updated_on = time::now()`
	vars := map[string]interface{}{
		"id":   accountID,
		"role": role,
	}
	return r.db.Execute(ctx, query, vars)
}

// SetLoginOn records the time of a successful login
func (r *AccountRepository) SetLoginOn(ctx context.Context, accountID string) error {
	query := `UPDATE type::record($id) SET login_on = time::now()`
	vars := map[string]interface{}{"id": accountID}
	return r.db.Execute(ctx, query, vars)
}

// Delete removes an account and its dependent records in one atomic batch.
// Relationships, identities, devices, notifications and refresh tokens go
// with the account. Authored messages are left in place so discussions
// keep their history; their author resolves to nothing once the account
// record is gone.
func (r *AccountRepository) Delete(ctx context.Context, accountID string) error {
	batch := database.NewAtomicBatch()
	vars := map[string]interface{}{"account": accountID}
	batch.Add(`DELETE relationship WHERE owner_id = $account OR other_id = $account`, vars)
	batch.Add(`DELETE identity WHERE account_id = $account`, vars)
	batch.Add(`DELETE device_token WHERE account_id = $account`, vars)
	batch.Add(`DELETE notification WHERE account_id = $account`, vars)
	batch.Add(`DELETE refresh_token WHERE account = type::record($account)`, vars)
	batch.Add(`DELETE type::record($account)`, vars)
	return batch.Execute(ctx, r.db)
}

// Search finds accounts whose handle or name contains the query string.
// Matching is case-insensitive on handle (handles are stored lowercase).
func (r *AccountRepository) Search(ctx context.Context, q string, limit int) ([]*model.AccountSummary, error) {
	query := `
		SELECT id, handle, name FROM account
		WHERE handle CONTAINS $q OR string::lowercase(name) CONTAINS $q
		ORDER BY handle ASC
		LIMIT $limit
	`
	vars := map[string]interface{}{
		"q":     q,
		"limit": limit,
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	summaries := make([]*model.AccountSummary, 0)
	for _, data := range unwrapList(results) {
		var s model.AccountSummary
		if err := decodeRecord(data, &s); err == nil && s.ID != "" {
			summaries = append(summaries, &s)
		}
	}
	return summaries, nil
}

// GetSummaries fetches display summaries for a set of account IDs
func (r *AccountRepository) GetSummaries(ctx context.Context, ids []string) (map[string]model.AccountSummary, error) {
	summaries := make(map[string]model.AccountSummary)
	if len(ids) == 0 {
		return summaries, nil
	}

	query := `SELECT id, handle, name FROM account WHERE <string>id IN $ids`
	vars := map[string]interface{}{"ids": ids}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	for _, data := range unwrapList(results) {
		var s model.AccountSummary
		if err := decodeRecord(data, &s); err == nil && s.ID != "" {
			summaries[s.ID] = s
		}
	}
	return summaries, nil
}

// CreateIdentity links a federated identity to an account
func (r *AccountRepository) CreateIdentity(ctx context.Context, identity *model.Identity) error {
	query := `
		CREATE identity CONTENT {
			account_id: $account_id,
			provider: $provider,
			provider_user_id: $provider_user_id,
			provider_email: IF $provider_email IS NOT NULL THEN $provider_email ELSE NONE END,
			created_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"account_id":       identity.AccountID,
		"provider":         identity.Provider,
		"provider_user_id": identity.ProviderUserID,
		"provider_email":   ptrOrNil(identity.ProviderEmail),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: identity already linked", database.ErrDuplicate)
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}
	identity.ID = created.ID
	identity.CreatedOn = created.CreatedOn
	return nil
}

// GetIdentity finds a linked identity by provider and provider user ID
func (r *AccountRepository) GetIdentity(ctx context.Context, provider, providerUserID string) (*model.Identity, error) {
	query := `
		SELECT * FROM identity
		WHERE provider = $provider AND provider_user_id = $provider_user_id
		LIMIT 1
	`
	vars := map[string]interface{}{
		"provider":         provider,
		"provider_user_id": providerUserID,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	data, err := unwrapOne(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var identity model.Identity
	if err := decodeRecord(data, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func parseAccountResult(result interface{}) (*model.Account, error) {
	data, err := unwrapOne(result)
	if err != nil {
		return nil, err
	}

	// Hash carries json:"-" so it has to be lifted out before decoding
	var hash *string
	if h, ok := data["hash"].(string); ok {
		hash = &h
	}

	var account model.Account
	if err := decodeRecord(data, &account); err != nil {
		return nil, err
	}
	account.Hash = hash
	return &account, nil
}

// locationVar converts an optional location into a query variable
func locationVar(loc *model.Location) interface{} {
	if loc == nil {
		return nil
	}
	return map[string]interface{}{
		"lat":   loc.Lat,
		"lng":   loc.Lng,
		"label": loc.Label,
	}
}
