package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tablefolk/api/internal/database"
	"github.com/tablefolk/api/internal/model"
)

// DeviceTokenRepository handles device push token data access
type DeviceTokenRepository struct {
	db database.Database
}

// NewDeviceTokenRepository creates a new device token repository
func NewDeviceTokenRepository(db database.Database) *DeviceTokenRepository {
	return &DeviceTokenRepository{db: db}
}

// Create creates a new device token
func (r *DeviceTokenRepository) Create(ctx context.Context, token *model.DeviceToken) error {
	query := `
		CREATE device_token CONTENT {
			account_id: $account_id,
			platform: $platform,
			token: $device_token,
			name: IF $name IS NOT NULL THEN $name ELSE NONE END,
			active: true,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"account_id":   token.AccountID,
		"platform":     string(token.Platform),
		"device_token": token.Token,
		"name":         nilIfEmpty(token.Name),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: device token already registered", database.ErrDuplicate)
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}
	token.ID = created.ID
	token.Active = true
	token.CreatedOn = created.CreatedOn
	token.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByAccountID retrieves an account's active device tokens
func (r *DeviceTokenRepository) GetByAccountID(ctx context.Context, accountID string) ([]*model.DeviceToken, error) {
	query := `SELECT * FROM device_token WHERE account_id = $account_id AND active = true ORDER BY created_on DESC`
	vars := map[string]interface{}{"account_id": accountID}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	tokens := make([]*model.DeviceToken, 0)
	for _, data := range unwrapList(results) {
		var t model.DeviceToken
		if err := decodeRecord(data, &t); err == nil && t.ID != "" {
			item := t
			tokens = append(tokens, &item)
		}
	}
	return tokens, nil
}

// GetByToken retrieves a device token by its token value
func (r *DeviceTokenRepository) GetByToken(ctx context.Context, token string) (*model.DeviceToken, error) {
	query := `SELECT * FROM device_token WHERE token = $device_token LIMIT 1`
	return r.queryDeviceToken(ctx, query, map[string]interface{}{"device_token": token})
}

// GetByID retrieves a device token by ID
func (r *DeviceTokenRepository) GetByID(ctx context.Context, id string) (*model.DeviceToken, error) {
	query := `SELECT * FROM type::record($id)`
	return r.queryDeviceToken(ctx, query, map[string]interface{}{"id": id})
}

func (r *DeviceTokenRepository) queryDeviceToken(ctx context.Context, query string, vars map[string]interface{}) (*model.DeviceToken, error) {
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

	var t model.DeviceToken
	if err := decodeRecord(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete deletes a device token by ID
func (r *DeviceTokenRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE type::record($id)`
	return r.db.Execute(ctx, query, map[string]interface{}{"id": id})
}

// DeleteByToken deletes a device token by its token value
func (r *DeviceTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	query := `DELETE device_token WHERE token = $device_token`
	return r.db.Execute(ctx, query, map[string]interface{}{"device_token": token})
}

// MarkInactive marks a device token inactive after a failed push
func (r *DeviceTokenRepository) MarkInactive(ctx context.Context, token string) error {
	query := `UPDATE device_token SET active = false, updated_on = time::now() WHERE token = $device_token`
	return r.db.Execute(ctx, query, map[string]interface{}{"device_token": token})
}

// UpdateLastUsed stamps last_used after a successful push
func (r *DeviceTokenRepository) UpdateLastUsed(ctx context.Context, id string) error {
	query := `UPDATE type::record($id) SET last_used = time::now(), updated_on = time::now()`
	return r.db.Execute(ctx, query, map[string]interface{}{"id": id})
}

// CountByAccountID counts an account's active device tokens
func (r *DeviceTokenRepository) CountByAccountID(ctx context.Context, accountID string) (int, error) {
	query := `SELECT count() AS count FROM device_token WHERE account_id = $account_id AND active = true GROUP ALL`
	vars := map[string]interface{}{"account_id": accountID}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return extractCount(result), nil
}

// UpsertByToken creates or re-activates a device token. Re-registration
// of a known token moves it to the registering account.
func (r *DeviceTokenRepository) UpsertByToken(ctx context.Context, token *model.DeviceToken) error {
	existing, err := r.GetByToken(ctx, token.Token)
	if err != nil {
		return err
	}

	if existing != nil {
		query := `UPDATE type::record($id) SET
			account_id = $account_id,
			platform = $platform,
			name = IF $name IS NOT NULL THEN $name ELSE NONE END,
			active = true,
			updated_on = time::now()`
		vars := map[string]interface{}{
			"id":         existing.ID,
			"account_id": token.AccountID,
			"platform":   string(token.Platform),
			"name":       nilIfEmpty(token.Name),
		}
		if err := r.db.Execute(ctx, query, vars); err != nil {
			return err
		}
		token.ID = existing.ID
		token.Active = true
		token.CreatedOn = existing.CreatedOn
		return nil
	}

	return r.Create(ctx, token)
}
