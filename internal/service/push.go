package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tablefolk/api/internal/model"
)

// PushNotification represents a push notification to send
type PushNotification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Badge *int              `json:"badge,omitempty"`
	Sound string            `json:"sound,omitempty"`
}

// PushResult represents the result of sending to one device
type PushResult struct {
	Success      bool   `json:"success"`
	DeviceToken  string `json:"device_token"`
	MessageID    string `json:"message_id,omitempty"`
	Error        string `json:"error,omitempty"`
	ShouldRetry  bool   `json:"should_retry"`
	TokenInvalid bool   `json:"token_invalid"`
}

// PushSender delivers one notification to one device. The transport is
// pluggable; the default logs instead of sending.
type PushSender interface {
	Send(ctx context.Context, device *model.DeviceToken, notification *PushNotification) PushResult
}

// DeviceTokenRepository defines the interface for device token storage
type DeviceTokenRepository interface {
	Create(ctx context.Context, token *model.DeviceToken) error
	GetByAccountID(ctx context.Context, accountID string) ([]*model.DeviceToken, error)
	GetByToken(ctx context.Context, token string) (*model.DeviceToken, error)
	GetByID(ctx context.Context, id string) (*model.DeviceToken, error)
	Delete(ctx context.Context, id string) error
	MarkInactive(ctx context.Context, token string) error
	UpdateLastUsed(ctx context.Context, id string) error
	CountByAccountID(ctx context.Context, accountID string) (int, error)
	UpsertByToken(ctx context.Context, token *model.DeviceToken) error
}

// PushService sends push notifications and manages registered devices
type PushService struct {
	deviceRepo DeviceTokenRepository
	sender     PushSender
	enabled    bool
	logger     *slog.Logger
}

// PushServiceConfig holds configuration for the push service
type PushServiceConfig struct {
	DeviceRepo      DeviceTokenRepository
	Sender          PushSender // nil falls back to a logging sender
	Enabled         bool
	CredentialsPath string
	Logger          *slog.Logger
}

// NewPushService creates a new push service
func NewPushService(cfg PushServiceConfig) *PushService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sender := cfg.Sender
	if sender == nil {
		sender = &logSender{logger: logger}
	}
	return &PushService{
		deviceRepo: cfg.DeviceRepo,
		sender:     sender,
		enabled:    cfg.Enabled,
		logger:     logger,
	}
}

// IsEnabled returns whether push notifications are enabled
func (s *PushService) IsEnabled() bool {
	return s.enabled
}

// RegisterDevice registers or re-activates a device token for an account.
// Each account can hold a limited number of active devices.
func (s *PushService) RegisterDevice(ctx context.Context, accountID string, req model.RegisterDeviceRequest) (*model.DeviceToken, error) {
	existing, err := s.deviceRepo.GetByToken(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	// Only brand-new tokens count against the device limit
	if existing == nil {
		count, err := s.deviceRepo.CountByAccountID(ctx, accountID)
		if err != nil {
			return nil, err
		}
		if count >= model.MaxDevicesPerAccount {
			return nil, ErrDeviceLimitReached
		}
	}

	device := &model.DeviceToken{
		AccountID: accountID,
		Platform:  req.Platform,
		Token:     req.Token,
		Name:      req.Name,
	}
	if err := s.deviceRepo.UpsertByToken(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}

// ListDevices lists an account's active devices
func (s *PushService) ListDevices(ctx context.Context, accountID string) ([]*model.DeviceToken, error) {
	return s.deviceRepo.GetByAccountID(ctx, accountID)
}

// UnregisterDevice removes one of the account's devices
func (s *PushService) UnregisterDevice(ctx context.Context, accountID, deviceID string) error {
	device, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}
	if device == nil {
		return ErrDeviceNotFound
	}
	if device.AccountID != accountID {
		return ErrNotDeviceOwner
	}
	return s.deviceRepo.Delete(ctx, deviceID)
}

// SendToAccount sends a push notification to all of an account's devices
func (s *PushService) SendToAccount(ctx context.Context, accountID string, notification *PushNotification) ([]PushResult, error) {
	if !s.enabled {
		return nil, ErrPushDisabled
	}
	if s.deviceRepo == nil {
		return nil, errors.New("device repository not configured")
	}

	devices, err := s.deviceRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("getting devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, ErrNoDeviceTokens
	}

	results := make([]PushResult, 0, len(devices))
	for _, device := range devices {
		result := s.sender.Send(ctx, device, notification)
		results = append(results, result)

		if result.TokenInvalid {
			if err := s.deviceRepo.MarkInactive(ctx, device.Token); err != nil {
				s.logger.Warn("failed to mark token inactive", "error", err)
			}
		}
		if result.Success {
			if err := s.deviceRepo.UpdateLastUsed(ctx, device.ID); err != nil {
				s.logger.Warn("failed to update last used", "error", err)
			}
		}
	}
	return results, nil
}

// SendToAccounts sends a notification to several accounts. Accounts
// without devices are skipped silently.
func (s *PushService) SendToAccounts(ctx context.Context, accountIDs []string, notification *PushNotification) (map[string][]PushResult, error) {
	if !s.enabled {
		return nil, ErrPushDisabled
	}

	results := make(map[string][]PushResult)
	for _, accountID := range accountIDs {
		accountResults, err := s.SendToAccount(ctx, accountID, notification)
		if err != nil {
			if !errors.Is(err, ErrNoDeviceTokens) {
				s.logger.Warn("push send failed", "account_id", accountID, "error", err)
			}
			continue
		}
		results[accountID] = accountResults
	}
	return results, nil
}

// logSender is the default PushSender: it logs what would have been sent.
// A real FCM/APNs transport plugs in through PushServiceConfig.Sender.
type logSender struct {
	logger *slog.Logger
}

func (l *logSender) Send(ctx context.Context, device *model.DeviceToken, notification *PushNotification) PushResult {
	l.logger.Info("push (log transport)",
		"platform", device.Platform,
		"token", maskToken(device.Token),
		"title", notification.Title)
	return PushResult{
		Success:     true,
		DeviceToken: device.Token,
		MessageID:   fmt.Sprintf("log_%d", time.Now().UnixNano()),
	}
}

// maskToken masks a device token for logging
func maskToken(token string) string {
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
