package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/finance-dash/backend/internal/apperrors"
	"github.com/finance-dash/backend/internal/currency"
	"github.com/finance-dash/backend/internal/model"
	"github.com/finance-dash/backend/internal/repository"
	"github.com/finance-dash/backend/internal/securestore"
)

// Provider names accepted by the settings endpoints.
const (
	ProviderAlphaVantage = "alphavantage"
	ProviderCoinranking  = "coinranking"
)

// providerSettingKeys maps a provider name to the setting its encrypted key
// is stored under.
var providerSettingKeys = map[string]string{
	ProviderAlphaVantage: model.SettingAlphaVantageKey,
	ProviderCoinranking:  model.SettingCoinrankingKey,
}

// SettingsService handles runtime-changeable application state: the display
// currency and the provider credentials.
type SettingsService struct {
	settingRepo *repository.SettingRepository
	registry    *currency.Registry
	secrets     *securestore.Store

	defaultDisplay string
	envKeys        map[string]string
}

// NewSettingsService creates a new SettingsService. envKeys carries the
// provider API keys from the environment, used when no stored key exists.
func NewSettingsService(
	settingRepo *repository.SettingRepository,
	registry *currency.Registry,
	secrets *securestore.Store,
	defaultDisplay string,
	envKeys map[string]string,
) *SettingsService {
	return &SettingsService{
		settingRepo:    settingRepo,
		registry:       registry,
		secrets:        secrets,
		defaultDisplay: defaultDisplay,
		envKeys:        envKeys,
	}
}

// DisplayCurrency returns the configured display currency. The default is
// persisted on first access so later reads and writes work on a stored row.
func (s *SettingsService) DisplayCurrency(ctx context.Context) (string, error) {
	setting, err := s.settingRepo.GetSetting(ctx, model.SettingDisplayCurrency)
	if errors.Is(err, apperrors.ErrSettingNotFound) {
		if _, err := s.settingRepo.SetSetting(ctx, model.SettingDisplayCurrency, s.defaultDisplay); err != nil {
			return "", err
		}
		return s.defaultDisplay, nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

// SetDisplayCurrency validates and persists a new display currency,
// returning the normalized code. Unsupported codes are rejected.
func (s *SettingsService) SetDisplayCurrency(ctx context.Context, code string) (string, error) {
	resolved, err := s.registry.Resolve(code)
	if err != nil {
		return "", err
	}

	if _, err := s.settingRepo.SetSetting(ctx, model.SettingDisplayCurrency, resolved); err != nil {
		return "", err
	}

	return resolved, nil
}

// SetProviderKey stores a provider API key encrypted at rest. Fails with
// ErrCredentialStoreDisabled when no fernet secret is configured.
func (s *SettingsService) SetProviderKey(ctx context.Context, provider, key string) error {
	settingKey, ok := providerSettingKeys[provider]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrUnknownProvider, provider)
	}

	encrypted, err := s.secrets.Encrypt(key)
	if err != nil {
		return err
	}

	if _, err := s.settingRepo.SetSetting(ctx, settingKey, encrypted); err != nil {
		return err
	}

	return nil
}

// ProviderKey resolves a provider API key: the stored encrypted key wins,
// the environment key is the fallback.
func (s *SettingsService) ProviderKey(ctx context.Context, provider string) (string, error) {
	settingKey, ok := providerSettingKeys[provider]
	if !ok {
		return "", fmt.Errorf("%w: %s", apperrors.ErrUnknownProvider, provider)
	}

	setting, err := s.settingRepo.GetSetting(ctx, settingKey)
	if err == nil && s.secrets.Enabled() {
		if key, err := s.secrets.Decrypt(setting.Value); err == nil && key != "" {
			return key, nil
		}
	}

	if key := s.envKeys[provider]; key != "" {
		return key, nil
	}

	if provider == ProviderAlphaVantage {
		return "", apperrors.ErrRateProviderNotConfigured
	}
	return "", apperrors.ErrQuoteProviderNotConfigured
}
