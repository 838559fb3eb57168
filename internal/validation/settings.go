package validation

import (
	"fmt"
	"strings"

	"github.com/finance-dash/backend/internal/api/request"
)

// ValidProvider contains the provider names that accept stored API keys.
var ValidProvider = map[string]bool{
	"alphavantage": true, "coinranking": true,
}

// ValidateUpdateDisplayCurrency validates a display currency change request.
// The code itself is resolved against the supported set by the settings
// service.
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateUpdateDisplayCurrency(req request.UpdateDisplayCurrencyRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Currency) == "" {
		errors["currency"] = "currency is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateSetProviderKey validates a provider key storage request.
//
// Required fields:
//   - provider: one of: alphavantage, coinranking
//   - key: the API key to store
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateSetProviderKey(req request.SetProviderKeyRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Provider) == "" {
		errors["provider"] = "provider is required"
	} else if !ValidProvider[req.Provider] {
		errors["provider"] = fmt.Sprintf("unknown provider: %s", req.Provider)
	}

	if strings.TrimSpace(req.Key) == "" {
		errors["key"] = "key is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
