package validation

import (
	"strings"

	"github.com/finance-dash/backend/internal/api/request"
)

// ValidateRefreshRate validates an exchange rate refresh request.
//
// Required fields:
//   - base: source currency code
//   - quote: target currency code, different from base
//
// Whether the codes are in the supported set is decided by the currency
// registry, not here.
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateRefreshRate(req request.RefreshRateRequest) error {
	errors := make(map[string]string)

	base := strings.TrimSpace(req.Base)
	quote := strings.TrimSpace(req.Quote)

	if base == "" {
		errors["base"] = "base is required"
	}
	if quote == "" {
		errors["quote"] = "quote is required"
	}
	if base != "" && strings.EqualFold(base, quote) {
		errors["quote"] = "quote must differ from base"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
