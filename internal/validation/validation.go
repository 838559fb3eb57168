package validation

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/finance-dash/backend/internal/apperrors"
)

// Common validation errors
var (
	ErrInvalidUUID = fmt.Errorf("invalid UUID format")
)

// symbolPattern covers exchange tickers such as AAPL, BRK.B or VWRL.SW.
var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.\-]{0,11}$`)

// coinIDPattern covers Coinranking coin identifiers such as Qwsogvtv82FCd.
var coinIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ValidateSymbol checks an equity ticker symbol.
func ValidateSymbol(symbol string) error {
	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidSymbol, symbol)
	}
	return nil
}

// ValidateCoinID checks a Coinranking coin identifier.
func ValidateCoinID(id string) error {
	if !coinIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidSymbol, id)
	}
	return nil
}

// ValidateLimit checks an optional result cap. Zero means unlimited.
func ValidateLimit(limit int) error {
	if limit < 0 {
		return fmt.Errorf("%w: %d", apperrors.ErrInvalidLimit, limit)
	}
	return nil
}
