package apperrors

import (
	"errors"
	"fmt"
)

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrTransactionNotFound indicates that a transaction with the given natural key does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrFxRateNotFound indicates no cached rate for a specific currency pair.
	ErrFxRateNotFound = errors.New("exchange rate for currency pair not found")

	// ErrQuoteNotFound indicates that no quote has been recorded for a symbol.
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrSettingNotFound indicates that a setting key has no stored value.
	ErrSettingNotFound = errors.New("setting not found")

	// ErrSheetNotConfigured indicates that an import was requested for a sheet
	// the configuration does not describe.
	ErrSheetNotConfigured = errors.New("sheet not configured")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrImportInProgress indicates that an import run was rejected because
	// another run holds the importer. Callers should retry once it completes.
	ErrImportInProgress = errors.New("import already in progress")

	// ErrDuplicateKey indicates a natural-key uniqueness violation surfaced by
	// the store itself rather than the upsert path. It signals an integrity
	// problem, not a normal re-import.
	ErrDuplicateKey = errors.New("duplicate natural key")

	// ErrInvalidSymbol indicates that a quote symbol or coin ID parameter is malformed.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrInvalidLimit indicates that a limit parameter is not a non-negative integer.
	ErrInvalidLimit = errors.New("limit must be a non-negative integer")
)

// Provider and credential errors represent failures of the external market-data
// integrations and their configuration.
var (
	// ErrRateProviderNotConfigured indicates that no API key is available for
	// the exchange-rate provider, neither stored nor from the environment.
	ErrRateProviderNotConfigured = errors.New("exchange rate provider not configured")

	// ErrQuoteProviderNotConfigured indicates that no API key is available for
	// the quote provider, neither stored nor from the environment.
	ErrQuoteProviderNotConfigured = errors.New("quote provider not configured")

	// ErrCredentialStoreDisabled indicates that encrypted key storage was
	// requested but no fernet secret is configured.
	ErrCredentialStoreDisabled = errors.New("credential store disabled: no fernet secret configured")

	ErrUnknownProvider = errors.New("unknown provider")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. These errors indicate that an operation failed, but not due
// to missing entities or validation issues.
var (
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveRates        = errors.New("failed to retrieve exchange rates")
	ErrFailedToRetrieveQuotes       = errors.New("failed to retrieve quotes")
	ErrFailedToRetrieveSetting      = errors.New("failed to retrieve setting")

	// ErrFailedToGetVersionInfo indicates the system version lookup failed.
	ErrFailedToGetVersionInfo = errors.New("failed to get version information")
)

// UnsupportedCurrencyError indicates a currency token that survives alias
// resolution but is not in the configured supported set.
type UnsupportedCurrencyError struct {
	Value string
}

func (e *UnsupportedCurrencyError) Error() string {
	return fmt.Sprintf("unsupported currency %q", e.Value)
}

// FxRateUnavailableError indicates that a conversion needed a rate the cache
// could not supply: either no entry exists for the pair, or the entry is stale
// and the stale policy forbids using it.
type FxRateUnavailableError struct {
	Base  string
	Quote string
	Stale bool
}

func (e *FxRateUnavailableError) Error() string {
	if e.Stale {
		return fmt.Sprintf("exchange rate %s/%s is stale", e.Base, e.Quote)
	}
	return fmt.Sprintf("no exchange rate available for %s/%s", e.Base, e.Quote)
}

// SheetReadError indicates that a whole sheet could not be read from the
// workbook. It aborts the import run; row-level problems never produce it.
type SheetReadError struct {
	Sheet  string
	Reason string
}

func (e *SheetReadError) Error() string {
	return fmt.Sprintf("failed to read sheet %q: %s", e.Sheet, e.Reason)
}
