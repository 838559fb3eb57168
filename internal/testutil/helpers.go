package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/finance-dash/backend/internal/config"
	"github.com/finance-dash/backend/internal/currency"
	"github.com/finance-dash/backend/internal/fxrate"
	"github.com/finance-dash/backend/internal/normalize"
	"github.com/finance-dash/backend/internal/repository"
	"github.com/finance-dash/backend/internal/securestore"
	"github.com/finance-dash/backend/internal/service"
	"github.com/finance-dash/backend/internal/workbook"
)

// DefaultCurrencies are the supported codes test registries are built with.
var DefaultCurrencies = []string{"CHF", "EUR", "USD", "GBP"}

// DefaultAliases map legacy currency tokens, mirroring the default config.
var DefaultAliases = map[string]string{"SFR": "CHF"}

// NewTestRegistry builds a currency registry with the default supported set.
func NewTestRegistry(t *testing.T) *currency.Registry {
	t.Helper()

	return currency.NewRegistry(DefaultCurrencies, DefaultAliases)
}

// NewTestSheets returns the sheet conventions used by import tests: one
// generic sheet and one crypto sheet without a currency column.
func NewTestSheets() []config.SheetConfig {
	return []config.SheetConfig{
		config.SheetDefaults("stocks_transac", "CHF"),
		config.SheetDefaults("crypto_transac", "CHF"),
	}
}

// NewTestSettingsService wires a SettingsService with the credential store
// disabled and no environment keys.
func NewTestSettingsService(t *testing.T, db *sql.DB) *service.SettingsService {
	t.Helper()

	settingRepo := repository.NewSettingRepository(db)
	secrets, err := securestore.New("")
	if err != nil {
		t.Fatalf("Failed to create disabled securestore: %v", err)
	}

	return service.NewSettingsService(settingRepo, NewTestRegistry(t), secrets, "CHF", nil)
}

// NewTestTransactionService wires a TransactionService over the test database.
func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()

	return service.NewTransactionService(repository.NewTransactionRepository(db))
}

// NewTestImportService wires an ImportService over the given workbook reader
// and the default test sheets.
func NewTestImportService(t *testing.T, db *sql.DB, reader workbook.Reader) *service.ImportService {
	t.Helper()

	transactionRepo := repository.NewTransactionRepository(db)
	normalizer := normalize.NewNormalizer(NewTestRegistry(t))

	return service.NewImportService(db, transactionRepo, reader, normalizer, NewTestSheets())
}

// NewTestFxCache builds an fx cache over the test database with the given
// provider and TTL.
func NewTestFxCache(t *testing.T, db *sql.DB, provider fxrate.Provider, ttl time.Duration) *fxrate.Cache {
	t.Helper()

	return fxrate.New(repository.NewFxRateRepository(db), provider, ttl)
}

// NewTestSummaryService wires a SummaryService over the given cache with the
// fallback stale policy.
func NewTestSummaryService(t *testing.T, db *sql.DB, cache *fxrate.Cache) *service.SummaryService {
	t.Helper()

	return service.NewSummaryService(
		repository.NewTransactionRepository(db),
		NewTestSettingsService(t, db),
		cache,
		NewTestRegistry(t),
		config.StalePolicyFallback,
	)
}

// NewTestSystemService wires a SystemService over the test database.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}
