package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Every pooled connection to :memory: would get its own database, so
	// pin the pool to one connection.
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA timezone = 'UTC'",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the goose migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Bank transaction table
		CREATE TABLE bank_transaction (
			natural_key VARCHAR(36) NOT NULL PRIMARY KEY,
			occurred_on DATE NOT NULL,
			description TEXT NOT NULL,
			amount VARCHAR(40) NOT NULL,
			currency VARCHAR(3) NOT NULL,
			source_sheet VARCHAR(64) NOT NULL,
			txn_number VARCHAR(64) NOT NULL DEFAULT '',
			balance VARCHAR(40),
			imported_at DATETIME NOT NULL
		);

		-- Exchange rate cache table
		CREATE TABLE fx_rate (
			base VARCHAR(3) NOT NULL,
			quote VARCHAR(3) NOT NULL,
			rate VARCHAR(40) NOT NULL,
			fetched_at DATETIME NOT NULL,
			source VARCHAR(32) NOT NULL,
			CONSTRAINT pk_fx_rate PRIMARY KEY (base, quote)
		);

		-- Market quote table
		CREATE TABLE market_quote (
			symbol VARCHAR(32) NOT NULL,
			quoted_on DATE NOT NULL,
			price VARCHAR(40) NOT NULL,
			currency VARCHAR(3) NOT NULL,
			source VARCHAR(32) NOT NULL,
			CONSTRAINT pk_market_quote PRIMARY KEY (symbol, quoted_on, source)
		);

		-- Setting table
		CREATE TABLE setting (
			"key" VARCHAR(64) NOT NULL PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);

		-- Indexes for performance
		CREATE INDEX ix_bank_transaction_occurred_on ON bank_transaction(occurred_on);
		CREATE INDEX ix_bank_transaction_currency ON bank_transaction(currency);
		CREATE INDEX ix_bank_transaction_source_sheet ON bank_transaction(source_sheet);
		CREATE INDEX ix_market_quote_symbol ON market_quote(symbol);
	`

	_, err := db.Exec(schema)
	return err
}

// CleanDatabase truncates all tables.
// Useful for reusing the same database across multiple tests.
//
// Example usage:
//
//	func TestMultipleThings(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//
//	    t.Run("First test", func(t *testing.T) {
//	        // Create data
//	        testutil.CleanDatabase(t, db)  // Clean after
//	    })
//
//	    t.Run("Second test", func(t *testing.T) {
//	        // Fresh clean database
//	    })
//	}
func CleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	tables := []string{
		"bank_transaction",
		"fx_rate",
		"market_quote",
		"setting",
	}

	for _, table := range tables {
		//nolint:gosec // G202: Table names are from hardcoded slice, no SQL injection risk
		query := "DELETE FROM " + table
		if _, err := db.Exec(query); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in a table.
// Useful for assertions in tests.
//
// Example usage:
//
//	count := testutil.CountRows(t, db, "bank_transaction")
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	query := "SELECT COUNT(*) FROM " + table
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
//
// Example usage:
//
//	testutil.AssertRowCount(t, db, "bank_transaction", 2)
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}
