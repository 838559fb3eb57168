package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finance-dash/backend/internal/apperrors"
	"github.com/finance-dash/backend/internal/model"
	"github.com/finance-dash/backend/internal/repository"
	"github.com/finance-dash/backend/internal/testutil"
)

func testRecord(key string) model.TransactionRecord {
	return model.TransactionRecord{
		NaturalKey:  key,
		OccurredOn:  time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "Coffee shop",
		Amount:      decimal.RequireFromString("-4.50"),
		Currency:    "CHF",
		SourceSheet: "stocks_transac",
		TxnNumber:   "TX-1",
		ImportedAt:  time.Date(2023, 2, 1, 10, 0, 0, 0, time.UTC),
	}
}

// TestTransactionRepository_Upsert tests keyed writes and their outcomes.
//
// WHY: Upsert is what makes imports idempotent. A fresh key must insert, an
// identical record must write nothing (keeping imported_at), and a differing
// record must overwrite. Miscounting any of these corrupts import reports.
func TestTransactionRepository_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts a record under a fresh key", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)
		record := testRecord(testutil.MakeID())

		// Execute
		outcome, err := repo.Upsert(ctx, record)

		// Assert
		if err != nil {
			t.Fatalf("Upsert() returned unexpected error: %v", err)
		}
		if outcome != repository.UpsertInserted {
			t.Errorf("Expected UpsertInserted, got %v", outcome)
		}

		stored, err := repo.GetRecord(ctx, record.NaturalKey)
		if err != nil {
			t.Fatalf("GetRecord() returned unexpected error: %v", err)
		}
		if !stored.Amount.Equal(record.Amount) || stored.Description != record.Description {
			t.Errorf("Stored record differs: got %+v", stored)
		}
		if !stored.ImportedAt.Equal(record.ImportedAt) {
			t.Errorf("ImportedAt = %s, want %s", stored.ImportedAt, record.ImportedAt)
		}
	})

	t.Run("identical record writes nothing and keeps imported_at", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)
		record := testRecord(testutil.MakeID())

		if _, err := repo.Upsert(ctx, record); err != nil {
			t.Fatalf("Upsert() returned unexpected error: %v", err)
		}

		// Execute: same fields, newer import timestamp
		reimported := record
		reimported.ImportedAt = record.ImportedAt.Add(24 * time.Hour)

		outcome, err := repo.Upsert(ctx, reimported)

		// Assert
		if err != nil {
			t.Fatalf("Upsert() returned unexpected error: %v", err)
		}
		if outcome != repository.UpsertUnchanged {
			t.Errorf("Expected UpsertUnchanged, got %v", outcome)
		}

		stored, err := repo.GetRecord(ctx, record.NaturalKey)
		if err != nil {
			t.Fatalf("GetRecord() returned unexpected error: %v", err)
		}
		if !stored.ImportedAt.Equal(record.ImportedAt) {
			t.Errorf("ImportedAt moved to %s, want original %s", stored.ImportedAt, record.ImportedAt)
		}
	})

	t.Run("differing record overwrites and bumps imported_at", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)
		record := testRecord(testutil.MakeID())

		if _, err := repo.Upsert(ctx, record); err != nil {
			t.Fatalf("Upsert() returned unexpected error: %v", err)
		}

		// Execute: amended amount under the same key
		amended := record
		amended.Amount = decimal.RequireFromString("-5.00")
		amended.ImportedAt = record.ImportedAt.Add(24 * time.Hour)

		outcome, err := repo.Upsert(ctx, amended)

		// Assert
		if err != nil {
			t.Fatalf("Upsert() returned unexpected error: %v", err)
		}
		if outcome != repository.UpsertUpdated {
			t.Errorf("Expected UpsertUpdated, got %v", outcome)
		}

		stored, err := repo.GetRecord(ctx, record.NaturalKey)
		if err != nil {
			t.Fatalf("GetRecord() returned unexpected error: %v", err)
		}
		if !stored.Amount.Equal(amended.Amount) {
			t.Errorf("Amount = %s, want %s", stored.Amount, amended.Amount)
		}
		if !stored.ImportedAt.Equal(amended.ImportedAt) {
			t.Errorf("ImportedAt = %s, want bumped %s", stored.ImportedAt, amended.ImportedAt)
		}

		count, err := repo.CountRecords(ctx)
		if err != nil {
			t.Fatalf("CountRecords() returned unexpected error: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 record after overwrite, got %d", count)
		}
	})

	t.Run("balance roundtrips and participates in change detection", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)
		record := testRecord(testutil.MakeID())

		if _, err := repo.Upsert(ctx, record); err != nil {
			t.Fatalf("Upsert() returned unexpected error: %v", err)
		}

		stored, err := repo.GetRecord(ctx, record.NaturalKey)
		if err != nil {
			t.Fatalf("GetRecord() returned unexpected error: %v", err)
		}
		if stored.Balance != nil {
			t.Errorf("Expected nil balance, got %s", stored.Balance)
		}

		// Execute: the same record gains a balance
		balance := decimal.RequireFromString("1200.00")
		withBalance := record
		withBalance.Balance = &balance

		outcome, err := repo.Upsert(ctx, withBalance)

		// Assert
		if err != nil {
			t.Fatalf("Upsert() returned unexpected error: %v", err)
		}
		if outcome != repository.UpsertUpdated {
			t.Errorf("Expected UpsertUpdated when balance appears, got %v", outcome)
		}

		stored, err = repo.GetRecord(ctx, record.NaturalKey)
		if err != nil {
			t.Fatalf("GetRecord() returned unexpected error: %v", err)
		}
		if stored.Balance == nil || !stored.Balance.Equal(balance) {
			t.Errorf("Balance = %v, want %s", stored.Balance, balance)
		}

		// A second identical upsert is unchanged again
		outcome, err = repo.Upsert(ctx, withBalance)
		if err != nil {
			t.Fatalf("Upsert() returned unexpected error: %v", err)
		}
		if outcome != repository.UpsertUnchanged {
			t.Errorf("Expected UpsertUnchanged on identical balance, got %v", outcome)
		}
	})
}

// TestTransactionRepository_GetRecord tests single-record retrieval.
func TestTransactionRepository_GetRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("returns ErrTransactionNotFound for unknown keys", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		_, err := repo.GetRecord(ctx, testutil.MakeID())

		if !errors.Is(err, apperrors.ErrTransactionNotFound) {
			t.Errorf("Expected ErrTransactionNotFound, got %v", err)
		}
	})
}

// TestTransactionRepository_ListRecords tests ordering and limits.
//
// WHY: Listings and summaries both read through ListRecords; newest-first
// ordering with a stable tiebreak is what makes a limited listing and the
// limited summary agree on which records they cover.
func TestTransactionRepository_ListRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("returns empty slice when no records exist", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		records, err := repo.ListRecords(ctx, 0)

		if err != nil {
			t.Fatalf("ListRecords() returned unexpected error: %v", err)
		}
		if records == nil || len(records) != 0 {
			t.Errorf("Expected empty slice, got %v", records)
		}
	})

	t.Run("orders newest first with key tiebreak", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		old := testutil.NewRecord().
			WithOccurredOn(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, db)
		newer := testutil.NewRecord().
			WithOccurredOn(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, db)
		sameDayA := testutil.NewRecord().
			WithNaturalKey("00000000-0000-4000-8000-000000000001").
			WithOccurredOn(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, db)
		sameDayB := testutil.NewRecord().
			WithNaturalKey("00000000-0000-4000-8000-000000000002").
			WithOccurredOn(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, db)

		// Execute
		records, err := repo.ListRecords(ctx, 0)

		// Assert
		if err != nil {
			t.Fatalf("ListRecords() returned unexpected error: %v", err)
		}
		if len(records) != 4 {
			t.Fatalf("Expected 4 records, got %d", len(records))
		}

		if records[0].NaturalKey != newer.NaturalKey {
			t.Errorf("Expected newest record first, got %s", records[0].NaturalKey)
		}
		if records[1].NaturalKey != sameDayA.NaturalKey || records[2].NaturalKey != sameDayB.NaturalKey {
			t.Errorf("Same-day records must order by key: got %s then %s",
				records[1].NaturalKey, records[2].NaturalKey)
		}
		if records[3].NaturalKey != old.NaturalKey {
			t.Errorf("Expected oldest record last, got %s", records[3].NaturalKey)
		}
	})

	t.Run("limit caps the listing at the newest records", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		testutil.NewRecord().WithOccurredOn(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)).Build(t, db)
		testutil.NewRecord().WithOccurredOn(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)).Build(t, db)
		newest := testutil.NewRecord().
			WithOccurredOn(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, db)

		// Execute
		records, err := repo.ListRecords(ctx, 1)

		// Assert
		if err != nil {
			t.Fatalf("ListRecords() returned unexpected error: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("Expected 1 record, got %d", len(records))
		}
		if records[0].NaturalKey != newest.NaturalKey {
			t.Errorf("Expected the newest record, got %s", records[0].NaturalKey)
		}
	})
}

// TestTransactionRepository_CurrencyCodes tests the distinct currency listing.
func TestTransactionRepository_CurrencyCodes(t *testing.T) {
	ctx := context.Background()

	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)

	testutil.CreateRecord(t, db, "10.00", "USD")
	testutil.CreateRecord(t, db, "20.00", "CHF")
	testutil.CreateRecord(t, db, "30.00", "CHF")
	testutil.CreateRecord(t, db, "40.00", "EUR")

	codes, err := repo.CurrencyCodes(ctx)

	if err != nil {
		t.Fatalf("CurrencyCodes() returned unexpected error: %v", err)
	}

	want := []string{"CHF", "EUR", "USD"}
	if len(codes) != len(want) {
		t.Fatalf("Expected %d codes, got %d: %v", len(want), len(codes), codes)
	}
	for i, code := range want {
		if codes[i] != code {
			t.Errorf("codes[%d] = %q, want %q (sorted, distinct)", i, codes[i], code)
		}
	}
}

// TestTransactionRepository_WithTx tests transaction scoping.
//
// WHY: Imports write each sheet inside one transaction. A rollback must leave
// no partial rows behind, and a commit must make them all visible.
func TestTransactionRepository_WithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("rollback discards writes", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("BeginTx() returned unexpected error: %v", err)
		}

		// Execute
		if _, err := repo.WithTx(tx).Upsert(ctx, testRecord(testutil.MakeID())); err != nil {
			t.Fatalf("Upsert() returned unexpected error: %v", err)
		}
		if err := tx.Rollback(); err != nil {
			t.Fatalf("Rollback() returned unexpected error: %v", err)
		}

		// Assert
		testutil.AssertRowCount(t, db, "bank_transaction", 0)
	})

	t.Run("commit makes writes visible", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("BeginTx() returned unexpected error: %v", err)
		}

		// Execute
		record := testRecord(testutil.MakeID())
		if _, err := repo.WithTx(tx).Upsert(ctx, record); err != nil {
			t.Fatalf("Upsert() returned unexpected error: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("Commit() returned unexpected error: %v", err)
		}

		// Assert
		if _, err := repo.GetRecord(ctx, record.NaturalKey); err != nil {
			t.Errorf("Expected committed record to be visible, got %v", err)
		}
	})
}
