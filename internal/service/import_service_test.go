package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/finance-dash/backend/internal/apperrors"
	"github.com/finance-dash/backend/internal/testutil"
	"github.com/finance-dash/backend/internal/workbook"
)

// gatedReader blocks Rows until released, signalling entry once. It lets a
// test hold an import mid-run.
type gatedReader struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *gatedReader) Rows(string) ([]workbook.Row, error) {
	r.once.Do(func() { close(r.entered) })
	<-r.release
	return []workbook.Row{}, nil
}

// TestImportService_Run tests full import runs over stubbed sheets.
//
// WHY: The import run is the write path of the whole system. Outcome tallies,
// idempotent re-imports, and silent blank-row skipping are the behaviors
// users reconcile against their spreadsheets.
func TestImportService_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("imports all configured sheets", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		reader := testutil.NewStubReader().
			WithSheet("stocks_transac", []workbook.Row{
				testutil.MovementRow(1, "2023-01-15", "Salary", "5000.00", "CHF"),
				testutil.MovementRow(2, "2023-01-16", "Groceries", "-120.50", "CHF"),
			}).
			WithSheet("crypto_transac", []workbook.Row{
				testutil.MakeRow(1, map[string]string{
					"transac_date": "2023-01-17",
					"descr_1":      "BTC buy",
					"amount_chf":   "-250.00",
				}),
			})
		svc := testutil.NewTestImportService(t, db, reader)

		// Execute
		result, err := svc.Run(ctx, nil)

		// Assert
		if err != nil {
			t.Fatalf("Run() returned unexpected error: %v", err)
		}
		if result.SheetsProcessed != 2 {
			t.Errorf("SheetsProcessed = %d, want 2", result.SheetsProcessed)
		}
		if result.RowsSucceeded != 3 {
			t.Errorf("RowsSucceeded = %d, want 3", result.RowsSucceeded)
		}
		if result.RecordsInserted != 3 {
			t.Errorf("RecordsInserted = %d, want 3", result.RecordsInserted)
		}
		if len(result.RowsFailed) != 0 {
			t.Errorf("RowsFailed = %v, want none", result.RowsFailed)
		}
		if result.StartedAt.IsZero() || result.FinishedAt.IsZero() {
			t.Error("Expected run timestamps to be set")
		}

		testutil.AssertRowCount(t, db, "bank_transaction", 3)
	})

	t.Run("clean re-import writes nothing", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		reader := testutil.NewStubReader().
			WithSheet("stocks_transac", []workbook.Row{
				testutil.MovementRow(1, "2023-01-15", "Salary", "5000.00", "CHF"),
				testutil.MovementRow(2, "2023-01-16", "Groceries", "-120.50", "CHF"),
			}).
			WithSheet("crypto_transac", []workbook.Row{})
		svc := testutil.NewTestImportService(t, db, reader)

		if _, err := svc.Run(ctx, nil); err != nil {
			t.Fatalf("First Run() returned unexpected error: %v", err)
		}

		// Execute
		result, err := svc.Run(ctx, nil)

		// Assert
		if err != nil {
			t.Fatalf("Second Run() returned unexpected error: %v", err)
		}
		if result.RecordsInserted != 0 || result.RecordsUpdated != 0 {
			t.Errorf("Re-import wrote records: inserted %d, updated %d",
				result.RecordsInserted, result.RecordsUpdated)
		}
		if result.RecordsUnchanged != 2 {
			t.Errorf("RecordsUnchanged = %d, want 2", result.RecordsUnchanged)
		}

		testutil.AssertRowCount(t, db, "bank_transaction", 2)
	})

	t.Run("amended row re-imports as one update", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		reader := testutil.NewStubReader().
			WithSheet("stocks_transac", []workbook.Row{
				testutil.MovementRow(1, "2023-01-15", "Salary", "5000.00", "CHF"),
				testutil.MovementRow(2, "2023-01-16", "Groceries", "-120.50", "CHF"),
			}).
			WithSheet("crypto_transac", []workbook.Row{})
		svc := testutil.NewTestImportService(t, db, reader)

		if _, err := svc.Run(ctx, nil); err != nil {
			t.Fatalf("First Run() returned unexpected error: %v", err)
		}

		// The groceries amount gets corrected in place
		reader.WithSheet("stocks_transac", []workbook.Row{
			testutil.MovementRow(1, "2023-01-15", "Salary", "5000.00", "CHF"),
			testutil.MovementRow(2, "2023-01-16", "Groceries", "-125.50", "CHF"),
		})

		// Execute
		result, err := svc.Run(ctx, nil)

		// Assert
		if err != nil {
			t.Fatalf("Second Run() returned unexpected error: %v", err)
		}
		if result.RecordsUpdated != 1 {
			t.Errorf("RecordsUpdated = %d, want 1", result.RecordsUpdated)
		}
		if result.RecordsUnchanged != 1 {
			t.Errorf("RecordsUnchanged = %d, want 1", result.RecordsUnchanged)
		}
		if result.RecordsInserted != 0 {
			t.Errorf("RecordsInserted = %d, want 0", result.RecordsInserted)
		}

		testutil.AssertRowCount(t, db, "bank_transaction", 2)
	})

	t.Run("parse failures are collected while the rest commits", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		reader := testutil.NewStubReader().
			WithSheet("stocks_transac", []workbook.Row{
				testutil.MovementRow(1, "2023-01-15", "Salary", "5000.00", "CHF"),
				testutil.MakeRow(2, map[string]string{
					"transac_date": "2023-01-16",
					"amount_chf":   "not-a-number",
				}),
				testutil.MovementRow(3, "2023-01-17", "Rent", "-1800.00", "CHF"),
			}).
			WithSheet("crypto_transac", []workbook.Row{})
		svc := testutil.NewTestImportService(t, db, reader)

		// Execute
		result, err := svc.Run(ctx, nil)

		// Assert
		if err != nil {
			t.Fatalf("Run() returned unexpected error: %v", err)
		}
		if result.RowsSucceeded != 2 {
			t.Errorf("RowsSucceeded = %d, want 2", result.RowsSucceeded)
		}
		if len(result.RowsFailed) != 1 {
			t.Fatalf("RowsFailed = %v, want exactly 1", result.RowsFailed)
		}

		failure := result.RowsFailed[0]
		if failure.Sheet != "stocks_transac" || failure.Row != 2 {
			t.Errorf("Failure coordinates = %s/%d, want stocks_transac/2", failure.Sheet, failure.Row)
		}
		if failure.Column != "amount_chf" {
			t.Errorf("Failure column = %q, want amount_chf", failure.Column)
		}
		if failure.Reason == "" {
			t.Error("Expected a failure reason")
		}

		testutil.AssertRowCount(t, db, "bank_transaction", 2)
	})

	t.Run("blank rows are skipped silently", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		reader := testutil.NewStubReader().
			WithSheet("stocks_transac", []workbook.Row{
				testutil.MovementRow(1, "2023-01-15", "Salary", "5000.00", "CHF"),
				testutil.MakeRow(2, map[string]string{
					"transac_date": "", "descr_1": "-", "credit": "NA",
				}),
				testutil.MovementRow(3, "2023-01-17", "Rent", "-1800.00", "CHF"),
			}).
			WithSheet("crypto_transac", []workbook.Row{})
		svc := testutil.NewTestImportService(t, db, reader)

		// Execute
		result, err := svc.Run(ctx, nil)

		// Assert
		if err != nil {
			t.Fatalf("Run() returned unexpected error: %v", err)
		}
		if result.RowsSucceeded != 2 {
			t.Errorf("RowsSucceeded = %d, want 2 (blank row not counted)", result.RowsSucceeded)
		}
		if len(result.RowsFailed) != 0 {
			t.Errorf("Blank row reported as failure: %v", result.RowsFailed)
		}
	})

	t.Run("named sheets import in request order, others untouched", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		reader := testutil.NewStubReader().
			WithSheet("stocks_transac", []workbook.Row{
				testutil.MovementRow(1, "2023-01-15", "Salary", "5000.00", "CHF"),
			}).
			WithSheet("crypto_transac", []workbook.Row{
				testutil.MakeRow(1, map[string]string{
					"transac_date": "2023-01-17",
					"descr_1":      "BTC buy",
					"amount_chf":   "-250.00",
				}),
			})
		svc := testutil.NewTestImportService(t, db, reader)

		// Execute
		result, err := svc.Run(ctx, []string{"crypto_transac"})

		// Assert
		if err != nil {
			t.Fatalf("Run() returned unexpected error: %v", err)
		}
		if result.SheetsProcessed != 1 {
			t.Errorf("SheetsProcessed = %d, want 1", result.SheetsProcessed)
		}
		if result.RecordsInserted != 1 {
			t.Errorf("RecordsInserted = %d, want 1", result.RecordsInserted)
		}

		testutil.AssertRowCount(t, db, "bank_transaction", 1)
	})

	t.Run("unknown sheet fails before any work", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		reader := testutil.NewStubReader().
			WithSheet("stocks_transac", []workbook.Row{
				testutil.MovementRow(1, "2023-01-15", "Salary", "5000.00", "CHF"),
			})
		svc := testutil.NewTestImportService(t, db, reader)

		// Execute
		result, err := svc.Run(ctx, []string{"stocks_transac", "no_such_sheet"})

		// Assert
		if !errors.Is(err, apperrors.ErrSheetNotConfigured) {
			t.Fatalf("Expected ErrSheetNotConfigured, got %v", err)
		}
		if result.SheetsProcessed != 0 || result.RowsSucceeded != 0 {
			t.Errorf("Expected zero result on abort, got %+v", result)
		}

		testutil.AssertRowCount(t, db, "bank_transaction", 0)
	})

	t.Run("unreadable sheet aborts but keeps committed sheets", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		reader := testutil.NewStubReader().
			WithSheet("stocks_transac", []workbook.Row{
				testutil.MovementRow(1, "2023-01-15", "Salary", "5000.00", "CHF"),
			}).
			WithSheetError("crypto_transac", errors.New("sheet is corrupted"))
		svc := testutil.NewTestImportService(t, db, reader)

		// Execute
		result, err := svc.Run(ctx, nil)

		// Assert
		var readErr *apperrors.SheetReadError
		if !errors.As(err, &readErr) {
			t.Fatalf("Expected SheetReadError, got %v", err)
		}
		if readErr.Sheet != "crypto_transac" {
			t.Errorf("SheetReadError sheet = %q, want crypto_transac", readErr.Sheet)
		}
		if result.SheetsProcessed != 0 {
			t.Errorf("Expected zero result on abort, got %+v", result)
		}

		// The stocks sheet committed before the failure and stays
		testutil.AssertRowCount(t, db, "bank_transaction", 1)
	})

	t.Run("canceled context aborts and rolls back", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		reader := testutil.NewStubReader().
			WithSheet("stocks_transac", []workbook.Row{
				testutil.MovementRow(1, "2023-01-15", "Salary", "5000.00", "CHF"),
			}).
			WithSheet("crypto_transac", []workbook.Row{})
		svc := testutil.NewTestImportService(t, db, reader)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		// Execute
		_, err := svc.Run(canceled, nil)

		// Assert
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Expected context.Canceled, got %v", err)
		}

		testutil.AssertRowCount(t, db, "bank_transaction", 0)
	})
}

// TestImportService_Run_Concurrency tests the single-run guarantee.
//
// WHY: Two imports interleaving over the same workbook would double-read
// sheets and race on tallies. A second call must fail fast, not queue.
func TestImportService_Run_Concurrency(t *testing.T) {
	// Setup
	db := testutil.SetupTestDB(t)
	reader := &gatedReader{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := testutil.NewTestImportService(t, db, reader)

	// Execute: hold the first run inside the reader
	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background(), nil)
		done <- err
	}()
	<-reader.entered

	_, err := svc.Run(context.Background(), nil)

	// Assert
	if !errors.Is(err, apperrors.ErrImportInProgress) {
		t.Errorf("Expected ErrImportInProgress, got %v", err)
	}

	close(reader.release)
	if err := <-done; err != nil {
		t.Errorf("First run returned unexpected error: %v", err)
	}

	// The lock is free again
	if _, err := svc.Run(context.Background(), nil); err != nil {
		t.Errorf("Run() after release returned unexpected error: %v", err)
	}
}
