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

// TestFxRateRepository_UpsertRate tests the one-row-per-pair rate store.
//
// WHY: The rate cache persists through this table across restarts. A refresh
// must replace the pair's previous rate in place, never accumulate rows.
func TestFxRateRepository_UpsertRate(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and retrieves a rate", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewFxRateRepository(db)

		rate := model.FxRate{
			Base:      "USD",
			Quote:     "CHF",
			Rate:      decimal.RequireFromString("0.9104"),
			FetchedAt: time.Date(2023, 6, 1, 8, 0, 0, 0, time.UTC),
			Source:    "alphavantage",
		}

		// Execute
		if err := repo.UpsertRate(ctx, rate); err != nil {
			t.Fatalf("UpsertRate() returned unexpected error: %v", err)
		}

		// Assert
		stored, err := repo.GetRate(ctx, "USD", "CHF")
		if err != nil {
			t.Fatalf("GetRate() returned unexpected error: %v", err)
		}
		if !stored.Rate.Equal(rate.Rate) {
			t.Errorf("Rate = %s, want %s", stored.Rate, rate.Rate)
		}
		if !stored.FetchedAt.Equal(rate.FetchedAt) {
			t.Errorf("FetchedAt = %s, want %s", stored.FetchedAt, rate.FetchedAt)
		}
		if stored.Source != "alphavantage" {
			t.Errorf("Source = %q, want alphavantage", stored.Source)
		}
	})

	t.Run("refresh replaces the pair in place", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewFxRateRepository(db)

		testutil.NewFxRate("USD", "CHF").WithRate("0.9104").Build(t, db)

		// Execute
		refreshed := model.FxRate{
			Base:      "USD",
			Quote:     "CHF",
			Rate:      decimal.RequireFromString("0.9200"),
			FetchedAt: time.Date(2023, 6, 2, 8, 0, 0, 0, time.UTC),
			Source:    "alphavantage",
		}
		if err := repo.UpsertRate(ctx, refreshed); err != nil {
			t.Fatalf("UpsertRate() returned unexpected error: %v", err)
		}

		// Assert
		testutil.AssertRowCount(t, db, "fx_rate", 1)

		stored, err := repo.GetRate(ctx, "USD", "CHF")
		if err != nil {
			t.Fatalf("GetRate() returned unexpected error: %v", err)
		}
		if !stored.Rate.Equal(refreshed.Rate) {
			t.Errorf("Rate = %s, want refreshed %s", stored.Rate, refreshed.Rate)
		}
	})

	t.Run("direction is part of the pair identity", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewFxRateRepository(db)

		testutil.NewFxRate("USD", "CHF").WithRate("0.9104").Build(t, db)
		testutil.NewFxRate("CHF", "USD").WithRate("1.0984").Build(t, db)

		// Assert
		testutil.AssertRowCount(t, db, "fx_rate", 2)

		stored, err := repo.GetRate(ctx, "CHF", "USD")
		if err != nil {
			t.Fatalf("GetRate() returned unexpected error: %v", err)
		}
		if !stored.Rate.Equal(decimal.RequireFromString("1.0984")) {
			t.Errorf("Rate = %s, want the CHF/USD direction", stored.Rate)
		}
	})
}

// TestFxRateRepository_GetRate tests the missing-pair sentinel.
func TestFxRateRepository_GetRate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewFxRateRepository(db)

	_, err := repo.GetRate(context.Background(), "USD", "CHF")

	if !errors.Is(err, apperrors.ErrFxRateNotFound) {
		t.Errorf("Expected ErrFxRateNotFound, got %v", err)
	}
}

// TestFxRateRepository_ListRates tests the sorted listing the cache warms
// up from.
func TestFxRateRepository_ListRates(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	repo := repository.NewFxRateRepository(db)

	testutil.NewFxRate("USD", "CHF").Build(t, db)
	testutil.NewFxRate("EUR", "CHF").Build(t, db)
	testutil.NewFxRate("EUR", "USD").Build(t, db)

	rates, err := repo.ListRates(ctx)

	if err != nil {
		t.Fatalf("ListRates() returned unexpected error: %v", err)
	}
	if len(rates) != 3 {
		t.Fatalf("Expected 3 rates, got %d", len(rates))
	}

	wantPairs := []string{"EUR/CHF", "EUR/USD", "USD/CHF"}
	for i, want := range wantPairs {
		got := rates[i].Base + "/" + rates[i].Quote
		if got != want {
			t.Errorf("rates[%d] = %s, want %s (sorted by pair)", i, got, want)
		}
	}
}
