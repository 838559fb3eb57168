package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finance-dash/backend/internal/fxrate"
	"github.com/finance-dash/backend/internal/model"
	"github.com/finance-dash/backend/internal/testutil"
)

func TestSummaryHandler_Summary(t *testing.T) {
	setupHandler := func(t *testing.T) (*SummaryHandler, *sql.DB, *fxrate.Cache) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		provider := fxrate.ProviderFunc(func(context.Context, string, string) (model.FxRate, error) {
			return model.FxRate{}, errors.New("no provider in this test")
		})
		cache := testutil.NewTestFxCache(t, db, provider, time.Hour)
		return NewSummaryHandler(testutil.NewTestSummaryService(t, db, cache)), db, cache
	}

	t.Run("aggregates per currency in the requested display currency", func(t *testing.T) {
		handler, db, cache := setupHandler(t)
		testutil.CreateRecord(t, db, "100.00", "CHF")
		testutil.CreateRecord(t, db, "10.01", "USD")
		testutil.NewFxRate("USD", "CHF").WithRate("0.9104").FetchedAgo(10 * time.Minute).Build(t, db)
		if err := cache.Load(context.Background()); err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/summary", map[string]string{
			"currency": "CHF",
		})
		w := httptest.NewRecorder()

		handler.Summary(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var result model.SummaryResult
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&result)

		if result.DisplayCurrency != "CHF" {
			t.Errorf("DisplayCurrency = %q, want CHF", result.DisplayCurrency)
		}
		if len(result.PerCurrency) != 2 {
			t.Fatalf("Expected 2 breakdowns, got %d", len(result.PerCurrency))
		}
		if !result.Total.Equal(decimal.RequireFromString("109.11")) {
			t.Errorf("Total = %s, want 109.11", result.Total)
		}
	})

	t.Run("defaults to the configured display currency", func(t *testing.T) {
		handler, db, _ := setupHandler(t)
		testutil.CreateRecord(t, db, "50.00", "CHF")

		req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
		w := httptest.NewRecorder()

		handler.Summary(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var result model.SummaryResult
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&result)

		if result.DisplayCurrency != "CHF" {
			t.Errorf("DisplayCurrency = %q, want the configured CHF", result.DisplayCurrency)
		}
	})

	t.Run("returns 400 for an unsupported currency", func(t *testing.T) {
		handler, _, _ := setupHandler(t)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/summary", map[string]string{
			"currency": "JPY",
		})
		w := httptest.NewRecorder()

		handler.Summary(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 for a malformed limit", func(t *testing.T) {
		handler, _, _ := setupHandler(t)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/summary", map[string]string{
			"limit": "many",
		})
		w := httptest.NewRecorder()

		handler.Summary(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 503 when a needed rate is missing", func(t *testing.T) {
		handler, db, _ := setupHandler(t)
		testutil.CreateRecord(t, db, "10.00", "USD")

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/summary", map[string]string{
			"currency": "CHF",
		})
		w := httptest.NewRecorder()

		handler.Summary(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d: %s", w.Code, w.Body.String())
		}
	})
}
