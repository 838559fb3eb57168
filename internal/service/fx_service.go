package service

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/finance-dash/backend/internal/alphavantage"
	"github.com/finance-dash/backend/internal/currency"
	"github.com/finance-dash/backend/internal/fxrate"
	"github.com/finance-dash/backend/internal/model"
	"github.com/finance-dash/backend/internal/repository"
)

// refreshConcurrency bounds parallel provider calls during a bulk refresh.
// Alpha Vantage throttles aggressively on free keys.
const refreshConcurrency = 3

// NewRateProvider adapts the Alpha Vantage client to the fx cache's provider
// seam. The API key is resolved per call, so a key stored through the
// settings endpoint takes effect without a restart.
func NewRateProvider(client alphavantage.Client, settings *SettingsService) fxrate.Provider {
	return fxrate.ProviderFunc(func(ctx context.Context, base, quote string) (model.FxRate, error) {
		apiKey, err := settings.ProviderKey(ctx, ProviderAlphaVantage)
		if err != nil {
			return model.FxRate{}, err
		}

		fetched, err := client.FetchExchangeRate(ctx, apiKey, base, quote)
		if err != nil {
			return model.FxRate{}, err
		}

		return model.FxRate{
			Base:      fetched.Base,
			Quote:     fetched.Quote,
			Rate:      fetched.Rate,
			FetchedAt: fetched.FetchedAt,
			Source:    alphavantage.Source,
		}, nil
	})
}

// FxService exposes the exchange rate cache: on-demand refreshes of single
// pairs, the freshness-labeled listing, and the bulk refresh the scheduler
// runs.
type FxService struct {
	cache           *fxrate.Cache
	registry        *currency.Registry
	transactionRepo *repository.TransactionRepository
	settings        *SettingsService
}

// NewFxService creates a new FxService.
func NewFxService(
	cache *fxrate.Cache,
	registry *currency.Registry,
	transactionRepo *repository.TransactionRepository,
	settings *SettingsService,
) *FxService {
	return &FxService{
		cache:           cache,
		registry:        registry,
		transactionRepo: transactionRepo,
		settings:        settings,
	}
}

// RefreshRate fetches the current rate for one pair from the provider and
// stores it. Both codes must be supported currencies.
func (s *FxService) RefreshRate(ctx context.Context, base, quote string) (model.FxRate, error) {
	baseCode, err := s.registry.Resolve(base)
	if err != nil {
		return model.FxRate{}, err
	}
	quoteCode, err := s.registry.Resolve(quote)
	if err != nil {
		return model.FxRate{}, err
	}

	return s.cache.Refresh(ctx, baseCode, quoteCode)
}

// ListRates returns every cached rate with its freshness label.
func (s *FxService) ListRates() []model.FxRateStatus {
	return s.cache.Statuses()
}

// RefreshStoredPairs refreshes the rate of every currency present in the
// store against the display currency. Individual pair failures are logged
// and skipped, never fatal: a pair kept stale is still usable under the
// fallback policy. Returns the number of pairs refreshed.
func (s *FxService) RefreshStoredPairs(ctx context.Context) (int, error) {
	display, err := s.settings.DisplayCurrency(ctx)
	if err != nil {
		return 0, err
	}

	codes, err := s.transactionRepo.CurrencyCodes(ctx)
	if err != nil {
		return 0, err
	}

	var (
		mu        sync.Mutex
		refreshed int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for _, code := range codes {
		code := code // per-iteration copy; go directive < 1.22 shares the loop variable
		if code == display {
			continue
		}
		g.Go(func() error {
			if _, err := s.cache.Refresh(ctx, code, display); err != nil {
				log.Printf("fx refresh %s/%s failed: %v", code, display, err)
				return nil
			}
			mu.Lock()
			refreshed++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return refreshed, err
	}
	return refreshed, nil
}
