package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finance-dash/backend/internal/apperrors"
	"github.com/finance-dash/backend/internal/config"
	"github.com/finance-dash/backend/internal/currency"
	"github.com/finance-dash/backend/internal/fxrate"
	"github.com/finance-dash/backend/internal/model"
	"github.com/finance-dash/backend/internal/repository"
)

// SummaryService aggregates stored transactions per currency and converts
// the subtotals into a display currency using cached exchange rates.
type SummaryService struct {
	transactionRepo *repository.TransactionRepository
	settings        *SettingsService
	rates           *fxrate.Cache
	registry        *currency.Registry

	strictStale bool
	now         func() time.Time
}

// NewSummaryService creates a new SummaryService. stalePolicy decides what a
// stale cached rate means: config.StalePolicyStrict fails the summary,
// config.StalePolicyFallback uses the rate and labels the result.
func NewSummaryService(
	transactionRepo *repository.TransactionRepository,
	settings *SettingsService,
	rates *fxrate.Cache,
	registry *currency.Registry,
	stalePolicy string,
) *SummaryService {
	return &SummaryService{
		transactionRepo: transactionRepo,
		settings:        settings,
		rates:           rates,
		registry:        registry,
		strictStale:     stalePolicy == config.StalePolicyStrict,
		now:             time.Now,
	}
}

// Summarize builds the per-currency aggregate over the stored records and
// converts it into displayCurrency. An empty displayCurrency falls back to
// the configured one. limit > 0 restricts the aggregate to the most recent
// records, matching what a capped listing returns.
//
// Subtotals in the display currency itself pass through exactly; other
// subtotals are converted as a whole and rounded half-to-even to two
// decimals, so per-record rounding noise never accumulates.
func (s *SummaryService) Summarize(ctx context.Context, displayCurrency string, limit int) (model.SummaryResult, error) {
	if displayCurrency == "" {
		stored, err := s.settings.DisplayCurrency(ctx)
		if err != nil {
			return model.SummaryResult{}, err
		}
		displayCurrency = stored
	}
	display, err := s.registry.Resolve(displayCurrency)
	if err != nil {
		return model.SummaryResult{}, err
	}

	records, err := s.transactionRepo.ListRecords(ctx, limit)
	if err != nil {
		return model.SummaryResult{}, err
	}

	type group struct {
		subtotal decimal.Decimal
		count    int
	}
	groups := make(map[string]*group)
	for _, record := range records {
		g := groups[record.Currency]
		if g == nil {
			g = &group{}
			groups[record.Currency] = g
		}
		g.subtotal = g.subtotal.Add(record.Amount)
		g.count++
	}

	codes := make([]string, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	result := model.SummaryResult{
		DisplayCurrency:  display,
		TransactionCount: len(records),
		PerCurrency:      make([]model.CurrencyBreakdown, 0, len(codes)),
		GeneratedAt:      s.now().UTC(),
	}

	total := decimal.Zero
	for _, code := range codes {
		g := groups[code]
		breakdown := model.CurrencyBreakdown{
			Currency:         code,
			TransactionCount: g.count,
			Subtotal:         g.subtotal,
			SubtotalRounded:  currency.RoundNative(g.subtotal, code),
		}

		if code == display {
			breakdown.SubtotalInDisplay = g.subtotal
		} else {
			rate, freshness := s.rates.Lookup(code, display)
			switch freshness {
			case fxrate.RateAbsent:
				return model.SummaryResult{}, &apperrors.FxRateUnavailableError{Base: code, Quote: display}
			case fxrate.RateStale:
				if s.strictStale {
					return model.SummaryResult{}, &apperrors.FxRateUnavailableError{Base: code, Quote: display, Stale: true}
				}
				breakdown.RateIsStale = true
				result.StaleRatesUsed = true
			}
			rateUsed := rate.Rate
			breakdown.RateUsed = &rateUsed
			breakdown.SubtotalInDisplay = currency.Convert(g.subtotal, rate.Rate)
		}

		total = total.Add(breakdown.SubtotalInDisplay)
		result.PerCurrency = append(result.PerCurrency, breakdown)
	}

	result.Total = total
	return result, nil
}
