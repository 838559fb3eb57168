package service

import (
	"context"
	"fmt"
	"time"

	"github.com/finance-dash/backend/internal/alphavantage"
	"github.com/finance-dash/backend/internal/coinranking"
	"github.com/finance-dash/backend/internal/model"
	"github.com/finance-dash/backend/internal/repository"
)

// QuoteService fetches market prices for tracked assets and records them.
// Equity symbols go through Alpha Vantage, crypto assets through Coinranking.
type QuoteService struct {
	alphavantage alphavantage.Client
	coinranking  coinranking.Client
	quoteRepo    *repository.QuoteRepository
	settings     *SettingsService
}

// NewQuoteService creates a new QuoteService.
func NewQuoteService(
	alphavantageClient alphavantage.Client,
	coinrankingClient coinranking.Client,
	quoteRepo *repository.QuoteRepository,
	settings *SettingsService,
) *QuoteService {
	return &QuoteService{
		alphavantage: alphavantageClient,
		coinranking:  coinrankingClient,
		quoteRepo:    quoteRepo,
		settings:     settings,
	}
}

// RefreshEquityQuote fetches the latest price for an equity symbol and
// records it under the symbol's latest trading day.
func (s *QuoteService) RefreshEquityQuote(ctx context.Context, symbol string) (model.Quote, error) {
	apiKey, err := s.settings.ProviderKey(ctx, ProviderAlphaVantage)
	if err != nil {
		return model.Quote{}, err
	}

	fetched, err := s.alphavantage.FetchGlobalQuote(ctx, apiKey, symbol)
	if err != nil {
		return model.Quote{}, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}

	quote := model.Quote{
		Symbol:   fetched.Symbol,
		QuotedOn: day(fetched.TradingDay),
		Price:    fetched.Price,
		Currency: fetched.Currency,
		Source:   alphavantage.Source,
	}
	if err := s.quoteRepo.SaveQuote(ctx, quote); err != nil {
		return model.Quote{}, err
	}

	return quote, nil
}

// RefreshCryptoQuote fetches the current price for a crypto asset by its
// Coinranking coin ID and records it under today's date.
func (s *QuoteService) RefreshCryptoQuote(ctx context.Context, coinID string) (model.Quote, error) {
	apiKey, err := s.settings.ProviderKey(ctx, ProviderCoinranking)
	if err != nil {
		return model.Quote{}, err
	}

	fetched, err := s.coinranking.FetchCoinPrice(ctx, apiKey, coinID)
	if err != nil {
		return model.Quote{}, fmt.Errorf("failed to fetch coin price for %s: %w", coinID, err)
	}

	quote := model.Quote{
		Symbol:   fetched.Symbol,
		QuotedOn: day(fetched.FetchedAt),
		Price:    fetched.Price,
		Currency: fetched.Currency,
		Source:   coinranking.Source,
	}
	if err := s.quoteRepo.SaveQuote(ctx, quote); err != nil {
		return model.Quote{}, err
	}

	return quote, nil
}

// QuoteHistory returns the recorded quotes for a symbol, newest first.
func (s *QuoteService) QuoteHistory(ctx context.Context, symbol string) ([]model.Quote, error) {
	return s.quoteRepo.ListQuotes(ctx, symbol)
}

// day truncates a timestamp to its UTC calendar date.
func day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
