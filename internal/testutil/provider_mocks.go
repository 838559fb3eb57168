package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finance-dash/backend/internal/alphavantage"
	"github.com/finance-dash/backend/internal/coinranking"
	"github.com/finance-dash/backend/internal/workbook"
)

// MockAlphaVantageClient is a mock implementation of alphavantage.Client for
// testing. It returns predefined test data instead of making actual API calls.
// Fetches are safe for concurrent use; bulk rate refreshes run in parallel.
type MockAlphaVantageClient struct {
	// MockRate is the exchange rate to return from FetchExchangeRate
	MockRate alphavantage.ExchangeRate
	// MockQuote is the quote to return from FetchGlobalQuote
	MockQuote alphavantage.GlobalQuote
	// MockError is the error to return from both fetch methods
	MockError error
	// RateCalls tracks how many times FetchExchangeRate was called
	RateCalls int
	// QuoteCalls tracks how many times FetchGlobalQuote was called
	QuoteCalls int
	// LastAPIKey records the API key passed to the most recent call
	LastAPIKey string

	mu sync.Mutex
}

// NewMockAlphaVantageClient creates a new mock Alpha Vantage client with
// default test data: a 0.9104 exchange rate and a 123.45 USD quote.
func NewMockAlphaVantageClient() *MockAlphaVantageClient {
	return &MockAlphaVantageClient{
		MockRate: alphavantage.ExchangeRate{
			Rate:      decimal.RequireFromString("0.9104"),
			FetchedAt: time.Now().UTC(),
		},
		MockQuote: alphavantage.GlobalQuote{
			Price:      decimal.RequireFromString("123.45"),
			Currency:   "USD",
			TradingDay: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

// FetchExchangeRate mocks the currency exchange rate fetch. The returned
// rate carries the requested pair so callers see a consistent response.
func (m *MockAlphaVantageClient) FetchExchangeRate(_ context.Context, apiKey, base, quote string) (alphavantage.ExchangeRate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RateCalls++
	m.LastAPIKey = apiKey
	if m.MockError != nil {
		return alphavantage.ExchangeRate{}, m.MockError
	}
	rate := m.MockRate
	rate.Base = base
	rate.Quote = quote
	return rate, nil
}

// FetchGlobalQuote mocks the equity quote fetch. The returned quote carries
// the requested symbol.
func (m *MockAlphaVantageClient) FetchGlobalQuote(_ context.Context, apiKey, symbol string) (alphavantage.GlobalQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QuoteCalls++
	m.LastAPIKey = apiKey
	if m.MockError != nil {
		return alphavantage.GlobalQuote{}, m.MockError
	}
	quote := m.MockQuote
	quote.Symbol = symbol
	return quote, nil
}

// WithError configures the mock to return the specified error.
func (m *MockAlphaVantageClient) WithError(err error) *MockAlphaVantageClient {
	m.MockError = err
	return m
}

// WithRate configures the exchange rate returned by FetchExchangeRate.
func (m *MockAlphaVantageClient) WithRate(rate string) *MockAlphaVantageClient {
	m.MockRate.Rate = decimal.RequireFromString(rate)
	return m
}

// WithPrice configures the price returned by FetchGlobalQuote.
func (m *MockAlphaVantageClient) WithPrice(price string) *MockAlphaVantageClient {
	m.MockQuote.Price = decimal.RequireFromString(price)
	return m
}

// MockCoinrankingClient is a mock implementation of coinranking.Client for
// testing. It returns predefined test data instead of making actual API calls.
type MockCoinrankingClient struct {
	// MockPrice is the coin price to return from FetchCoinPrice
	MockPrice coinranking.CoinPrice
	// MockError is the error to return from FetchCoinPrice
	MockError error
	// PriceCalls tracks how many times FetchCoinPrice was called
	PriceCalls int
	// LastAPIKey records the API key passed to the most recent call
	LastAPIKey string
}

// NewMockCoinrankingClient creates a new mock Coinranking client with a
// default Bitcoin price in USD.
func NewMockCoinrankingClient() *MockCoinrankingClient {
	return &MockCoinrankingClient{
		MockPrice: coinranking.CoinPrice{
			Symbol:    "BTC",
			Name:      "Bitcoin",
			Price:     decimal.RequireFromString("43250.17"),
			Currency:  "USD",
			FetchedAt: time.Now().UTC(),
		},
	}
}

// FetchCoinPrice mocks the coin price fetch. The returned price carries the
// requested coin ID.
func (m *MockCoinrankingClient) FetchCoinPrice(_ context.Context, apiKey, coinID string) (coinranking.CoinPrice, error) {
	m.PriceCalls++
	m.LastAPIKey = apiKey
	if m.MockError != nil {
		return coinranking.CoinPrice{}, m.MockError
	}
	price := m.MockPrice
	price.CoinID = coinID
	return price, nil
}

// WithError configures the mock to return the specified error.
func (m *MockCoinrankingClient) WithError(err error) *MockCoinrankingClient {
	m.MockError = err
	return m
}

// WithPrice configures the price returned by FetchCoinPrice.
func (m *MockCoinrankingClient) WithPrice(price string) *MockCoinrankingClient {
	m.MockPrice.Price = decimal.RequireFromString(price)
	return m
}

// StubReader is an in-memory workbook.Reader for import tests. It serves
// canned rows per sheet without touching the filesystem.
type StubReader struct {
	// SheetRows maps sheet names to the rows Rows returns for them
	SheetRows map[string][]workbook.Row
	// SheetErrors maps sheet names to errors Rows returns for them
	SheetErrors map[string]error
}

// NewStubReader creates an empty stub reader. Add sheets with WithSheet.
func NewStubReader() *StubReader {
	return &StubReader{
		SheetRows:   make(map[string][]workbook.Row),
		SheetErrors: make(map[string]error),
	}
}

// WithSheet configures the rows returned for a sheet.
func (r *StubReader) WithSheet(name string, rows []workbook.Row) *StubReader {
	r.SheetRows[name] = rows
	return r
}

// WithSheetError configures a sheet to fail with the specified error.
func (r *StubReader) WithSheetError(name string, err error) *StubReader {
	r.SheetErrors[name] = err
	return r
}

// Rows returns the canned rows for a sheet, or an error for sheets that
// were never configured.
func (r *StubReader) Rows(sheetName string) ([]workbook.Row, error) {
	if err := r.SheetErrors[sheetName]; err != nil {
		return nil, err
	}
	rows, ok := r.SheetRows[sheetName]
	if !ok {
		return nil, fmt.Errorf("sheet %q does not exist", sheetName)
	}
	return rows, nil
}

// MakeRow builds a workbook row at the given data-row position from
// header/value pairs. Headers are stored as the normalizer expects them:
// trimmed and lowercased.
func MakeRow(position int, cells map[string]string) workbook.Row {
	return workbook.Row{Position: position, Cells: cells}
}

// MovementRow builds a typical credit movement row with the given date,
// description, amount, and currency, using the default sheet column names.
func MovementRow(position int, date, description, amount, currencyCode string) workbook.Row {
	return MakeRow(position, map[string]string{
		"transac_date":     date,
		"descr_1":          description,
		"credit":           amount,
		"transac_currency": currencyCode,
	})
}
