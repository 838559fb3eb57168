package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

// Source identifies rates and quotes fetched from this provider.
const Source = "alphavantage"

// defaultQuoteCurrency is assumed for global quotes; the endpoint does not
// report one.
const defaultQuoteCurrency = "USD"

// Client defines the interface for fetching data from Alpha Vantage.
// This interface enables dependency injection and testing with mock implementations.
type Client interface {
	FetchExchangeRate(ctx context.Context, apiKey, base, quote string) (ExchangeRate, error)
	FetchGlobalQuote(ctx context.Context, apiKey, symbol string) (GlobalQuote, error)
}

// FinanceClient provides methods for fetching exchange rates and equity
// quotes from the Alpha Vantage API. It wraps an HTTP client with a request
// timeout and bounded retries; throttling responses and transient transport
// failures are retried, everything else fails the call.
type FinanceClient struct {
	httpClient *http.Client
	endpoint   string
}

// NewFinanceClient creates a new Alpha Vantage client for the given query
// endpoint. The timeout bounds each individual HTTP attempt.
func NewFinanceClient(endpoint string, timeout time.Duration) *FinanceClient {
	return &FinanceClient{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
	}
}

// FetchExchangeRate fetches the realtime rate for one currency pair.
func (c *FinanceClient) FetchExchangeRate(ctx context.Context, apiKey, base, quote string) (ExchangeRate, error) {
	query := url.Values{}
	query.Set("function", "CURRENCY_EXCHANGE_RATE")
	query.Set("from_currency", base)
	query.Set("to_currency", quote)
	query.Set("apikey", apiKey)

	var payload exchangeRatePayload
	if err := c.fetch(ctx, query, &payload); err != nil {
		return ExchangeRate{}, err
	}

	raw := payload.RealtimeCurrencyExchangeRate.ExchangeRate
	if raw == "" {
		return ExchangeRate{}, fmt.Errorf("no exchange rate returned for %s/%s", base, quote)
	}

	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return ExchangeRate{}, fmt.Errorf("malformed exchange rate %q: %w", raw, err)
	}

	return ExchangeRate{
		Base:      base,
		Quote:     quote,
		Rate:      rate,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// FetchGlobalQuote fetches the latest price for an equity symbol.
func (c *FinanceClient) FetchGlobalQuote(ctx context.Context, apiKey, symbol string) (GlobalQuote, error) {
	query := url.Values{}
	query.Set("function", "GLOBAL_QUOTE")
	query.Set("symbol", symbol)
	query.Set("apikey", apiKey)

	var payload globalQuotePayload
	if err := c.fetch(ctx, query, &payload); err != nil {
		return GlobalQuote{}, err
	}

	if payload.GlobalQuote.Price == "" {
		return GlobalQuote{}, fmt.Errorf("no quote returned for symbol %s", symbol)
	}

	price, err := decimal.NewFromString(payload.GlobalQuote.Price)
	if err != nil {
		return GlobalQuote{}, fmt.Errorf("malformed price %q: %w", payload.GlobalQuote.Price, err)
	}

	tradingDay := time.Now().UTC()
	if parsed, err := time.Parse("2006-01-02", payload.GlobalQuote.LatestTradingDay); err == nil {
		tradingDay = parsed
	}

	quoteSymbol := payload.GlobalQuote.Symbol
	if quoteSymbol == "" {
		quoteSymbol = symbol
	}

	return GlobalQuote{
		Symbol:     quoteSymbol,
		Price:      price,
		Currency:   defaultQuoteCurrency,
		TradingDay: tradingDay,
	}, nil
}

// fetch executes one API call with retries. Alpha Vantage signals throttling
// in-band with HTTP 200, so those payloads are detected and retried like
// transport failures.
func (c *FinanceClient) fetch(ctx context.Context, query url.Values, out any) error {
	requestURL := c.endpoint + "?" + query.Encode()

	backoff := retry.WithMaxRetries(2, retry.NewExponential(time.Second))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("alphavantage returned status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("alphavantage returned status %d", resp.StatusCode)
		}

		var apiErr apiError
		if err := json.Unmarshal(data, &apiErr); err == nil {
			if apiErr.Note != "" || apiErr.Information != "" {
				return retry.RetryableError(fmt.Errorf("alphavantage throttled request"))
			}
			if apiErr.ErrorMessage != "" {
				return fmt.Errorf("alphavantage error: %s", apiErr.ErrorMessage)
			}
		}

		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode alphavantage response: %w", err)
		}

		return nil
	})
}
