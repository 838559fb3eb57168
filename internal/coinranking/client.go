package coinranking

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

// Source identifies quotes fetched from this provider.
const Source = "coinranking"

// referenceCurrency is the currency coin prices are quoted in.
const referenceCurrency = "USD"

// Client defines the interface for fetching crypto prices from Coinranking.
// This interface enables dependency injection and testing with mock implementations.
type Client interface {
	FetchCoinPrice(ctx context.Context, apiKey, coinID string) (CoinPrice, error)
}

// FinanceClient provides methods for fetching crypto asset prices from the
// Coinranking API via RapidAPI. Authentication uses the RapidAPI key and
// host headers.
type FinanceClient struct {
	httpClient *http.Client
	host       string
}

// NewFinanceClient creates a new Coinranking client for the given RapidAPI
// host. The timeout bounds each individual HTTP attempt.
func NewFinanceClient(host string, timeout time.Duration) *FinanceClient {
	return &FinanceClient{
		httpClient: &http.Client{Timeout: timeout},
		host:       host,
	}
}

// FetchCoinPrice fetches the current price of one coin by its Coinranking ID.
func (c *FinanceClient) FetchCoinPrice(ctx context.Context, apiKey, coinID string) (CoinPrice, error) {
	requestURL := fmt.Sprintf("https://%s/coin/%s", c.host, url.PathEscape(coinID))

	var payload coinPayload

	backoff := retry.WithMaxRetries(2, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("x-rapidapi-key", apiKey)
		req.Header.Set("x-rapidapi-host", c.host)

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
			return retry.RetryableError(fmt.Errorf("coinranking returned status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("coinranking returned status %d", resp.StatusCode)
		}

		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("failed to decode coinranking response: %w", err)
		}

		return nil
	})
	if err != nil {
		return CoinPrice{}, err
	}

	if payload.Status != "success" {
		return CoinPrice{}, fmt.Errorf("coinranking error: %s", payload.Message)
	}

	price, err := decimal.NewFromString(payload.Data.Coin.Price)
	if err != nil {
		return CoinPrice{}, fmt.Errorf("malformed coin price %q: %w", payload.Data.Coin.Price, err)
	}

	return CoinPrice{
		CoinID:    payload.Data.Coin.UUID,
		Symbol:    payload.Data.Coin.Symbol,
		Name:      payload.Data.Coin.Name,
		Price:     price,
		Currency:  referenceCurrency,
		FetchedAt: time.Now().UTC(),
	}, nil
}
