package alphavantage

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is one realtime currency exchange rate, quoted as units of
// Quote per one unit of Base.
type ExchangeRate struct {
	Base      string
	Quote     string
	Rate      decimal.Decimal
	FetchedAt time.Time
}

// GlobalQuote is the latest price for an equity symbol. Alpha Vantage's
// global quote carries no currency, so Currency is always the provider
// default of USD.
type GlobalQuote struct {
	Symbol     string
	Price      decimal.Decimal
	Currency   string
	TradingDay time.Time
}

// exchangeRatePayload mirrors the provider's numbered JSON field names for
// the CURRENCY_EXCHANGE_RATE function.
type exchangeRatePayload struct {
	RealtimeCurrencyExchangeRate struct {
		FromCurrencyCode string `json:"1. From_Currency Code"`
		ToCurrencyCode   string `json:"3. To_Currency Code"`
		ExchangeRate     string `json:"5. Exchange Rate"`
		LastRefreshed    string `json:"6. Last Refreshed"`
	} `json:"Realtime Currency Exchange Rate"`
}

// globalQuotePayload mirrors the provider's numbered JSON field names for
// the GLOBAL_QUOTE function.
type globalQuotePayload struct {
	GlobalQuote struct {
		Symbol           string `json:"01. symbol"`
		Price            string `json:"05. price"`
		LatestTradingDay string `json:"07. latest trading day"`
	} `json:"Global Quote"`
}

// apiError captures the provider's in-band error responses, which come back
// with HTTP 200.
type apiError struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}
