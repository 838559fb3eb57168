package coinranking

import (
	"time"

	"github.com/shopspring/decimal"
)

// CoinPrice is the latest price for one crypto asset. Prices are quoted in
// the provider's reference currency, USD unless configured otherwise.
type CoinPrice struct {
	CoinID    string
	Symbol    string
	Name      string
	Price     decimal.Decimal
	Currency  string
	FetchedAt time.Time
}

// coinPayload mirrors the provider's response envelope for /coin/{uuid}.
type coinPayload struct {
	Status string `json:"status"`
	Data   struct {
		Coin struct {
			UUID   string `json:"uuid"`
			Symbol string `json:"symbol"`
			Name   string `json:"name"`
			Price  string `json:"price"`
		} `json:"coin"`
	} `json:"data"`
	Message string `json:"message"`
}
