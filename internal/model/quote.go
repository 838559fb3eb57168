package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is one recorded market price for an equity symbol or crypto asset.
type Quote struct {
	Symbol   string          `json:"symbol"`
	QuotedOn time.Time       `json:"quoted_on"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Source   string          `json:"source"`
}

// QuoteResponse represents a quote shaped for API responses.
type QuoteResponse struct {
	Symbol   string          `json:"symbol"`
	QuotedOn string          `json:"quoted_on"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Source   string          `json:"source"`
}

// ToResponse converts a quote to its API response form.
func (q Quote) ToResponse() QuoteResponse {
	return QuoteResponse{
		Symbol:   q.Symbol,
		QuotedOn: q.QuotedOn.Format("2006-01-02"),
		Price:    q.Price,
		Currency: q.Currency,
		Source:   q.Source,
	}
}
