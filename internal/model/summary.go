package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyBreakdown is the per-currency slice of a summary. Subtotal is the
// exact sum in the source currency; SubtotalRounded is the same value rounded
// to the currency's native fraction for display. SubtotalInDisplay is the
// converted value in the display currency. RateUsed is nil for the display
// currency itself, where conversion is the identity.
type CurrencyBreakdown struct {
	Currency          string           `json:"currency"`
	TransactionCount  int              `json:"transaction_count"`
	Subtotal          decimal.Decimal  `json:"subtotal"`
	SubtotalRounded   decimal.Decimal  `json:"subtotal_rounded"`
	SubtotalInDisplay decimal.Decimal  `json:"subtotal_in_display"`
	RateUsed          *decimal.Decimal `json:"rate_used,omitempty"`
	RateIsStale       bool             `json:"rate_is_stale"`
}

// SummaryResult is the currency-converted aggregate over stored transactions.
// StaleRatesUsed is true when any contributing rate was past its TTL.
type SummaryResult struct {
	DisplayCurrency  string              `json:"display_currency"`
	Total            decimal.Decimal     `json:"total"`
	TransactionCount int                 `json:"transaction_count"`
	StaleRatesUsed   bool                `json:"stale_rates_used"`
	PerCurrency      []CurrencyBreakdown `json:"per_currency"`
	GeneratedAt      time.Time           `json:"generated_at"`
}
