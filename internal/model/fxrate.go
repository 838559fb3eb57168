package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FxRate is one cached exchange rate quoted as units of Quote per one unit of
// Base. FetchedAt drives staleness, not the process start time.
type FxRate struct {
	Base      string          `json:"base"`
	Quote     string          `json:"quote"`
	Rate      decimal.Decimal `json:"rate"`
	FetchedAt time.Time       `json:"fetched_at"`
	Source    string          `json:"source"`
}

// FxRateStatus is an FxRate annotated with its freshness at read time.
type FxRateStatus struct {
	FxRate
	Stale bool `json:"stale"`
}
