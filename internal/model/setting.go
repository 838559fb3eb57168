package model

import "time"

// Setting keys used by the application. Values live in the setting table as
// plain strings; provider keys are stored fernet-encrypted.
const (
	SettingDisplayCurrency = "display_currency"
	SettingAlphaVantageKey = "alphavantage_api_key"
	SettingCoinrankingKey  = "coinranking_api_key"
)

// Setting is one key/value pair of runtime-changeable application state.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
