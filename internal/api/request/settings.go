package request

// UpdateDisplayCurrencyRequest changes the display currency summaries convert into.
type UpdateDisplayCurrencyRequest struct {
	Currency string `json:"currency"`
}

// SetProviderKeyRequest stores an API key for a market data provider.
type SetProviderKeyRequest struct {
	Provider string `json:"provider"`
	Key      string `json:"key"`
}
