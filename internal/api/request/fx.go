package request

// RefreshRateRequest names the currency pair to fetch from the provider.
type RefreshRateRequest struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}
