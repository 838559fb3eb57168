package handlers

import (
	"errors"
	"net/http"

	"github.com/finance-dash/backend/internal/api/request"
	"github.com/finance-dash/backend/internal/api/response"
	"github.com/finance-dash/backend/internal/apperrors"
	"github.com/finance-dash/backend/internal/service"
	"github.com/finance-dash/backend/internal/validation"
)

// SettingsHandler handles HTTP requests for runtime-changeable settings.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the settingsService.
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler with the provided service dependency.
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// DisplayCurrencyResponse represents the display currency setting.
type DisplayCurrencyResponse struct {
	Currency string `json:"currency"`
}

// GetDisplayCurrency handles GET requests to read the display currency.
//
// Endpoint: GET /api/settings/display-currency
// Response: 200 OK with DisplayCurrencyResponse
// Error: 500 Internal Server Error if retrieval fails
func (h *SettingsHandler) GetDisplayCurrency(w http.ResponseWriter, r *http.Request) {
	currency, err := h.settingsService.DisplayCurrency(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveSetting.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, DisplayCurrencyResponse{Currency: currency})
}

// UpdateDisplayCurrency handles PUT requests to change the display currency.
//
// Endpoint: PUT /api/settings/display-currency
// Request Body: UpdateDisplayCurrencyRequest (currency)
// Response: 200 OK with DisplayCurrencyResponse carrying the normalized code
// Error: 400 Bad Request if validation fails or the code is unsupported
// Error: 500 Internal Server Error if persisting fails
func (h *SettingsHandler) UpdateDisplayCurrency(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateDisplayCurrencyRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateDisplayCurrency(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	currency, err := h.settingsService.SetDisplayCurrency(r.Context(), req.Currency)
	if err != nil {
		var unsupported *apperrors.UnsupportedCurrencyError
		if errors.As(err, &unsupported) {
			response.RespondError(w, http.StatusBadRequest, "unsupported currency", err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to update display currency", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, DisplayCurrencyResponse{Currency: currency})
}

// SetProviderKey handles PUT requests to store a provider API key. The key is
// encrypted before it reaches the database.
//
// Endpoint: PUT /api/settings/provider-key
// Request Body: SetProviderKeyRequest (provider, key)
// Response: 204 No Content on success
// Error: 400 Bad Request if validation fails or the provider is unknown
// Error: 503 Service Unavailable if no encryption secret is configured
// Error: 500 Internal Server Error if persisting fails
func (h *SettingsHandler) SetProviderKey(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetProviderKeyRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSetProviderKey(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.settingsService.SetProviderKey(r.Context(), req.Provider, req.Key); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnknownProvider):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrUnknownProvider.Error(), err.Error())
		case errors.Is(err, apperrors.ErrCredentialStoreDisabled):
			response.RespondError(w, http.StatusServiceUnavailable, apperrors.ErrCredentialStoreDisabled.Error(), "")
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to store provider key", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
