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

// FxHandler handles HTTP requests for the exchange rate cache.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the fxService.
type FxHandler struct {
	fxService *service.FxService
}

// NewFxHandler creates a new FxHandler with the provided service dependency.
func NewFxHandler(fxService *service.FxService) *FxHandler {
	return &FxHandler{
		fxService: fxService,
	}
}

// Rates handles GET requests to list every cached exchange rate with its
// freshness label.
//
// Endpoint: GET /api/fx
// Response: 200 OK with array of FxRateStatus
func (h *FxHandler) Rates(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.fxService.ListRates())
}

// RefreshRate handles POST requests to fetch the current rate for one pair
// from the provider and store it.
//
// Endpoint: POST /api/fx/refresh
// Request Body: RefreshRateRequest (base, quote)
// Response: 200 OK with the refreshed FxRate
// Error: 400 Bad Request if validation fails or a code is unsupported
// Error: 503 Service Unavailable if the provider call fails or no provider
//	key is configured
func (h *FxHandler) RefreshRate(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RefreshRateRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRefreshRate(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	rate, err := h.fxService.RefreshRate(r.Context(), req.Base, req.Quote)
	if err != nil {
		var unsupported *apperrors.UnsupportedCurrencyError
		if errors.As(err, &unsupported) {
			response.RespondError(w, http.StatusBadRequest, "unsupported currency", err.Error())
			return
		}
		response.RespondError(w, http.StatusServiceUnavailable, apperrors.ErrFailedToRetrieveRates.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, rate)
}
