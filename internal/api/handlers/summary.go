package handlers

import (
	"errors"
	"net/http"

	"github.com/finance-dash/backend/internal/api/response"
	"github.com/finance-dash/backend/internal/apperrors"
	"github.com/finance-dash/backend/internal/service"
)

// SummaryHandler handles HTTP requests for currency-converted aggregates.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the summaryService.
type SummaryHandler struct {
	summaryService *service.SummaryService
}

// NewSummaryHandler creates a new SummaryHandler with the provided service dependency.
func NewSummaryHandler(summaryService *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{
		summaryService: summaryService,
	}
}

// Summary handles GET requests to aggregate stored records per currency and
// convert the subtotals into a display currency.
//
// Endpoint: GET /api/summary?currency=&limit=
// Response: 200 OK with SummaryResult
// Error: 400 Bad Request if the currency is unsupported or limit is malformed
// Error: 503 Service Unavailable if a needed exchange rate is missing or stale
//	under the strict policy
// Error: 500 Internal Server Error if aggregation fails
func (h *SummaryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidLimit.Error(), err.Error())
		return
	}

	displayCurrency := r.URL.Query().Get("currency")

	summary, err := h.summaryService.Summarize(r.Context(), displayCurrency, limit)
	if err != nil {
		var unsupported *apperrors.UnsupportedCurrencyError
		var unavailable *apperrors.FxRateUnavailableError
		switch {
		case errors.As(err, &unsupported):
			response.RespondError(w, http.StatusBadRequest, "unsupported currency", err.Error())
		case errors.As(err, &unavailable):
			response.RespondError(w, http.StatusServiceUnavailable, "exchange rate unavailable", err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to build summary", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}
