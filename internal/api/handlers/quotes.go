package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finance-dash/backend/internal/api/response"
	"github.com/finance-dash/backend/internal/apperrors"
	"github.com/finance-dash/backend/internal/model"
	"github.com/finance-dash/backend/internal/service"
)

// QuoteHandler handles HTTP requests for market quotes.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the quoteService.
type QuoteHandler struct {
	quoteService *service.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler with the provided service dependency.
func NewQuoteHandler(quoteService *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
	}
}

// RefreshEquity handles POST requests to fetch and record the latest price
// for an equity symbol.
//
// Endpoint: POST /api/quotes/equity/{symbol}
// Response: 200 OK with QuoteResponse
// Error: 400 Bad Request if the symbol is malformed (validated by middleware)
// Error: 503 Service Unavailable if the provider call fails or no provider
//	key is configured
func (h *QuoteHandler) RefreshEquity(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	quote, err := h.quoteService.RefreshEquityQuote(r.Context(), symbol)
	if err != nil {
		response.RespondError(w, http.StatusServiceUnavailable, apperrors.ErrFailedToRetrieveQuotes.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, quote.ToResponse())
}

// RefreshCrypto handles POST requests to fetch and record the current price
// of a crypto asset by its Coinranking coin ID.
//
// Endpoint: POST /api/quotes/crypto/{id}
// Response: 200 OK with QuoteResponse
// Error: 400 Bad Request if the coin ID is malformed (validated by middleware)
// Error: 503 Service Unavailable if the provider call fails or no provider
//	key is configured
func (h *QuoteHandler) RefreshCrypto(w http.ResponseWriter, r *http.Request) {
	coinID := chi.URLParam(r, "id")

	quote, err := h.quoteService.RefreshCryptoQuote(r.Context(), coinID)
	if err != nil {
		response.RespondError(w, http.StatusServiceUnavailable, apperrors.ErrFailedToRetrieveQuotes.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, quote.ToResponse())
}

// History handles GET requests to list the recorded quotes for a symbol,
// newest first.
//
// Endpoint: GET /api/quotes/{symbol}
// Response: 200 OK with array of QuoteResponse
// Error: 400 Bad Request if the symbol is malformed (validated by middleware)
// Error: 404 Not Found if no quotes are recorded for the symbol
// Error: 500 Internal Server Error if retrieval fails
func (h *QuoteHandler) History(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	quotes, err := h.quoteService.QuoteHistory(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, apperrors.ErrQuoteNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrQuoteNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveQuotes.Error(), err.Error())
		return
	}

	responses := make([]model.QuoteResponse, len(quotes))
	for i, quote := range quotes {
		responses[i] = quote.ToResponse()
	}
	response.RespondJSON(w, http.StatusOK, responses)
}
