package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finance-dash/backend/internal/api/response"
	"github.com/finance-dash/backend/internal/apperrors"
	"github.com/finance-dash/backend/internal/service"
)

// TransactionHandler handles HTTP requests for the imported transaction
// records. It serves as the HTTP layer adapter, parsing requests and
// delegating business logic to the transactionService.
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// AllTransactions handles GET requests to list stored records, newest
// occurrence first.
//
// Endpoint: GET /api/transaction?limit=
// Response: 200 OK with array of TransactionRecordResponse
// Error: 400 Bad Request if limit is not a non-negative integer
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) AllTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidLimit.Error(), err.Error())
		return
	}

	transactions, err := h.transactionService.ListTransactions(r.Context(), limit)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// GetTransaction handles GET requests to retrieve a single record by its
// natural key.
//
// Endpoint: GET /api/transaction/{key}
// Response: 200 OK with TransactionRecordResponse
// Error: 400 Bad Request if the key is not a UUID (validated by middleware)
// Error: 404 Not Found if no record has the key
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	naturalKey := chi.URLParam(r, "key")

	transaction, err := h.transactionService.GetTransaction(r.Context(), naturalKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// Currencies handles GET requests to list the distinct currency codes present
// in the store.
//
// Endpoint: GET /api/transaction/currencies
// Response: 200 OK with sorted array of currency codes
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) Currencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.transactionService.Currencies(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, currencies)
}
