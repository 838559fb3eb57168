// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finance-dash/backend/internal/api/response"
	"github.com/finance-dash/backend/internal/validation"
)

// ValidateNaturalKeyMiddleware validates that the key URL parameter is present
// and is a valid UUID. Natural keys are UUIDv5 values, so anything else can be
// rejected before touching the store.
// Returns 400 Bad Request if the key is missing or invalid.
//
// Example usage in router:
//
//	r.Route("/{key}", func(r chi.Router) {
//	    r.Use(middleware.ValidateNaturalKeyMiddleware)
//	    r.Get("/", handler.GetTransaction)
//	})
func ValidateNaturalKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")

		if key == "" {
			response.RespondError(w, http.StatusBadRequest, "valid natural key is required", "")
			return
		}

		if err := validation.ValidateUUID(key); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid natural key format", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ValidateSymbolMiddleware validates that the symbol URL parameter looks like
// an exchange ticker before it is passed to a provider call.
// Returns 400 Bad Request if the symbol is missing or malformed.
func ValidateSymbolMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := chi.URLParam(r, "symbol")

		if symbol == "" {
			response.RespondError(w, http.StatusBadRequest, "symbol is required", "")
			return
		}

		if err := validation.ValidateSymbol(symbol); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid symbol format", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ValidateCoinIDMiddleware validates that the id URL parameter looks like a
// Coinranking coin identifier.
// Returns 400 Bad Request if the ID is missing or malformed.
func ValidateCoinIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if id == "" {
			response.RespondError(w, http.StatusBadRequest, "coin ID is required", "")
			return
		}

		if err := validation.ValidateCoinID(id); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid coin ID format", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
