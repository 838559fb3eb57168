package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/finance-dash/backend/internal/apperrors"
	"github.com/finance-dash/backend/internal/validation"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode JSON: %v", err)
		}
	}
}

// parseJSON decodes a JSON request body into the given request type.
// Unknown fields are rejected so typos in field names fail loudly.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return req, err
	}

	return req, nil
}

// parseLimit reads the optional limit query parameter. Absent or empty means
// zero, which callers treat as "no cap".
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", apperrors.ErrInvalidLimit, raw)
	}
	if err := validation.ValidateLimit(limit); err != nil {
		return 0, err
	}

	return limit, nil
}
