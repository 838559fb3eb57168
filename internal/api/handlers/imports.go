package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/finance-dash/backend/internal/api/request"
	"github.com/finance-dash/backend/internal/api/response"
	"github.com/finance-dash/backend/internal/apperrors"
	"github.com/finance-dash/backend/internal/service"
	"github.com/finance-dash/backend/internal/validation"
)

// ImportHandler handles HTTP requests that trigger workbook imports.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the importService.
type ImportHandler struct {
	importService *service.ImportService
}

// NewImportHandler creates a new ImportHandler with the provided service dependency.
func NewImportHandler(importService *service.ImportService) *ImportHandler {
	return &ImportHandler{
		importService: importService,
	}
}

// Trigger handles POST requests to run a workbook import. The body is
// optional; when present it may narrow the run to specific sheets.
//
// Endpoint: POST /api/import
// Request Body: ImportRequest (sheets, optional)
// Response: 200 OK with ImportResult (row failures included per row)
// Error: 400 Bad Request if the body is malformed or names an unconfigured sheet
// Error: 409 Conflict if another import run is already executing
// Error: 422 Unprocessable Entity if a sheet cannot be read from the workbook
// Error: 500 Internal Server Error if storing records fails
func (h *ImportHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ImportRequest](r)
	if err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateImportRequest(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.importService.Run(r.Context(), req.Sheets)
	if err != nil {
		var sheetErr *apperrors.SheetReadError
		switch {
		case errors.Is(err, apperrors.ErrImportInProgress):
			response.RespondError(w, http.StatusConflict, apperrors.ErrImportInProgress.Error(), "")
		case errors.Is(err, apperrors.ErrSheetNotConfigured):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrSheetNotConfigured.Error(), err.Error())
		case errors.As(err, &sheetErr):
			response.RespondError(w, http.StatusUnprocessableEntity, "failed to read sheet", err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "import failed", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
