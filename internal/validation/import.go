package validation

import (
	"fmt"
	"strings"

	"github.com/finance-dash/backend/internal/api/request"
)

// ValidateImportRequest validates an import trigger request.
// The sheet list is optional; when present, every entry must be a non-empty
// sheet name. Whether the named sheets are configured is decided by the
// import service.
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateImportRequest(req request.ImportRequest) error {
	errors := make(map[string]string)

	for i, sheet := range req.Sheets {
		if strings.TrimSpace(sheet) == "" {
			errors[fmt.Sprintf("sheets[%d]", i)] = "sheet name must not be empty"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
