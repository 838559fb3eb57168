package request

// ImportRequest optionally narrows an import run to specific sheets.
// An empty or absent list runs every configured sheet.
type ImportRequest struct {
	Sheets []string `json:"sheets"`
}
