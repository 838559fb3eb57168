package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-dash/backend/internal/apperrors"
	"github.com/finance-dash/backend/internal/config"
	"github.com/finance-dash/backend/internal/currency"
	"github.com/finance-dash/backend/internal/model"
	"github.com/finance-dash/backend/internal/workbook"
)

// recordKeyNamespace seeds the deterministic natural keys. Never change it:
// keys derived from it are persisted.
var recordKeyNamespace = uuid.MustParse("26b4a986-7a62-4b7f-91a5-3f64cf2d3cd8")

// Fields holds the normalized values of one row, before key derivation.
type Fields struct {
	OccurredOn  time.Time
	Description string
	Amount      decimal.Decimal
	Currency    string
	TxnNumber   string
	Balance     *decimal.Decimal
}

// Normalizer applies the cleaning rules of this package to whole rows,
// resolving currency tokens through the registry.
type Normalizer struct {
	registry *currency.Registry
}

// NewNormalizer creates a Normalizer backed by the given currency registry.
func NewNormalizer(registry *currency.Registry) *Normalizer {
	return &Normalizer{registry: registry}
}

// IsBlankRow reports whether every cell of a row is absent. Spreadsheets
// keep spacer rows around; those are skipped, not reported as failures.
func IsBlankRow(row workbook.Row) bool {
	for _, value := range row.Cells {
		if !IsAbsent(value) {
			return false
		}
	}
	return true
}

// NormalizeRow turns one raw row into typed fields following the sheet's
// column conventions. Any failure returns a *ParseError carrying the cell
// coordinates; callers collect these per row and keep going.
func (n *Normalizer) NormalizeRow(sheet config.SheetConfig, row workbook.Row) (Fields, error) {
	fail := func(column, reason string) (Fields, error) {
		return Fields{}, &ParseError{Sheet: sheet.Name, Row: row.Position, Column: column, Reason: reason}
	}

	var fields Fields

	// Date is required.
	rawDate := row.Cells[sheet.DateColumn]
	if IsAbsent(rawDate) {
		return fail(sheet.DateColumn, "missing date")
	}
	occurredOn, err := CleanDate(rawDate)
	if err != nil {
		return fail(sheet.DateColumn, err.Error())
	}
	fields.OccurredOn = occurredOn

	// Amount comes from the amount column when present, otherwise it is
	// derived as credit minus debit. All three absent fails the row.
	var hint string
	rawAmount := row.Cells[sheet.AmountColumn]
	rawDebit := row.Cells[sheet.DebitColumn]
	rawCredit := row.Cells[sheet.CreditColumn]

	switch {
	case !IsAbsent(rawAmount):
		fields.Amount, hint, err = CleanAmount(rawAmount)
		if err != nil {
			return fail(sheet.AmountColumn, err.Error())
		}
	case !IsAbsent(rawDebit) || !IsAbsent(rawCredit):
		debit := decimal.Zero
		if !IsAbsent(rawDebit) {
			if debit, _, err = CleanAmount(rawDebit); err != nil {
				return fail(sheet.DebitColumn, err.Error())
			}
		}
		credit := decimal.Zero
		if !IsAbsent(rawCredit) {
			if credit, _, err = CleanAmount(rawCredit); err != nil {
				return fail(sheet.CreditColumn, err.Error())
			}
		}
		fields.Amount = credit.Sub(debit)
	default:
		return fail(sheet.AmountColumn, "missing amount")
	}

	// Currency precedence: explicit column, then amount-cell tag, then the
	// sheet default.
	code, column := sheet.DefaultCurrency, sheet.AmountColumn
	if sheet.CurrencyColumn != "" && !IsAbsent(row.Cells[sheet.CurrencyColumn]) {
		raw, tagged := StripTag(row.Cells[sheet.CurrencyColumn])
		if raw == "" {
			raw = tagged
		}
		code, column = raw, sheet.CurrencyColumn
	} else if hint != "" {
		code = hint
	}
	fields.Currency, err = n.registry.Resolve(code)
	if err != nil {
		var unsupported *apperrors.UnsupportedCurrencyError
		if errors.As(err, &unsupported) {
			return fail(column, unsupported.Error())
		}
		return fail(column, err.Error())
	}

	// Description joins the configured columns, skipping absent cells.
	parts := make([]string, 0, len(sheet.DescriptionColumns))
	for _, descColumn := range sheet.DescriptionColumns {
		if raw := row.Cells[descColumn]; !IsAbsent(raw) {
			parts = append(parts, CleanText(raw))
		}
	}
	fields.Description = strings.Join(parts, ", ")

	if raw := row.Cells[sheet.NumberColumn]; sheet.NumberColumn != "" && !IsAbsent(raw) {
		fields.TxnNumber = CleanText(raw)
	}

	if raw := row.Cells[sheet.BalanceColumn]; sheet.BalanceColumn != "" && !IsAbsent(raw) {
		balance, _, err := CleanAmount(raw)
		if err != nil {
			return fail(sheet.BalanceColumn, err.Error())
		}
		fields.Balance = &balance
	}

	return fields, nil
}

// BuildRecord combines normalized fields with the natural key and the import
// timestamp into a storable record.
func BuildRecord(sheet config.SheetConfig, row workbook.Row, fields Fields, importedAt time.Time) model.TransactionRecord {
	return model.TransactionRecord{
		NaturalKey:  NaturalKey(sheet.Name, row.Position, fields),
		OccurredOn:  fields.OccurredOn,
		Description: fields.Description,
		Amount:      fields.Amount,
		Currency:    fields.Currency,
		SourceSheet: sheet.Name,
		TxnNumber:   fields.TxnNumber,
		Balance:     fields.Balance,
		ImportedAt:  importedAt,
	}
}

// NaturalKey derives the deterministic key for a row. Rows with a stable
// position key on sheet and position, so corrected values re-import as
// updates of the same record. Without a position the key falls back to a
// content hash over the identifying fields.
func NaturalKey(sheetName string, position int, fields Fields) string {
	var name string
	if position > 0 {
		name = fmt.Sprintf("%s#%d", sheetName, position)
	} else {
		name = strings.Join([]string{
			sheetName,
			fields.OccurredOn.Format("2006-01-02"),
			fields.Description,
			fields.Amount.String(),
			fields.Currency,
		}, "|")
	}
	return uuid.NewSHA1(recordKeyNamespace, []byte(name)).String()
}
