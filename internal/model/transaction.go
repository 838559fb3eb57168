package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord represents one normalized bank movement from a workbook
// sheet. The natural key is deterministic for a given source row, which is
// what makes re-imports idempotent.
type TransactionRecord struct {
	NaturalKey  string           `json:"natural_key"`
	OccurredOn  time.Time        `json:"occurred_on"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Currency    string           `json:"currency"`
	SourceSheet string           `json:"source_sheet"`
	TxnNumber   string           `json:"txn_number,omitempty"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	ImportedAt  time.Time        `json:"imported_at"`
}

// TransactionRecordResponse represents a transaction record shaped for API
// responses, with the movement date serialized as a plain calendar date.
type TransactionRecordResponse struct {
	NaturalKey  string           `json:"natural_key"`
	OccurredOn  string           `json:"occurred_on"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Currency    string           `json:"currency"`
	SourceSheet string           `json:"source_sheet"`
	TxnNumber   string           `json:"txn_number,omitempty"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	ImportedAt  time.Time        `json:"imported_at"`
}

// ToResponse converts a record to its API response form.
func (r TransactionRecord) ToResponse() TransactionRecordResponse {
	return TransactionRecordResponse{
		NaturalKey:  r.NaturalKey,
		OccurredOn:  r.OccurredOn.Format("2006-01-02"),
		Description: r.Description,
		Amount:      r.Amount,
		Currency:    r.Currency,
		SourceSheet: r.SourceSheet,
		TxnNumber:   r.TxnNumber,
		Balance:     r.Balance,
		ImportedAt:  r.ImportedAt,
	}
}
