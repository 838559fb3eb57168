package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finance-dash/backend/internal/apperrors"
	"github.com/finance-dash/backend/internal/model"
)

// UpsertOutcome reports what Upsert did with a record.
type UpsertOutcome int

const (
	// UpsertInserted means no record existed under the natural key.
	UpsertInserted UpsertOutcome = iota
	// UpsertUpdated means an existing record differed and was overwritten.
	UpsertUpdated
	// UpsertUnchanged means the stored record was already identical; nothing
	// was written and imported_at was left untouched.
	UpsertUnchanged
)

// TransactionRepository provides data access methods for the bank_transaction
// table. It owns natural-key uniqueness: all writes go through Upsert.
type TransactionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a new TransactionRepository scoped to the provided transaction.
func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *TransactionRepository) getQuerier() interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Upsert writes one record under its natural key. An absent key inserts; an
// identical existing record is left completely untouched, so clean re-imports
// report zero writes; a differing record is overwritten and imported_at bumped.
func (r *TransactionRepository) Upsert(ctx context.Context, record model.TransactionRecord) (UpsertOutcome, error) {
	existing, err := r.GetRecord(ctx, record.NaturalKey)
	switch {
	case errors.Is(err, apperrors.ErrTransactionNotFound):
		if err := r.insert(ctx, record); err != nil {
			return 0, err
		}
		return UpsertInserted, nil
	case err != nil:
		return 0, err
	}

	if sameRecord(existing, record) {
		return UpsertUnchanged, nil
	}

	query := `
		UPDATE bank_transaction
		SET occurred_on = ?, description = ?, amount = ?, currency = ?,
			source_sheet = ?, txn_number = ?, balance = ?, imported_at = ?
		WHERE natural_key = ?
	`

	_, err = r.getQuerier().ExecContext(ctx, query,
		record.OccurredOn.Format("2006-01-02"),
		record.Description,
		record.Amount.String(),
		record.Currency,
		record.SourceSheet,
		record.TxnNumber,
		balanceString(record.Balance),
		record.ImportedAt.UTC().Format(time.RFC3339),
		record.NaturalKey,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update bank_transaction table: %w", err)
	}

	return UpsertUpdated, nil
}

func (r *TransactionRepository) insert(ctx context.Context, record model.TransactionRecord) error {
	query := `
		INSERT INTO bank_transaction
			(natural_key, occurred_on, description, amount, currency, source_sheet, txn_number, balance, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		record.NaturalKey,
		record.OccurredOn.Format("2006-01-02"),
		record.Description,
		record.Amount.String(),
		record.Currency,
		record.SourceSheet,
		record.TxnNumber,
		balanceString(record.Balance),
		record.ImportedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "constraint") {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateKey, record.NaturalKey)
		}
		return fmt.Errorf("failed to insert into bank_transaction table: %w", err)
	}

	return nil
}

// GetRecord retrieves a single record by its natural key.
// Returns ErrTransactionNotFound if no record with the given key exists.
func (r *TransactionRepository) GetRecord(ctx context.Context, naturalKey string) (model.TransactionRecord, error) {
	query := `
		SELECT natural_key, occurred_on, description, amount, currency, source_sheet, txn_number, balance, imported_at
		FROM bank_transaction
		WHERE natural_key = ?
	`

	record, err := scanRecord(r.getQuerier().QueryRowContext(ctx, query, naturalKey))
	if errors.Is(err, sql.ErrNoRows) {
		return model.TransactionRecord{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.TransactionRecord{}, err
	}

	return record, nil
}

// ListRecords retrieves records newest-first. A limit of zero or less returns
// all records.
func (r *TransactionRepository) ListRecords(ctx context.Context, limit int) ([]model.TransactionRecord, error) {
	query := `
		SELECT natural_key, occurred_on, description, amount, currency, source_sheet, txn_number, balance, imported_at
		FROM bank_transaction
		ORDER BY occurred_on DESC, natural_key ASC
	`

	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank_transaction table: %w", err)
	}
	defer rows.Close()

	records := []model.TransactionRecord{}

	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bank_transaction table: %w", err)
	}

	return records, nil
}

// CurrencyCodes returns the distinct currencies present in the store, sorted.
func (r *TransactionRepository) CurrencyCodes(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT currency
		FROM bank_transaction
		ORDER BY currency ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank_transaction table: %w", err)
	}
	defer rows.Close()

	codes := []string{}

	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan bank_transaction table results: %w", err)
		}
		codes = append(codes, code)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bank_transaction table: %w", err)
	}

	return codes, nil
}

// CountRecords returns the number of stored records.
func (r *TransactionRepository) CountRecords(ctx context.Context) (int, error) {
	var count int
	err := r.getQuerier().QueryRowContext(ctx, "SELECT COUNT(*) FROM bank_transaction").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bank_transaction table: %w", err)
	}
	return count, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (model.TransactionRecord, error) {
	var record model.TransactionRecord
	var occurredOnStr, amountStr, importedAtStr string
	var balanceStr sql.NullString

	err := row.Scan(
		&record.NaturalKey,
		&occurredOnStr,
		&record.Description,
		&amountStr,
		&record.Currency,
		&record.SourceSheet,
		&record.TxnNumber,
		&balanceStr,
		&importedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.TransactionRecord{}, err
		}
		return model.TransactionRecord{}, fmt.Errorf("failed to scan bank_transaction table results: %w", err)
	}

	record.OccurredOn, err = ParseTime(occurredOnStr)
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("failed to parse date: %w", err)
	}

	record.ImportedAt, err = ParseTime(importedAtStr)
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("failed to parse date: %w", err)
	}

	record.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("failed to parse stored amount: %w", err)
	}

	if balanceStr.Valid {
		balance, err := decimal.NewFromString(balanceStr.String)
		if err != nil {
			return model.TransactionRecord{}, fmt.Errorf("failed to parse stored balance: %w", err)
		}
		record.Balance = &balance
	}

	return record, nil
}

// sameRecord reports whether the mutable fields of two records are identical.
// The natural key is the same by construction when this is called.
func sameRecord(a, b model.TransactionRecord) bool {
	return a.OccurredOn.Equal(b.OccurredOn) &&
		a.Description == b.Description &&
		a.Amount.Equal(b.Amount) &&
		a.Currency == b.Currency &&
		a.SourceSheet == b.SourceSheet &&
		a.TxnNumber == b.TxnNumber &&
		sameBalance(a.Balance, b.Balance)
}

func sameBalance(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func balanceString(balance *decimal.Decimal) any {
	if balance == nil {
		return nil
	}
	return balance.String()
}
